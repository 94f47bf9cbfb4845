package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/coursegen-ai/coursegen/internal/api/handlers"
	"github.com/coursegen-ai/coursegen/internal/config"
	"github.com/coursegen-ai/coursegen/internal/database"
	"github.com/coursegen-ai/coursegen/internal/jobs"
	"github.com/coursegen-ai/coursegen/internal/openai"
	"github.com/coursegen-ai/coursegen/internal/rag"
	"github.com/coursegen-ai/coursegen/internal/repository"
	"github.com/coursegen-ai/coursegen/internal/server"
	"github.com/coursegen-ai/coursegen/internal/service"
	"github.com/coursegen-ai/coursegen/internal/storage"
	"github.com/coursegen-ai/coursegen/internal/telemetry"
	"github.com/coursegen-ai/coursegen/internal/webfetch"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the coursegen API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("no completion provider configured: set OPENAI_API_KEY or the Azure OpenAI variables")
	}

	aiClient := newAIClient(cfg)
	logger := log.Default()

	httpClient := &http.Client{Timeout: time.Duration(cfg.FetchTimeout) * time.Second}
	searchProvider := webfetch.NewDuckDuckGoProvider(httpClient, cfg.SearchEndpoint)
	fetcher := webfetch.NewFetcher(searchProvider, httpClient, logger)
	pipeline := rag.NewPipeline(fetcher, aiClient, aiClient, cfg.MaxSearchHits, logger)

	builder := service.NewCourseBuilder(aiClient, pipeline, logger)
	store := service.NewFileStore(cfg.CoursesDir, logger)

	var archive handlers.CourseArchive
	var embeddingWorker *jobs.Worker
	if cfg.HasDatabase() {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		log.Println("connected to database")

		// Run migrations unless --no-migrate flag is set
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			if err := runMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
		}

		courseRepo := repository.NewCourseRepository(pool)
		jobRepo := repository.NewEmbeddingJobRepository(pool)
		txRunner := repository.NewTxRunner(pool)

		archiveSvc := service.NewArchiveService(courseRepo, txRunner, aiClient, logger)
		archive = archiveSvc

		embeddingProcessor := jobs.NewEmbeddingWorker(jobRepo, archiveSvc)
		embeddingWorker = jobs.NewWorker(embeddingProcessor, 10*time.Second)
		go embeddingWorker.Start(ctx)
		log.Println("embedding worker started")
	} else {
		log.Println("no database configured, running in file-only mode")
	}

	var mirror handlers.CourseMirror
	if cfg.HasS3() {
		s3Config := storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		}
		s3Client, err := storage.NewS3Client(ctx, s3Config)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		mirror = storage.NewCourseMirror(s3Client)
	}

	courseHandler := handlers.NewCourseHandler(builder, store, archive, mirror, logger)

	routerCfg := server.RouterConfig{
		APIToken:      cfg.APIToken,
		CourseHandler: courseHandler,
	}

	router := server.NewRouter(routerCfg)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if embeddingWorker != nil {
		embeddingWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// newAIClient builds the OpenAI client, preferring Azure deployments when
// the Azure variables are set.
func newAIClient(cfg *config.Config) *openai.Client {
	clientCfg := openai.Config{
		APIKey:         cfg.OpenAIAPIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
	}

	if cfg.HasAzure() {
		clientCfg.APIKey = cfg.AzureAPIKey
		clientCfg.AzureEndpoint = cfg.AzureEndpoint
		if cfg.AzureChatDeployment != "" {
			clientCfg.ChatModel = cfg.AzureChatDeployment
		}
		if cfg.AzureEmbeddingDeployment != "" {
			clientCfg.EmbeddingModel = cfg.AzureEmbeddingDeployment
		}
	}

	return openai.NewClientWithConfig(clientCfg)
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
