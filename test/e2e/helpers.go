//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursegen-ai/coursegen/internal/api/handlers"
	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/jobs"
	"github.com/coursegen-ai/coursegen/internal/repository"
	"github.com/coursegen-ai/coursegen/internal/server"
	"github.com/coursegen-ai/coursegen/internal/service"
	"github.com/coursegen-ai/coursegen/internal/storage"
	"github.com/coursegen-ai/coursegen/internal/testutil"
)

const e2eAPIToken = "e2e-test-token"

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	ServerURL    string
	ServerCloser func()
	S3Client     *storage.S3Client
	CoursesDir   string
	APIToken     string
	HTTPClient   *http.Client
}

// SetupE2EEnv creates a full E2E test environment with containers and server.
// Course generation and embeddings are stubbed so the tests run without a
// model provider.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)

	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-courses",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}

	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}

	coursesDir := t.TempDir()
	serverURL, serverCloser := startServer(t, pool, s3Client, coursesDir, port)

	return &E2ETestEnv{
		T:            t,
		Ctx:          ctx,
		PostgresC:    pgC,
		RustFSC:      s3C,
		Pool:         pool,
		ServerURL:    serverURL,
		ServerCloser: serverCloser,
		S3Client:     s3Client,
		CoursesDir:   coursesDir,
		APIToken:     e2eAPIToken,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, authToken string) (*APIResponse, error) {
	return e.doRequest("GET", path, nil, authToken)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body interface{}, authToken string) (*APIResponse, error) {
	return e.doRequest("POST", path, body, authToken)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}, authToken string) (*APIResponse, error) {
	url := e.ServerURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}

	return &apiResp, nil
}

// DownloadFile downloads a file from the presigned URL
func (e *E2ETestEnv) DownloadFile(downloadURL string) ([]byte, error) {
	resp, err := e.HTTPClient.Get(downloadURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// stubBuilder generates a deterministic course without calling a model
// provider.
type stubBuilder struct{}

func (stubBuilder) BuildCourse(ctx context.Context, opts service.BuildOptions) (*domain.Course, error) {
	mode := opts.LearningMode
	if mode == "" {
		mode = domain.LearningModeHandsOn
	}

	return &domain.Course{
		ID:           uuid.NewString(),
		Topic:        opts.Topic,
		LearningMode: mode,
		Menu: []domain.CourseModule{
			{
				Module:  "Introduction to " + opts.Topic,
				Section: "Fundamentals",
				Items: []domain.Lesson{
					{Title: "Overview", Path: "overview", Blocks: []domain.Block{{Type: domain.BlockTypeParagraph, Content: "An overview of " + opts.Topic + "."}}},
					{Title: "Core Concepts", Path: "core-concepts", Blocks: []domain.Block{{Type: domain.BlockTypeParagraph, Content: "Core concepts of " + opts.Topic + "."}}},
				},
			},
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// stubEmbedder derives a deterministic embedding from the text.
type stubEmbedder struct{}

func (stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	sum := sha256.Sum256([]byte(strings.ToLower(text)))
	embedding := make([]float32, 1536)
	for i := range embedding {
		embedding[i] = float32(sum[i%len(sum)]) / 255
	}
	return embedding, nil
}

// startServer starts the HTTP server wired against the test containers
func startServer(t *testing.T, pool *pgxpool.Pool, s3Client *storage.S3Client, coursesDir string, port int) (string, func()) {
	logger := log.Default()

	courseRepo := repository.NewCourseRepository(pool)
	jobRepo := repository.NewEmbeddingJobRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	store := service.NewFileStore(coursesDir, logger)
	archiveSvc := service.NewArchiveService(courseRepo, txRunner, stubEmbedder{}, logger)
	mirror := storage.NewCourseMirror(s3Client)

	workerCtx, cancelWorker := context.WithCancel(context.Background())
	embeddingWorker := jobs.NewWorker(jobs.NewEmbeddingWorker(jobRepo, archiveSvc), 100*time.Millisecond)
	go embeddingWorker.Start(workerCtx)

	courseHandler := handlers.NewCourseHandler(stubBuilder{}, store, archiveSvc, mirror, logger)

	router := server.NewRouter(server.RouterConfig{
		APIToken:      e2eAPIToken,
		CourseHandler: courseHandler,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, serverURL, 10*time.Second)

	return serverURL, func() {
		cancelWorker()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
