package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	// Optional. When unset the service runs file-only: generated courses are
	// written to CoursesDir and the archive endpoints are unavailable.
	DatabaseURL string `envconfig:"DATABASE_URL"`

	CoursesDir string `envconfig:"COURSES_DIR" default:"courses_json"`

	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	ChatModel      string `envconfig:"CHAT_MODEL" default:"gpt-4o-mini"`
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`

	// Azure OpenAI. When AzureEndpoint is set, AzureAPIKey and the deployment
	// names are used instead of OpenAIAPIKey for chat and embeddings.
	AzureEndpoint            string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	AzureAPIKey              string `envconfig:"AZURE_OPENAI_API_KEY"`
	AzureChatDeployment      string `envconfig:"AZURE_CHAT_DEPLOYMENT"`
	AzureEmbeddingDeployment string `envconfig:"AZURE_EMBEDDING_DEPLOYMENT"`

	SearchEndpoint string `envconfig:"SEARCH_ENDPOINT" default:"https://html.duckduckgo.com/html/"`
	MaxSearchHits  int    `envconfig:"MAX_SEARCH_HITS" default:"8"`
	FetchTimeout   int    `envconfig:"FETCH_TIMEOUT_SECONDS" default:"15"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"coursegen-courses"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Optional static bearer token for the API. Unset means open access.
	APIToken string `envconfig:"API_TOKEN"`

	SentryDSN string `envconfig:"SENTRY_DSN"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("COURSEGEN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) HasAzure() bool {
	return c.AzureEndpoint != "" && c.AzureAPIKey != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != "" || c.HasAzure()
}
