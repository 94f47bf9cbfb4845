package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the model used for course and lesson generation
	DefaultChatModel = openai.GPT4oMini
	// DefaultEmbeddingModel is the OpenAI model used for generating embeddings
	DefaultEmbeddingModel = openai.AdaEmbeddingV2
	// DefaultEmbeddingDimensions is the expected dimension of embeddings from ada-002
	DefaultEmbeddingDimensions = 1536
)

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when an embedding has unexpected dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoAPIKey is returned when no OpenAI credentials are configured
	ErrNoAPIKey = errors.New("OPENAI_API_KEY environment variable not set")
	// ErrNoChoices is returned when a completion comes back with no choices
	ErrNoChoices = errors.New("completion returned no choices")
)

// CompletionRequest carries the per-call generation parameters.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

// ChatAPI defines the interface for chat completion generation
type ChatAPI interface {
	CreateCompletion(ctx context.Context, req CompletionRequest) (string, error)
}

// EmbeddingAPI defines the interface for embedding generation
type EmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Client wraps the OpenAI API for both chat and embeddings
type Client struct {
	chat       ChatAPI
	embeddings EmbeddingAPI
	dimensions int
}

// OpenAIAdapter implements ChatAPI and EmbeddingAPI against the real API.
type OpenAIAdapter struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
}

// Config holds the client configuration. Setting AzureEndpoint switches the
// adapter to Azure OpenAI; ChatModel and EmbeddingModel then name deployments.
type Config struct {
	APIKey              string
	AzureEndpoint       string
	ChatModel           string
	EmbeddingModel      string
	EmbeddingDimensions int
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	embeddingModel := openai.EmbeddingModel(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	var client *openai.Client
	if cfg.AzureEndpoint != "" {
		client = openai.NewClientWithConfig(
			openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint))
	} else {
		client = openai.NewClient(cfg.APIKey)
	}

	return &OpenAIAdapter{
		client:         client,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
	}
}

// CreateCompletion calls the chat completions API and returns the first choice.
func (a *OpenAIAdapter) CreateCompletion(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}

// CreateEmbeddings calls the embeddings API for a batch of texts. The result
// preserves input order.
func (a *OpenAIAdapter) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := a.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: a.embeddingModel,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// NewClient creates a new OpenAI client using defaults.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(Config{APIKey: apiKey})
}

// NewClientWithConfig creates a new OpenAI client with explicit configuration.
func NewClientWithConfig(cfg Config) *Client {
	dimensions := cfg.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	adapter := NewOpenAIAdapter(cfg)
	return &Client{
		chat:       adapter,
		embeddings: adapter,
		dimensions: dimensions,
	}
}

// NewClientFromEnv creates a new OpenAI client using OPENAI_API_KEY environment variable
func NewClientFromEnv() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	return NewClient(apiKey), nil
}

// NewClientWithBackends wires explicit chat and embedding backends, used by
// tests to substitute mocks.
func NewClientWithBackends(chat ChatAPI, embeddings EmbeddingAPI, dimensions int) *Client {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}
	return &Client{chat: chat, embeddings: embeddings, dimensions: dimensions}
}

// Dimensions returns the embedding dimensionality this client produces.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Complete generates a chat completion for the given prompts.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if req.UserPrompt == "" {
		return "", ErrEmptyText
	}

	out, err := c.chat.CreateCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create completion: %w", err)
	}
	return out, nil
}

// GenerateEmbedding generates an embedding for a single text.
func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	batch, err := c.GenerateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return batch[0], nil
}

// GenerateEmbeddings generates embeddings for a batch of texts, preserving
// input order and verifying dimensions.
func (c *Client) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyText
	}
	for _, t := range texts {
		if t == "" {
			return nil, ErrEmptyText
		}
	}

	embeddings, err := c.embeddings.CreateEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	for _, e := range embeddings {
		if len(e) != c.dimensions {
			return nil, fmt.Errorf("%w: expected %d, got %d", ErrWrongDimensions, c.dimensions, len(e))
		}
	}
	return embeddings, nil
}
