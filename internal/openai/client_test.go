package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockChatAPI is a mock for the chat completion API
type MockChatAPI struct {
	mock.Mock
}

func (m *MockChatAPI) CreateCompletion(ctx context.Context, req CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockEmbeddingAPI is a mock for the embedding API
type MockEmbeddingAPI struct {
	mock.Mock
}

func (m *MockEmbeddingAPI) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]float32), args.Error(1)
}

func makeEmbedding(dims int, seed float32) []float32 {
	e := make([]float32, dims)
	for i := range e {
		e[i] = seed + float32(i)*0.001
	}
	return e
}

func TestClient_GenerateEmbedding_Success(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithBackends(nil, mockAPI, 1536)

	ctx := context.Background()
	text := "This is a test document about Go programming."
	expected := makeEmbedding(1536, 0)

	mockAPI.On("CreateEmbeddings", ctx, []string{text}).Return([][]float32{expected}, nil)

	embedding, err := client.GenerateEmbedding(ctx, text)

	assert.NoError(t, err)
	assert.Len(t, embedding, 1536)
	assert.Equal(t, expected, embedding)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_EmptyText(t *testing.T) {
	client := NewClient("")

	ctx := context.Background()
	embedding, err := client.GenerateEmbedding(ctx, "")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_GenerateEmbeddings_Batch(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithBackends(nil, mockAPI, 1536)

	ctx := context.Background()
	texts := []string{"first chunk", "second chunk", "third chunk"}
	expected := [][]float32{
		makeEmbedding(1536, 0),
		makeEmbedding(1536, 1),
		makeEmbedding(1536, 2),
	}

	mockAPI.On("CreateEmbeddings", ctx, texts).Return(expected, nil)

	embeddings, err := client.GenerateEmbeddings(ctx, texts)

	assert.NoError(t, err)
	assert.Equal(t, expected, embeddings)
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbeddings_APIError(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithBackends(nil, mockAPI, 1536)

	ctx := context.Background()
	apiErr := errors.New("API rate limit exceeded")

	mockAPI.On("CreateEmbeddings", ctx, []string{"Test text"}).Return(nil, apiErr)

	embedding, err := client.GenerateEmbedding(ctx, "Test text")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.Contains(t, err.Error(), "failed to create embeddings")
	mockAPI.AssertExpectations(t)
}

func TestClient_GenerateEmbedding_WrongDimensions(t *testing.T) {
	mockAPI := new(MockEmbeddingAPI)
	client := NewClientWithBackends(nil, mockAPI, 1536)

	ctx := context.Background()
	wrong := [][]float32{make([]float32, 512)}

	mockAPI.On("CreateEmbeddings", ctx, []string{"Test text"}).Return(wrong, nil)

	embedding, err := client.GenerateEmbedding(ctx, "Test text")

	assert.Error(t, err)
	assert.Nil(t, embedding)
	assert.ErrorIs(t, err, ErrWrongDimensions)
	mockAPI.AssertExpectations(t)
}

func TestClient_Complete_Success(t *testing.T) {
	mockChat := new(MockChatAPI)
	client := NewClientWithBackends(mockChat, nil, 0)

	ctx := context.Background()
	req := CompletionRequest{
		SystemPrompt: "You are a course designer.",
		UserPrompt:   "Generate modules for: Thermodynamics",
		Temperature:  0.6,
		MaxTokens:    800,
	}

	mockChat.On("CreateCompletion", ctx, req).Return(`[{"module":"Basics"}]`, nil)

	out, err := client.Complete(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, `[{"module":"Basics"}]`, out)
	mockChat.AssertExpectations(t)
}

func TestClient_Complete_EmptyPrompt(t *testing.T) {
	client := NewClient("")

	out, err := client.Complete(context.Background(), CompletionRequest{})

	assert.Error(t, err)
	assert.Empty(t, out)
	assert.Equal(t, ErrEmptyText, err)
}

func TestClient_Complete_APIError(t *testing.T) {
	mockChat := new(MockChatAPI)
	client := NewClientWithBackends(mockChat, nil, 0)

	ctx := context.Background()
	req := CompletionRequest{UserPrompt: "hello"}
	mockChat.On("CreateCompletion", ctx, req).Return("", errors.New("upstream timeout"))

	out, err := client.Complete(ctx, req)

	assert.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "failed to create completion")
	mockChat.AssertExpectations(t)
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key")

	assert.NotNil(t, client)
	assert.Equal(t, DefaultEmbeddingDimensions, client.Dimensions())
}

func TestNewClientFromEnv_NoAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	client, err := NewClientFromEnv()

	assert.Nil(t, client)
	assert.Error(t, err)
	assert.Equal(t, ErrNoAPIKey, err)
}

func TestNewClientFromEnv_WithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "test-api-key")

	client, err := NewClientFromEnv()

	assert.NotNil(t, client)
	assert.NoError(t, err)
}

func TestNewOpenAIAdapter_ModelSelection(t *testing.T) {
	adapter := NewOpenAIAdapter(Config{
		APIKey:         "test-key",
		ChatModel:      "gpt-4o",
		EmbeddingModel: "text-embedding-3-small",
	})

	assert.Equal(t, "gpt-4o", adapter.chatModel)
	assert.Equal(t, "text-embedding-3-small", string(adapter.embeddingModel))
}

func TestNewOpenAIAdapter_Defaults(t *testing.T) {
	adapter := NewOpenAIAdapter(Config{APIKey: "test-key"})

	assert.Equal(t, DefaultChatModel, adapter.chatModel)
	assert.Equal(t, DefaultEmbeddingModel, adapter.embeddingModel)
}
