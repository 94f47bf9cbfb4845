package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/openai"
)

const (
	// MaxSources caps how many distinct pages an answer cites.
	MaxSources = 5

	answerTemperature = 0.7
	answerMaxTokens   = 900

	answerSystemPrompt = "You are a research assistant. Answer the question " +
		"using only the provided web context. Be accurate and concise. If the " +
		"context does not cover the question, say what is missing instead of " +
		"guessing."
)

// WebFetcher searches the web and returns hits with extracted page content.
type WebFetcher interface {
	SearchAndFetch(ctx context.Context, query string, maxResults int) ([]domain.SearchHit, error)
}

// Completer generates a chat completion.
type Completer interface {
	Complete(ctx context.Context, req openai.CompletionRequest) (string, error)
}

// Pipeline is the full retrieval flow: search the web, index the fetched
// pages, and answer questions grounded in the closest chunks.
type Pipeline struct {
	fetcher    WebFetcher
	indexer    *Indexer
	embedder   Embedder
	chat       Completer
	logger     *log.Logger
	maxResults int
	topK       int
}

func NewPipeline(fetcher WebFetcher, embedder Embedder, chat Completer, maxResults int, logger *log.Logger) *Pipeline {
	if maxResults <= 0 {
		maxResults = 8
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{
		fetcher:    fetcher,
		indexer:    NewIndexer(embedder),
		embedder:   embedder,
		chat:       chat,
		logger:     logger,
		maxResults: maxResults,
		topK:       DefaultTopK,
	}
}

// BuildIndex searches for the query and indexes every page it can fetch.
func (p *Pipeline) BuildIndex(ctx context.Context, query string) (*Index, error) {
	hits, err := p.fetcher.SearchAndFetch(ctx, query, p.maxResults)
	if err != nil {
		return nil, err
	}
	p.logger.Printf("indexing %d fetched pages for query %q", len(hits), query)

	index, err := p.indexer.Build(ctx, hits)
	if err != nil {
		return nil, err
	}
	p.logger.Printf("index ready with %d chunks", index.Len())
	return index, nil
}

// Retrieve embeds the question and returns its nearest chunks.
func (p *Pipeline) Retrieve(ctx context.Context, index *Index, question string) ([]Result, error) {
	vector, err := p.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"failed to embed question", err)
	}
	return index.Search(vector, p.topK)
}

// AnswerWithContext answers a question against an already built index,
// returning the model answer and the pages the grounding chunks came from.
func (p *Pipeline) AnswerWithContext(ctx context.Context, index *Index, question string) (*domain.GroundedAnswer, error) {
	results, err := p.Retrieve(ctx, index, question)
	if err != nil {
		return nil, err
	}

	contextText, sources := FormatContext(results)
	prompt := fmt.Sprintf("Web context:\n%s\n\nQuestion: %s", contextText, question)

	answer, err := p.chat.Complete(ctx, openai.CompletionRequest{
		SystemPrompt: answerSystemPrompt,
		UserPrompt:   prompt,
		Temperature:  answerTemperature,
		MaxTokens:    answerMaxTokens,
	})
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"answer generation failed", err)
	}

	return &domain.GroundedAnswer{Answer: answer, Sources: sources}, nil
}

// Answer runs the whole flow for one question: search, index, retrieve,
// generate.
func (p *Pipeline) Answer(ctx context.Context, question string) (*domain.GroundedAnswer, error) {
	index, err := p.BuildIndex(ctx, question)
	if err != nil {
		return nil, err
	}
	return p.AnswerWithContext(ctx, index, question)
}

// FormatContext renders retrieved chunks as prompt context and collects their
// sources, deduplicated by URL in relevance order and capped at MaxSources.
func FormatContext(results []Result) (string, []domain.SourceRef) {
	var blocks []string
	var sources []domain.SourceRef
	seen := make(map[string]bool)

	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[Source: %s]\n%s", r.Chunk.Title, r.Chunk.Text))
		if !seen[r.Chunk.URL] && len(sources) < MaxSources {
			seen[r.Chunk.URL] = true
			sources = append(sources, domain.SourceRef{Title: r.Chunk.Title, URL: r.Chunk.URL})
		}
	}

	return strings.Join(blocks, "\n\n"), sources
}
