package rag

import (
	"context"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

// Embedder produces embeddings for chunk and query text.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Indexer builds a similarity index from fetched web pages.
type Indexer struct {
	splitter *Splitter
	embedder Embedder
}

func NewIndexer(embedder Embedder) *Indexer {
	return &Indexer{
		splitter: NewSplitter(DefaultChunkSize, DefaultChunkOverlap),
		embedder: embedder,
	}
}

// Build chunks every hit's content, embeds the chunks in one batch, and
// returns a populated index. Hits with no usable content contribute nothing.
// An empty hit list yields an empty index, not an error.
func (ix *Indexer) Build(ctx context.Context, hits []domain.SearchHit) (*Index, error) {
	index := NewIndex(ix.embedder.Dimensions())

	var chunks []Chunk
	var texts []string
	for _, hit := range hits {
		for _, text := range ix.splitter.Split(hit.Content) {
			chunks = append(chunks, Chunk{Text: text, Title: hit.Title, URL: hit.URL})
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return index, nil
	}

	vectors, err := ix.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"failed to embed document chunks", err)
	}

	if err := index.Add(vectors, chunks); err != nil {
		return nil, err
	}
	return index, nil
}
