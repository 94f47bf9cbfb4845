package domain

import "time"

// SearchHit is one successfully fetched web search result. Immutable once
// produced by the fetcher; discarded after its content has been indexed.
type SearchHit struct {
	Rank    int    `json:"rank"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Content string `json:"content"`
}

// GroundedAnswer is the output of the retrieval pipeline: a model answer
// plus the web sources its grounding context came from.
type GroundedAnswer struct {
	Answer  string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
}

// EmbeddingJobStatus tracks the lifecycle of an archive embedding job.
type EmbeddingJobStatus string

const (
	EmbeddingJobStatusPending    EmbeddingJobStatus = "pending"
	EmbeddingJobStatusProcessing EmbeddingJobStatus = "processing"
	EmbeddingJobStatusCompleted  EmbeddingJobStatus = "completed"
	EmbeddingJobStatusFailed     EmbeddingJobStatus = "failed"
)

// EmbeddingJob queues embedding generation for an archived course.
type EmbeddingJob struct {
	ID          string
	CourseID    string
	Status      EmbeddingJobStatus
	Retries     int
	Error       string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}
