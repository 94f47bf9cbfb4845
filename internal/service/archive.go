package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/pagination"
)

const searchResultLimit = 10

// ArchiveRepository persists courses and serves archive reads.
type ArchiveRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	GetByTopic(ctx context.Context, topic string) (*domain.Course, error)
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]domain.CourseSummary, error)
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.CourseSearchResult, error)
	UpdateEmbedding(ctx context.Context, id string, embedding []float32) error
}

// ArchiveWriter runs the archive insert transactionally with its job enqueue.
type ArchiveWriter interface {
	ArchiveCourse(ctx context.Context, course *domain.Course, job *domain.EmbeddingJob) error
}

// Embedder produces embeddings for archive search.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ArchiveService stores generated courses in Postgres and powers listing and
// semantic search over them. Embeddings are computed asynchronously by the
// jobs worker via EmbedCourse.
type ArchiveService struct {
	repo   ArchiveRepository
	writer ArchiveWriter
	embed  Embedder
	logger *log.Logger
}

func NewArchiveService(repo ArchiveRepository, writer ArchiveWriter, embed Embedder, logger *log.Logger) *ArchiveService {
	if logger == nil {
		logger = log.Default()
	}
	return &ArchiveService{repo: repo, writer: writer, embed: embed, logger: logger}
}

// Archive stores a generated course and enqueues its embedding job in one
// transaction.
func (s *ArchiveService) Archive(ctx context.Context, course *domain.Course) error {
	job := &domain.EmbeddingJob{
		ID:        uuid.NewString(),
		CourseID:  course.ID,
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.writer.ArchiveCourse(ctx, course, job); err != nil {
		return err
	}
	s.logger.Printf("archived course %s (%q), embedding job %s enqueued", course.ID, course.Topic, job.ID)
	return nil
}

// EmbedCourse computes and stores the search embedding for an archived
// course. Called by the jobs worker.
func (s *ArchiveService) EmbedCourse(ctx context.Context, courseID string) error {
	course, err := s.repo.GetByID(ctx, courseID)
	if err != nil {
		return err
	}

	embedding, err := s.embed.GenerateEmbedding(ctx, course.EmbeddingText())
	if err != nil {
		return err
	}

	return s.repo.UpdateEmbedding(ctx, courseID, embedding)
}

// Get returns an archived course by ID.
func (s *ArchiveService) Get(ctx context.Context, id string) (*domain.Course, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByTopic returns the latest archived course for a topic.
func (s *ArchiveService) GetByTopic(ctx context.Context, topic string) (*domain.Course, error) {
	return s.repo.GetByTopic(ctx, topic)
}

// List returns a page of course summaries, newest first.
func (s *ArchiveService) List(ctx context.Context, limit int, cursorStr string) (*pagination.PageResult[domain.CourseSummary], error) {
	cursor, err := pagination.DecodeCursor(cursorStr)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid cursor", err)
	}
	if limit <= 0 {
		limit = 20
	}

	items, err := s.repo.List(ctx, limit, cursor)
	if err != nil {
		return nil, err
	}

	next := pagination.CreateNextCursor(items, limit,
		func(s domain.CourseSummary) string { return s.ID },
		func(s domain.CourseSummary) time.Time { return s.CreatedAt })

	return &pagination.PageResult[domain.CourseSummary]{
		Items:   items,
		Cursor:  next,
		HasMore: next != "",
	}, nil
}

// Search finds archived courses semantically similar to the query.
func (s *ArchiveService) Search(ctx context.Context, query string) ([]domain.CourseSearchResult, error) {
	if query == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "query cannot be empty")
	}

	embedding, err := s.embed.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream,
			"failed to embed search query", err)
	}

	return s.repo.SearchByEmbedding(ctx, embedding, searchResultLimit)
}
