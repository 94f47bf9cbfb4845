package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

// TxRunner runs archive writes inside one transaction, so a course and its
// embedding job are enqueued together or not at all.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

func (r *TxRunner) WithTx(ctx context.Context, fn func(courses *CourseRepository, jobs *EmbeddingJobRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(NewCourseRepositoryWithTx(tx), NewEmbeddingJobRepositoryWithTx(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

// ArchiveCourse inserts a course and its embedding job atomically.
func (r *TxRunner) ArchiveCourse(ctx context.Context, course *domain.Course, job *domain.EmbeddingJob) error {
	return r.WithTx(ctx, func(courses *CourseRepository, jobs *EmbeddingJobRepository) error {
		if err := courses.Create(ctx, course); err != nil {
			return err
		}
		return jobs.Create(ctx, job)
	})
}
