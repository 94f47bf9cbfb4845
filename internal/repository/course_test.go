//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/pagination"
	"github.com/coursegen-ai/coursegen/internal/testutil"
)

func newArchivedCourse(topic string) *domain.Course {
	return &domain.Course{
		ID:           uuid.NewString(),
		Topic:        topic,
		LearningMode: domain.LearningModeHandsOn,
		Menu: []domain.CourseModule{
			{
				Module:  "Foundations",
				Section: "Core concepts",
				Items: []domain.Lesson{
					{Title: "Getting Started", Path: "getting-started", Lesson: "Intro content."},
					{Title: "Going Deeper", Path: "going-deeper", Lesson: "More content."},
				},
			},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestCourseRepository_CreateAndGetByID(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCourseRepository(pool)
	course := newArchivedCourse("Thermodynamics")

	require.NoError(t, repo.Create(ctx, course))

	retrieved, err := repo.GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, retrieved.ID)
	assert.Equal(t, "Thermodynamics", retrieved.Topic)
	assert.Equal(t, domain.LearningModeHandsOn, retrieved.LearningMode)
	require.Len(t, retrieved.Menu, 1)
	assert.Len(t, retrieved.Menu[0].Items, 2)
}

func TestCourseRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCourseRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestCourseRepository_GetByTopic_CaseInsensitiveLatest(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCourseRepository(pool)

	older := newArchivedCourse("Go Concurrency")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	require.NoError(t, repo.Create(ctx, older))

	newer := newArchivedCourse("Go Concurrency")
	require.NoError(t, repo.Create(ctx, newer))

	retrieved, err := repo.GetByTopic(ctx, "go concurrency")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, retrieved.ID)
}

func TestCourseRepository_List_KeysetPagination(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCourseRepository(pool)

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)
	topics := []string{"Topic A", "Topic B", "Topic C"}
	for i, topic := range topics {
		course := newArchivedCourse(topic)
		course.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, course))
	}

	first, err := repo.List(ctx, 2, nil)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "Topic C", first[0].Topic)
	assert.Equal(t, "Topic B", first[1].Topic)
	assert.Equal(t, 2, first[0].LessonCount)

	cursor := &pagination.Cursor{LastID: first[1].ID, Timestamp: first[1].CreatedAt}
	second, err := repo.List(ctx, 2, cursor)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Topic A", second[0].Topic)
}

func TestCourseRepository_UpdateEmbeddingAndSearch(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCourseRepository(pool)

	matched := newArchivedCourse("Heat Transfer")
	require.NoError(t, repo.Create(ctx, matched))
	unembedded := newArchivedCourse("Unrelated")
	require.NoError(t, repo.Create(ctx, unembedded))

	embedding := make([]float32, 1536)
	embedding[0] = 1
	require.NoError(t, repo.UpdateEmbedding(ctx, matched.ID, embedding))

	results, err := repo.SearchByEmbedding(ctx, embedding, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, matched.ID, results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 0.001)
}

func TestCourseRepository_UpdateEmbedding_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCourseRepository(pool)

	embedding := make([]float32, 1536)
	err := repo.UpdateEmbedding(ctx, uuid.NewString(), embedding)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestCourseRepository_Delete(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewCourseRepository(pool)
	course := newArchivedCourse("Ephemeral")
	require.NoError(t, repo.Create(ctx, course))

	require.NoError(t, repo.Delete(ctx, course.ID))

	_, err := repo.GetByID(ctx, course.ID)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, course.ID), domain.ErrCourseNotFound)
}

func TestTxRunner_ArchiveCourse(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	runner := NewTxRunner(pool)
	courseRepo := NewCourseRepository(pool)
	jobRepo := NewEmbeddingJobRepository(pool)

	course := newArchivedCourse("Atomic Archive")
	job := &domain.EmbeddingJob{
		ID:        uuid.NewString(),
		CourseID:  course.ID,
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	require.NoError(t, runner.ArchiveCourse(ctx, course, job))

	_, err := courseRepo.GetByID(ctx, course.ID)
	require.NoError(t, err)

	retrieved, err := jobRepo.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, retrieved.CourseID)
}

func TestTxRunner_ArchiveCourse_RollsBackOnJobFailure(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	runner := NewTxRunner(pool)
	courseRepo := NewCourseRepository(pool)

	course := newArchivedCourse("Rollback")
	// References a course that does not exist, so the job insert fails.
	job := &domain.EmbeddingJob{
		ID:        uuid.NewString(),
		CourseID:  uuid.NewString(),
		Status:    domain.EmbeddingJobStatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}

	err := runner.ArchiveCourse(ctx, course, job)
	require.Error(t, err)

	_, err = courseRepo.GetByID(ctx, course.ID)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}
