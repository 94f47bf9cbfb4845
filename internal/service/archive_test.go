package service

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/pagination"
)

// MockArchiveRepository mocks archive persistence
type MockArchiveRepository struct {
	mock.Mock
}

func (m *MockArchiveRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockArchiveRepository) GetByTopic(ctx context.Context, topic string) (*domain.Course, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockArchiveRepository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]domain.CourseSummary, error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CourseSummary), args.Error(1)
}

func (m *MockArchiveRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.CourseSearchResult, error) {
	args := m.Called(ctx, embedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CourseSearchResult), args.Error(1)
}

func (m *MockArchiveRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	args := m.Called(ctx, id, embedding)
	return args.Error(0)
}

// MockArchiveWriter mocks the transactional archive insert
type MockArchiveWriter struct {
	mock.Mock
}

func (m *MockArchiveWriter) ArchiveCourse(ctx context.Context, course *domain.Course, job *domain.EmbeddingJob) error {
	args := m.Called(ctx, course, job)
	return args.Error(0)
}

// MockEmbedder mocks embedding generation
type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func TestArchive_EnqueuesEmbeddingJob(t *testing.T) {
	writer := new(MockArchiveWriter)
	course := testCourse()

	writer.On("ArchiveCourse", mock.Anything, course, mock.MatchedBy(func(job *domain.EmbeddingJob) bool {
		return job.CourseID == course.ID &&
			job.Status == domain.EmbeddingJobStatusPending &&
			job.ID != ""
	})).Return(nil)

	s := NewArchiveService(new(MockArchiveRepository), writer, new(MockEmbedder), log.Default())

	err := s.Archive(context.Background(), course)

	assert.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestEmbedCourse(t *testing.T) {
	repo := new(MockArchiveRepository)
	embed := new(MockEmbedder)
	course := testCourse()
	vector := []float32{0.1, 0.2}

	repo.On("GetByID", mock.Anything, "c1").Return(course, nil)
	embed.On("GenerateEmbedding", mock.Anything, course.EmbeddingText()).Return(vector, nil)
	repo.On("UpdateEmbedding", mock.Anything, "c1", vector).Return(nil)

	s := NewArchiveService(repo, new(MockArchiveWriter), embed, log.Default())

	err := s.EmbedCourse(context.Background(), "c1")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
	embed.AssertExpectations(t)
}

func TestEmbedCourse_NotFound(t *testing.T) {
	repo := new(MockArchiveRepository)
	repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrCourseNotFound)

	s := NewArchiveService(repo, new(MockArchiveWriter), new(MockEmbedder), log.Default())

	err := s.EmbedCourse(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestArchiveList_PassesCursor(t *testing.T) {
	repo := new(MockArchiveRepository)
	now := time.Now().UTC()
	cursorStr := pagination.EncodeCursor("c9", now)

	repo.On("List", mock.Anything, 20, mock.MatchedBy(func(c *pagination.Cursor) bool {
		return c != nil && c.LastID == "c9"
	})).Return([]domain.CourseSummary{{ID: "c1", Topic: "Go", CreatedAt: now}}, nil)

	s := NewArchiveService(repo, new(MockArchiveWriter), new(MockEmbedder), log.Default())

	page, err := s.List(context.Background(), 0, cursorStr)

	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
	repo.AssertExpectations(t)
}

func TestArchiveList_InvalidCursor(t *testing.T) {
	s := NewArchiveService(new(MockArchiveRepository), new(MockArchiveWriter), new(MockEmbedder), log.Default())

	_, err := s.List(context.Background(), 10, "not-base64!!")

	require.Error(t, err)
	var domainErr *domain.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.ErrCodeValidation, domainErr.Code)
}

func TestArchiveSearch(t *testing.T) {
	repo := new(MockArchiveRepository)
	embed := new(MockEmbedder)
	vector := []float32{0.5, 0.5}

	embed.On("GenerateEmbedding", mock.Anything, "heat transfer").Return(vector, nil)
	repo.On("SearchByEmbedding", mock.Anything, vector, searchResultLimit).Return([]domain.CourseSearchResult{
		{CourseSummary: domain.CourseSummary{ID: "c1", Topic: "Thermodynamics"}, Score: 0.92},
	}, nil)

	s := NewArchiveService(repo, new(MockArchiveWriter), embed, log.Default())

	results, err := s.Search(context.Background(), "heat transfer")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Thermodynamics", results[0].Topic)
}

func TestArchiveSearch_EmptyQuery(t *testing.T) {
	s := NewArchiveService(new(MockArchiveRepository), new(MockArchiveWriter), new(MockEmbedder), log.Default())

	_, err := s.Search(context.Background(), "")

	assert.Error(t, err)
}
