package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coursegen-ai/coursegen/internal/api/handlers"
	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/pagination"
	"github.com/coursegen-ai/coursegen/internal/service"
)

type MockCourseBuilder struct {
	mock.Mock
}

func (m *MockCourseBuilder) BuildCourse(ctx context.Context, opts service.BuildOptions) (*domain.Course, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

type MockCourseStore struct {
	mock.Mock
}

func (m *MockCourseStore) Save(course *domain.Course, filename string) (string, error) {
	args := m.Called(course, filename)
	return args.String(0), args.Error(1)
}

func (m *MockCourseStore) Load(filename string) (*domain.Course, error) {
	args := m.Called(filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseStore) LoadByTopic(topic string) (*domain.Course, error) {
	args := m.Called(topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseStore) List() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockCourseArchive struct {
	mock.Mock
}

func (m *MockCourseArchive) Archive(ctx context.Context, course *domain.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCourseArchive) Get(ctx context.Context, id string) (*domain.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseArchive) GetByTopic(ctx context.Context, topic string) (*domain.Course, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Course), args.Error(1)
}

func (m *MockCourseArchive) List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[domain.CourseSummary], error) {
	args := m.Called(ctx, limit, cursor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult[domain.CourseSummary]), args.Error(1)
}

func (m *MockCourseArchive) Search(ctx context.Context, query string) ([]domain.CourseSearchResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CourseSearchResult), args.Error(1)
}

func setupRouter(token string) (http.Handler, *MockCourseBuilder, *MockCourseStore, *MockCourseArchive) {
	builder := new(MockCourseBuilder)
	store := new(MockCourseStore)
	archive := new(MockCourseArchive)

	cfg := RouterConfig{
		APIToken:      token,
		CourseHandler: handlers.NewCourseHandler(builder, store, archive, nil, log.Default()),
	}

	return NewRouter(cfg), builder, store, archive
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router, _, _, _ := setupRouter("")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
}

func TestRouter_CourseRoutes_RequireToken(t *testing.T) {
	router, _, _, _ := setupRouter("secret")

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/courses"},
		{http.MethodGet, "/courses"},
		{http.MethodGet, "/courses/c-123"},
		{http.MethodGet, "/courses/topic/go"},
		{http.MethodGet, "/courses/files"},
		{http.MethodPost, "/courses/search"},
		{http.MethodGet, "/courses/c-123/download"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRouter_HealthDoesNotRequireToken(t *testing.T) {
	router, _, _, _ := setupRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_GetCourse_WithValidToken(t *testing.T) {
	router, _, _, archive := setupRouter("secret")

	course := &domain.Course{
		ID:        "c-123",
		Topic:     "Go Concurrency",
		CreatedAt: time.Now().UTC(),
	}
	archive.On("Get", mock.Anything, "c-123").Return(course, nil)

	req := httptest.NewRequest(http.MethodGet, "/courses/c-123", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Go Concurrency")
	archive.AssertExpectations(t)
}

func TestRouter_BuildCourse_OpenAccess(t *testing.T) {
	router, builder, store, archive := setupRouter("")

	course := &domain.Course{
		ID:        "c-9",
		Topic:     "Rust",
		CreatedAt: time.Now().UTC(),
	}
	builder.On("BuildCourse", mock.Anything, mock.Anything).Return(course, nil)
	store.On("Save", course, "").Return("courses_json/rust_course.json", nil)
	archive.On("Archive", mock.Anything, course).Return(nil)

	body := `{"topic":"Rust"}`
	req := httptest.NewRequest(http.MethodPost, "/courses", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	builder.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestRouter_SearchCourses(t *testing.T) {
	router, _, _, archive := setupRouter("")

	archive.On("Search", mock.Anything, "generics").Return([]domain.CourseSearchResult{
		{CourseSummary: domain.CourseSummary{ID: "c-1", Topic: "Go Generics"}, Score: 0.88},
	}, nil)

	body := `{"query":"generics"}`
	req := httptest.NewRequest(http.MethodPost, "/courses/search", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Go Generics")
}
