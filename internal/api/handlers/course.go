package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coursegen-ai/coursegen/internal/api"
	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/pagination"
	"github.com/coursegen-ai/coursegen/internal/service"
)

// CourseBuilderService generates a full course for a topic.
type CourseBuilderService interface {
	BuildCourse(ctx context.Context, opts service.BuildOptions) (*domain.Course, error)
}

// CourseStore persists courses as JSON files on disk.
type CourseStore interface {
	Save(course *domain.Course, filename string) (string, error)
	Load(filename string) (*domain.Course, error)
	LoadByTopic(topic string) (*domain.Course, error)
	List() ([]string, error)
}

// CourseArchive persists courses in the database and serves listing and
// semantic search. Nil when the server runs without a database.
type CourseArchive interface {
	Archive(ctx context.Context, course *domain.Course) error
	Get(ctx context.Context, id string) (*domain.Course, error)
	GetByTopic(ctx context.Context, topic string) (*domain.Course, error)
	List(ctx context.Context, limit int, cursor string) (*pagination.PageResult[domain.CourseSummary], error)
	Search(ctx context.Context, query string) ([]domain.CourseSearchResult, error)
}

// CourseMirror keeps course JSON in bucket storage. Nil when S3 is not
// configured.
type CourseMirror interface {
	Upload(ctx context.Context, course *domain.Course) error
	DownloadURL(ctx context.Context, courseID string) (string, error)
}

type CourseHandler struct {
	builder CourseBuilderService
	store   CourseStore
	archive CourseArchive
	mirror  CourseMirror
	logger  Logger
}

// Logger is the minimal logging surface handlers need.
type Logger interface {
	Printf(format string, v ...any)
}

func NewCourseHandler(builder CourseBuilderService, store CourseStore, archive CourseArchive, mirror CourseMirror, logger Logger) *CourseHandler {
	return &CourseHandler{
		builder: builder,
		store:   store,
		archive: archive,
		mirror:  mirror,
		logger:  logger,
	}
}

type BuildCourseRequest struct {
	Topic        string `json:"topic"`
	LearningMode string `json:"learning_mode"`
	UseWeb       bool   `json:"use_web"`
	Filename     string `json:"filename"`
}

type BuildCourseResponse struct {
	Course *domain.Course `json:"course"`
	File   string         `json:"file"`
}

// Build generates a course, saves it to disk, and archives it when a
// database is configured. Archive and mirror failures do not fail the
// request since the course is already on disk.
func (h *CourseHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req BuildCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Topic == "" {
		api.Error(w, http.StatusBadRequest, "topic is required")
		return
	}

	mode := domain.LearningMode(req.LearningMode)
	if req.LearningMode != "" && !domain.IsValidLearningMode(mode) {
		api.Error(w, http.StatusBadRequest, "invalid learning mode")
		return
	}

	course, err := h.builder.BuildCourse(r.Context(), service.BuildOptions{
		Topic:        req.Topic,
		LearningMode: mode,
		UseWeb:       req.UseWeb,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	path, err := h.store.Save(course, req.Filename)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if h.archive != nil {
		if err := h.archive.Archive(r.Context(), course); err != nil {
			h.logger.Printf("failed to archive course %s: %v", course.ID, err)
		}
	}

	if h.mirror != nil {
		if err := h.mirror.Upload(r.Context(), course); err != nil {
			h.logger.Printf("failed to mirror course %s: %v", course.ID, err)
		}
	}

	api.Success(w, http.StatusCreated, BuildCourseResponse{Course: course, File: path})
}

func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		api.Error(w, http.StatusNotImplemented, "course archive not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	course, err := h.archive.Get(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, course)
}

// GetByTopic serves the latest course for a topic, from the archive when
// available and from disk otherwise.
func (h *CourseHandler) GetByTopic(w http.ResponseWriter, r *http.Request) {
	topic := chi.URLParam(r, "topic")
	if topic == "" {
		api.Error(w, http.StatusBadRequest, "topic is required")
		return
	}

	var (
		course *domain.Course
		err    error
	)
	if h.archive != nil {
		course, err = h.archive.GetByTopic(r.Context(), topic)
	} else {
		course, err = h.store.LoadByTopic(topic)
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, course)
}

type CourseListResponse struct {
	Items   []domain.CourseSummary `json:"items"`
	Cursor  string                 `json:"cursor,omitempty"`
	HasMore bool                   `json:"has_more"`
}

func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		api.Error(w, http.StatusNotImplemented, "course archive not configured")
		return
	}

	cursor := r.URL.Query().Get("cursor")
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	page, err := h.archive.List(r.Context(), limit, cursor)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, CourseListResponse{
		Items:   page.Items,
		Cursor:  page.Cursor,
		HasMore: page.HasMore,
	})
}

type CourseFilesResponse struct {
	Files []string `json:"files"`
}

// ListFiles returns the course file names saved on disk.
func (h *CourseHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.List()
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, CourseFilesResponse{Files: names})
}

// GetFile loads one saved course file by name.
func (h *CourseHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if filename == "" {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	course, err := h.store.Load(filename)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, course)
}

type SearchCoursesRequest struct {
	Query string `json:"query"`
}

type SearchCoursesResponse struct {
	Results []domain.CourseSearchResult `json:"results"`
}

func (h *CourseHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		api.Error(w, http.StatusNotImplemented, "course archive not configured")
		return
	}

	var req SearchCoursesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Query == "" {
		api.Error(w, http.StatusBadRequest, "query is required")
		return
	}

	results, err := h.archive.Search(r.Context(), req.Query)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, SearchCoursesResponse{Results: results})
}

type DownloadURLResponse struct {
	URL string `json:"url"`
}

// Download returns a presigned URL for the mirrored course JSON.
func (h *CourseHandler) Download(w http.ResponseWriter, r *http.Request) {
	if h.mirror == nil {
		api.Error(w, http.StatusNotImplemented, "course mirror not configured")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		api.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	url, err := h.mirror.DownloadURL(r.Context(), id)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, DownloadURLResponse{URL: url})
}
