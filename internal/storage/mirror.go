package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

// ObjectStore is the subset of S3 operations the mirror needs.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, contentType string, body []byte) error
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
}

// CourseMirror keeps a copy of each archived course as a JSON object in
// bucket storage, addressable by course ID.
type CourseMirror struct {
	store ObjectStore
}

func NewCourseMirror(store ObjectStore) *CourseMirror {
	return &CourseMirror{store: store}
}

func courseKey(courseID string) string {
	return "courses/" + courseID + ".json"
}

// Upload writes the course JSON to the bucket under its ID.
func (m *CourseMirror) Upload(ctx context.Context, course *domain.Course) error {
	if course == nil || course.ID == "" {
		return domain.NewDomainError(domain.ErrCodeInvalidOperation, "course has no ID to mirror under")
	}

	body, err := json.MarshalIndent(course, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode course for mirror: %w", err)
	}

	return m.store.PutObject(ctx, courseKey(course.ID), "application/json", body)
}

// DownloadURL returns a presigned URL for the mirrored course JSON.
func (m *CourseMirror) DownloadURL(ctx context.Context, courseID string) (string, error) {
	if courseID == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "course ID is required")
	}
	return m.store.GenerateDownloadURL(ctx, courseKey(courseID))
}
