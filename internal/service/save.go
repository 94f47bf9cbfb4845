package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/coursegen-ai/coursegen/internal/domain"
)

// FileStore persists generated courses as pretty-printed JSON files in a
// single directory, one file per course.
type FileStore struct {
	dir    string
	logger *log.Logger
}

func NewFileStore(dir string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.Default()
	}
	return &FileStore{dir: dir, logger: logger}
}

// CourseFilename derives the default file name for a topic.
func CourseFilename(topic string) string {
	name := strings.ToLower(strings.TrimSpace(topic))
	name = strings.ReplaceAll(name, " ", "_")
	return name + "_course.json"
}

// Save writes the course to disk, creating the directory if needed. An empty
// filename falls back to the topic-derived default. Returns the full path.
func (s *FileStore) Save(course *domain.Course, filename string) (string, error) {
	if course == nil || course.Topic == "" {
		return "", domain.NewDomainError(domain.ErrCodeInvalidOperation, "no course data to save")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create courses directory: %w", err)
	}

	if filename == "" {
		filename = CourseFilename(course.Topic)
	}
	path := filepath.Join(s.dir, filepath.Base(filename))

	data, err := json.MarshalIndent(course, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode course: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write course file: %w", err)
	}

	s.logger.Printf("course saved to %s", path)
	return path, nil
}

// Load reads one course file by name.
func (s *FileStore) Load(filename string) (*domain.Course, error) {
	path := filepath.Join(s.dir, filepath.Base(filename))
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to read course file: %w", err)
	}

	var course domain.Course
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, fmt.Errorf("failed to decode course file %s: %w", filename, err)
	}
	return &course, nil
}

// LoadByTopic reads the course saved under the topic's default file name.
func (s *FileStore) LoadByTopic(topic string) (*domain.Course, error) {
	return s.Load(CourseFilename(topic))
}

// List returns the course file names in the store, sorted by name.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read courses directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
