package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/coursegen-ai/coursegen/internal/domain"
	"github.com/coursegen-ai/coursegen/internal/pagination"
)

// CourseRepository persists generated courses in the archive. The full course
// body is stored as jsonb; the embedding column powers semantic search over
// topics and module titles.
type CourseRepository struct {
	db dbtx
}

func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{db: pool}
}

func NewCourseRepositoryWithTx(tx pgx.Tx) *CourseRepository {
	return &CourseRepository{db: tx}
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	body, err := json.Marshal(course)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO courses (id, topic, learning_mode, lesson_count, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		course.ID, course.Topic, course.LearningMode, course.LessonCount(), body, course.CreatedAt,
	)
	return err
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	var body []byte
	err := r.db.QueryRow(ctx,
		`SELECT body FROM courses WHERE id = $1`, id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}

	var course domain.Course
	if err := json.Unmarshal(body, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// GetByTopic returns the most recently generated course for a topic,
// matched case-insensitively.
func (r *CourseRepository) GetByTopic(ctx context.Context, topic string) (*domain.Course, error) {
	var body []byte
	err := r.db.QueryRow(ctx,
		`SELECT body FROM courses
		 WHERE lower(topic) = lower($1)
		 ORDER BY created_at DESC
		 LIMIT 1`,
		topic,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}

	var course domain.Course
	if err := json.Unmarshal(body, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// List returns course summaries newest first, keyset-paginated by
// (created_at, id).
func (r *CourseRepository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]domain.CourseSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT id, topic, learning_mode, lesson_count, created_at
		 FROM courses`
	args := []any{}
	if cursor != nil {
		query += ` WHERE (created_at, id) < ($1, $2)`
		args = append(args, cursor.Timestamp, cursor.LastID)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CourseSummary
	for rows.Next() {
		var s domain.CourseSummary
		if err := rows.Scan(&s.ID, &s.Topic, &s.LearningMode, &s.LessonCount, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateEmbedding stores the archive search embedding for a course.
func (r *CourseRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE courses SET embedding = $1 WHERE id = $2`,
		pgvector.NewVector(embedding), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

// SearchByEmbedding ranks archived courses by cosine distance to the query
// embedding. Courses without an embedding yet are skipped.
func (r *CourseRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]domain.CourseSearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, topic, learning_mode, lesson_count, created_at,
		        1.0 / (1.0 + (embedding <=> $1)) AS score
		 FROM courses
		 WHERE embedding IS NOT NULL
		 ORDER BY score DESC
		 LIMIT $2`,
		pgvector.NewVector(embedding), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CourseSearchResult
	for rows.Next() {
		var res domain.CourseSearchResult
		if err := rows.Scan(&res.ID, &res.Topic, &res.LearningMode, &res.LessonCount, &res.CreatedAt, &res.Score); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}
