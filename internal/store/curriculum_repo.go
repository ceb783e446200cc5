package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/masteryengine/internal/curriculum"
)

// curriculumRepo implements CurriculumRepo. The curriculum itself is kept
// as a JSON document; the listing columns are copied out of it on save.
type curriculumRepo struct {
	db *sql.DB
}

func (r *curriculumRepo) Save(ctx context.Context, userID string, c *curriculum.Curriculum) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal curriculum: %w", err)
	}

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query, args := builder.Insert("curricula").
		Columns("user_id", "id", "title", "domain", "lessons", "created_at", "data").
		Values(userID, c.ID, c.Title, c.Domain, c.LessonCount(), formatTime(createdAt), string(data)).
		OnConflict(
			entsql.ConflictColumns("user_id", "id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save curriculum %q: %w", c.ID, err)
	}
	return nil
}

func (r *curriculumRepo) Get(ctx context.Context, userID, id string) (*curriculum.Curriculum, error) {
	query, args := builder.Select("data").
		From(builder.Table("curricula")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("id", id),
		)).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("curriculum %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query curriculum %q: %w", id, err)
	}

	var c curriculum.Curriculum
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("unmarshal curriculum %q: %w", id, err)
	}
	return &c, nil
}

func (r *curriculumRepo) List(ctx context.Context, userID string) ([]CurriculumSummary, error) {
	query, args := builder.Select("id", "title", "domain", "lessons", "created_at").
		From(builder.Table("curricula")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), "id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list curricula: %w", err)
	}
	defer rows.Close()

	var out []CurriculumSummary
	for rows.Next() {
		var (
			s         CurriculumSummary
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.Title, &s.Domain, &s.Lessons, &createdAt); err != nil {
			return nil, fmt.Errorf("scan curriculum: %w", err)
		}
		if s.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
