package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/masteryengine/internal/roadmap"
)

// roadmapRepo implements RoadmapRepo, storing each roadmap as a JSON document.
type roadmapRepo struct {
	db *sql.DB
}

func (r *roadmapRepo) Save(ctx context.Context, userID string, rm roadmap.Roadmap) error {
	if rm.CreatedAt.IsZero() {
		rm.CreatedAt = time.Now()
	}
	data, err := json.Marshal(rm)
	if err != nil {
		return fmt.Errorf("marshal roadmap: %w", err)
	}

	query, args := builder.Insert("roadmaps").
		Columns("user_id", "id", "title", "created_at", "data").
		Values(userID, rm.ID, rm.Title, formatTime(rm.CreatedAt), string(data)).
		OnConflict(
			entsql.ConflictColumns("user_id", "id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save roadmap %q: %w", rm.ID, err)
	}
	return nil
}

func (r *roadmapRepo) Get(ctx context.Context, userID, id string) (roadmap.Roadmap, error) {
	query, args := builder.Select("data").
		From(builder.Table("roadmaps")).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("id", id),
		)).
		Query()

	var data string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return roadmap.Roadmap{}, fmt.Errorf("roadmap %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return roadmap.Roadmap{}, fmt.Errorf("query roadmap %q: %w", id, err)
	}
	return decodeRoadmap(data)
}

func (r *roadmapRepo) List(ctx context.Context, userID string) ([]roadmap.Roadmap, error) {
	query, args := builder.Select("data").
		From(builder.Table("roadmaps")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), "id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	defer rows.Close()

	var out []roadmap.Roadmap
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan roadmap: %w", err)
		}
		rm, err := decodeRoadmap(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// decodeRoadmap unmarshals a stored roadmap and recomputes its lock flags.
func decodeRoadmap(data string) (roadmap.Roadmap, error) {
	var rm roadmap.Roadmap
	if err := json.Unmarshal([]byte(data), &rm); err != nil {
		return roadmap.Roadmap{}, fmt.Errorf("unmarshal roadmap: %w", err)
	}
	return rm.Refresh(), nil
}
