package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/masteryengine/internal/progress"
)

// progressRepo implements ProgressRepo. Each field of a progress record has
// its own table so an append touches a single row.
type progressRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func scope(userID, curriculumID string) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("curriculum_id", curriculumID),
	)
}

func (r *progressRepo) Load(ctx context.Context, userID, curriculumID string) (progress.Record, error) {
	rec := progress.New(userID, curriculumID)

	if err := r.loadCompleted(ctx, &rec); err != nil {
		return progress.Record{}, err
	}
	if err := r.loadExams(ctx, &rec); err != nil {
		return progress.Record{}, err
	}
	if err := r.loadVideoPositions(ctx, &rec); err != nil {
		return progress.Record{}, err
	}
	if err := r.loadActivities(ctx, &rec); err != nil {
		return progress.Record{}, err
	}
	return rec, nil
}

func (r *progressRepo) loadCompleted(ctx context.Context, rec *progress.Record) error {
	query, args := builder.Select("lesson_id").
		From(builder.Table("completed_lessons")).
		Where(scope(rec.UserID, rec.CurriculumID)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query completed lessons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan completed lesson: %w", err)
		}
		rec.Completed[id] = struct{}{}
	}
	return rows.Err()
}

func (r *progressRepo) loadExams(ctx context.Context, rec *progress.Record) error {
	query, args := builder.Select(examResultColumns...).
		From(builder.Table("exam_results")).
		Where(scope(rec.UserID, rec.CurriculumID)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query exam results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		res, err := scanExamResult(rows)
		if err != nil {
			return err
		}
		rec.Exams[res.ExamID] = res
	}
	return rows.Err()
}

var examResultColumns = []string{"exam_id", "score", "passed", "completed_at", "answers"}

// scanExamResult reads one row selected with examResultColumns.
func scanExamResult(row interface{ Scan(...any) error }) (progress.ExamResult, error) {
	var (
		res         progress.ExamResult
		completedAt string
		answers     string
	)
	if err := row.Scan(&res.ExamID, &res.Score, &res.Passed, &completedAt, &answers); err != nil {
		return res, fmt.Errorf("scan exam result: %w", err)
	}
	var err error
	if res.CompletedAt, err = parseTime(completedAt); err != nil {
		return res, err
	}
	if err := json.Unmarshal([]byte(answers), &res.Answers); err != nil {
		return res, fmt.Errorf("unmarshal answers for %q: %w", res.ExamID, err)
	}
	return res, nil
}

func (r *progressRepo) loadVideoPositions(ctx context.Context, rec *progress.Record) error {
	query, args := builder.Select("lesson_id", "seconds").
		From(builder.Table("video_positions")).
		Where(scope(rec.UserID, rec.CurriculumID)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query video positions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id      string
			seconds int
		)
		if err := rows.Scan(&id, &seconds); err != nil {
			return fmt.Errorf("scan video position: %w", err)
		}
		rec.VideoPositions[id] = seconds
	}
	return rows.Err()
}

func (r *progressRepo) loadActivities(ctx context.Context, rec *progress.Record) error {
	query, args := builder.Select("timestamp", "kind", "lesson_id", "curriculum_id", "minutes").
		From(builder.Table("activities")).
		Where(scope(rec.UserID, rec.CurriculumID)).
		OrderBy("sequence").
		Query()

	acts, err := queryActivities(ctx, r.db, query, args)
	if err != nil {
		return err
	}
	rec.Activities = acts
	return nil
}

func queryActivities(ctx context.Context, q querier, query string, args []any) ([]progress.Activity, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var out []progress.Activity
	for rows.Next() {
		var (
			a  progress.Activity
			ts string
		)
		if err := rows.Scan(&ts, &a.Kind, &a.LessonID, &a.CurriculumID, &a.Minutes); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		if a.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *progressRepo) AppendCompletion(ctx context.Context, userID, curriculumID, lessonID string, at time.Time, minutes int) (bool, error) {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return false, err
	}

	inserted := false
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args := builder.Insert("completed_lessons").
			Columns("user_id", "curriculum_id", "lesson_id", "completed_at").
			Values(userID, curriculumID, lessonID, formatTime(at)).
			OnConflict(
				entsql.ConflictColumns("user_id", "curriculum_id", "lesson_id"),
				entsql.DoNothing(),
			).
			Query()
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("insert completion: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			return err
		}
		inserted = true

		done := progress.New(userID, curriculumID).WithCompleted(lessonID, at, minutes)
		return insertActivity(ctx, tx, seq, userID, lastActivity(done))
	})
	if err != nil {
		return false, fmt.Errorf("append completion %q: %w", lessonID, err)
	}
	return inserted, nil
}

func (r *progressRepo) AppendExamResult(ctx context.Context, userID, curriculumID, lessonID string, res progress.ExamResult) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	if res.Answers == nil {
		answers = []byte("{}")
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		held, err := heldExamResult(ctx, tx, userID, curriculumID, res.ExamID)
		if err != nil {
			return err
		}
		if held.Accepts(res) {
			query, args := builder.Insert("exam_results").
				Columns("user_id", "curriculum_id", "exam_id", "score", "passed", "completed_at", "answers").
				Values(userID, curriculumID, res.ExamID, res.Score, res.Passed, formatTime(res.CompletedAt), string(answers)).
				OnConflict(
					entsql.ConflictColumns("user_id", "curriculum_id", "exam_id"),
					entsql.ResolveWithNewValues(),
				).
				Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert exam result: %w", err)
			}
		}

		return insertActivity(ctx, tx, seq, userID, lastActivity(held.WithExamResult(lessonID, res)))
	})
	if err != nil {
		return fmt.Errorf("append exam result %q: %w", res.ExamID, err)
	}
	return nil
}

// heldExamResult returns a record holding only the stored result for
// examID, if there is one.
func heldExamResult(ctx context.Context, q querier, userID, curriculumID, examID string) (progress.Record, error) {
	rec := progress.New(userID, curriculumID)
	query, args := builder.Select(examResultColumns...).
		From(builder.Table("exam_results")).
		Where(entsql.And(scope(userID, curriculumID), entsql.EQ("exam_id", examID))).
		Query()

	res, err := scanExamResult(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("query stored exam result: %w", err)
	}
	rec.Exams[res.ExamID] = res
	return rec, nil
}

func (r *progressRepo) SetVideoPosition(ctx context.Context, userID, curriculumID, lessonID string, seconds int, at time.Time, minutes int) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		query, args := builder.Insert("video_positions").
			Columns("user_id", "curriculum_id", "lesson_id", "seconds", "updated_at").
			Values(userID, curriculumID, lessonID, seconds, formatTime(at)).
			OnConflict(
				entsql.ConflictColumns("user_id", "curriculum_id", "lesson_id"),
				entsql.ResolveWithNewValues(),
			).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert video position: %w", err)
		}

		watched := progress.New(userID, curriculumID).WithVideoPosition(lessonID, seconds, at, minutes)
		return insertActivity(ctx, tx, seq, userID, lastActivity(watched))
	})
	if err != nil {
		return fmt.Errorf("set video position %q: %w", lessonID, err)
	}
	return nil
}

func (r *progressRepo) ActivityTimes(ctx context.Context, userID string) ([]time.Time, error) {
	query, args := builder.Select("timestamp", "kind", "lesson_id", "curriculum_id", "minutes").
		From(builder.Table("activities")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("sequence").
		Query()

	acts, err := queryActivities(ctx, r.db, query, args)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(acts))
	for i, a := range acts {
		out[i] = a.Timestamp
	}
	return out, nil
}

// lastActivity is the entry a progress.Record helper just logged.
func lastActivity(rec progress.Record) progress.Activity {
	return rec.Activities[len(rec.Activities)-1]
}

func insertActivity(ctx context.Context, e execer, seq int64, userID string, a progress.Activity) error {
	query, args := builder.Insert("activities").
		Columns("sequence", "user_id", "curriculum_id", "lesson_id", "kind", "minutes", "timestamp").
		Values(seq, userID, a.CurriculumID, a.LessonID, string(a.Kind), a.Minutes, formatTime(a.Timestamp)).
		Query()
	if _, err := e.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}
