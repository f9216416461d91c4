package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Workout represents a completed exercise set stored in the database.
type Workout struct {
	ID           string
	Exercise     string
	Repetitions  int
	DurationSec  float64
	Score        float64
	Regularity   float64
	Speed        float64
	Feedback     string
	Notes        string
	DetectedByAI bool
	AIConfidence *float64
	CreatedAt    time.Time
}

// WorkoutFilter narrows List results. Zero values mean no constraint.
type WorkoutFilter struct {
	Exercise string
	Since    time.Time
	Limit    int
}

// WorkoutRepository provides CRUD operations for workouts.
type WorkoutRepository struct {
	db *sql.DB
}

// Workouts returns the workout repository for this store.
func (s *Store) Workouts() *WorkoutRepository {
	return &WorkoutRepository{db: s.db}
}

// Create inserts a new workout into the database.
func (r *WorkoutRepository) Create(w *Workout) error {
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}

	var confidence sql.NullFloat64
	if w.AIConfidence != nil {
		confidence = sql.NullFloat64{Float64: *w.AIConfidence, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO workouts (id, exercise, repetitions, duration_sec, score, regularity, speed,
		 feedback, notes, detected_by_ai, ai_confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Exercise, w.Repetitions, w.DurationSec, w.Score, w.Regularity, w.Speed,
		w.Feedback, w.Notes, w.DetectedByAI, confidence, w.CreatedAt,
	)
	return err
}

// GetByID retrieves a workout by its ID.
func (r *WorkoutRepository) GetByID(id string) (*Workout, error) {
	row := r.db.QueryRow(
		`SELECT id, exercise, repetitions, duration_sec, score, regularity, speed,
		 feedback, notes, detected_by_ai, ai_confidence, created_at
		 FROM workouts WHERE id = ?`,
		id,
	)

	w, err := scanWorkout(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return w, nil
}

// List retrieves workouts matching the filter, newest first.
func (r *WorkoutRepository) List(filter WorkoutFilter) ([]*Workout, error) {
	query := `SELECT id, exercise, repetitions, duration_sec, score, regularity, speed,
	 feedback, notes, detected_by_ai, ai_confidence, created_at
	 FROM workouts`

	var conditions []string
	var args []any
	if filter.Exercise != "" {
		conditions = append(conditions, "exercise = ?")
		args = append(args, filter.Exercise)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []*Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return workouts, nil
}

// Delete removes a workout from the database by its ID.
func (r *WorkoutRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// scanTarget lets scanWorkout serve both QueryRow and Query results.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanWorkout(row scanTarget) (*Workout, error) {
	w := &Workout{}
	var detected int
	var confidence sql.NullFloat64

	err := row.Scan(&w.ID, &w.Exercise, &w.Repetitions, &w.DurationSec, &w.Score,
		&w.Regularity, &w.Speed, &w.Feedback, &w.Notes, &detected, &confidence, &w.CreatedAt)
	if err != nil {
		return nil, err
	}

	w.DetectedByAI = detected != 0
	if confidence.Valid {
		w.AIConfidence = &confidence.Float64
	}
	return w, nil
}
