package store

import (
	"database/sql"
	"time"
)

const (
	// XPPerLevel is the amount of experience required to advance one level.
	XPPerLevel = 100
	// MaxLevel is the highest level a user can reach.
	MaxLevel = 50
)

// UserStats holds the single-row aggregate profile for the local user.
type UserStats struct {
	TotalWorkouts  int
	TotalTimeSec   float64
	XP             int
	Level          int
	CurrentStreak  int
	BestStreak     int
	LastWorkoutDay string
}

// StatsDelta describes how a workout changed the user profile.
type StatsDelta struct {
	XPEarned      int
	PreviousLevel int
	LeveledUp     bool
	Stats         *UserStats
}

// StatsRepository provides access to the aggregate user profile.
type StatsRepository struct {
	db *sql.DB
}

// Stats returns the stats repository for this store.
func (s *Store) Stats() *StatsRepository {
	return &StatsRepository{db: s.db}
}

// Get retrieves the current user stats row.
func (r *StatsRepository) Get() (*UserStats, error) {
	row := r.db.QueryRow(
		`SELECT total_workouts, total_time_sec, xp, level, current_streak, best_streak, last_workout_day
		 FROM user_stats WHERE id = 1`,
	)

	stats := &UserStats{}
	err := row.Scan(&stats.TotalWorkouts, &stats.TotalTimeSec, &stats.XP, &stats.Level,
		&stats.CurrentStreak, &stats.BestStreak, &stats.LastWorkoutDay)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// ApplyWorkout folds a completed workout into the user profile.
//
// Algorithm:
//  1. Read the stats row inside a transaction.
//  2. Award XP based on the session score and recompute the level.
//  3. Update the daily streak keyed by the workout's calendar day.
//  4. Bump workout and time totals, then commit.
func (r *StatsRepository) ApplyWorkout(score, durationSec float64, at time.Time) (*StatsDelta, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		`SELECT total_workouts, total_time_sec, xp, level, current_streak, best_streak, last_workout_day
		 FROM user_stats WHERE id = 1`,
	)

	stats := &UserStats{}
	err = row.Scan(&stats.TotalWorkouts, &stats.TotalTimeSec, &stats.XP, &stats.Level,
		&stats.CurrentStreak, &stats.BestStreak, &stats.LastWorkoutDay)
	if err != nil {
		return nil, err
	}

	delta := &StatsDelta{PreviousLevel: stats.Level}

	delta.XPEarned = XPForScore(score)
	stats.XP += delta.XPEarned
	stats.Level = LevelForXP(stats.XP)
	delta.LeveledUp = stats.Level > delta.PreviousLevel

	day := at.Format("2006-01-02")
	switch stats.LastWorkoutDay {
	case day:
		// Another workout on the same day leaves the streak untouched.
	case at.AddDate(0, 0, -1).Format("2006-01-02"):
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.BestStreak {
			stats.BestStreak = stats.CurrentStreak
		}
	default:
		stats.CurrentStreak = 1
		if stats.BestStreak < 1 {
			stats.BestStreak = 1
		}
	}
	stats.LastWorkoutDay = day

	stats.TotalWorkouts++
	stats.TotalTimeSec += durationSec

	_, err = tx.Exec(
		`UPDATE user_stats
		 SET total_workouts = ?, total_time_sec = ?, xp = ?, level = ?,
		     current_streak = ?, best_streak = ?, last_workout_day = ?
		 WHERE id = 1`,
		stats.TotalWorkouts, stats.TotalTimeSec, stats.XP, stats.Level,
		stats.CurrentStreak, stats.BestStreak, stats.LastWorkoutDay,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	delta.Stats = stats
	return delta, nil
}

// XPForScore maps a session score to an experience award.
func XPForScore(score float64) int {
	switch {
	case score >= 90:
		return 100
	case score >= 75:
		return 70
	case score >= 60:
		return 50
	default:
		return 30
	}
}

// LevelForXP computes the level for a total experience amount.
func LevelForXP(xp int) int {
	level := xp/XPPerLevel + 1
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}

// LevelTitle returns the rank name shown for a level.
func LevelTitle(level int) string {
	switch {
	case level >= 41:
		return "Elite"
	case level >= 26:
		return "Advanced"
	case level >= 11:
		return "Intermediate"
	default:
		return "Beginner"
	}
}
