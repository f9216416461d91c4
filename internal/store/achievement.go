package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/repcoach/internal/exercise"
)

// Achievement is a badge the user can unlock by training.
type Achievement struct {
	ID          string
	Name        string
	Description string
	XPReward    int
	Icon        string
}

// AchievementStatus pairs an achievement with its unlock state.
type AchievementStatus struct {
	Achievement
	Unlocked   bool
	UnlockedAt *time.Time
}

// workoutFacts carries the workout columns the unlock rules read.
type workoutFacts struct {
	Exercise  string
	Score     float64
	CreatedAt time.Time
}

// achievementRule reports whether an achievement's condition holds.
type achievementRule func(stats *UserStats, workouts []workoutFacts, at time.Time) bool

// AchievementCatalog returns every achievement the system can award,
// in the order they are evaluated for unlocking.
func AchievementCatalog() []Achievement {
	return []Achievement{
		{ID: "first_step", Name: "First Step", Description: "Complete your first workout", XPReward: 50, Icon: "🏆"},
		{ID: "on_fire", Name: "On Fire!", Description: "Train 7 days in a row", XPReward: 200, Icon: "🔥"},
		{ID: "perfect_week", Name: "Perfect Week", Description: "7 workouts in one week", XPReward: 150, Icon: "⭐"},
		{ID: "century", Name: "Centurion", Description: "Complete 100 workouts", XPReward: 500, Icon: "💯"},
		{ID: "speed_demon", Name: "Speed Demon", Description: "20 workouts in one month", XPReward: 250, Icon: "⚡"},
		{ID: "perfectionist", Name: "Perfectionist", Description: "Score 95 or higher on 10 workouts", XPReward: 300, Icon: "🎯"},
		{ID: "iron_will", Name: "Iron Will", Description: "Train 30 days in a row", XPReward: 500, Icon: "🦾"},
		{ID: "dedicated", Name: "Dedicated", Description: "Complete 50 workouts", XPReward: 250, Icon: "💪"},
		{ID: "marathon", Name: "Marathoner", Description: "Accumulate 10 hours of training", XPReward: 350, Icon: "🏃"},
		{ID: "rising_star", Name: "Rising Star", Description: "Reach level 10", XPReward: 200, Icon: "🌟"},
		{ID: "elite_athlete", Name: "Elite Athlete", Description: "Reach level 25", XPReward: 500, Icon: "👑"},
		{ID: "legend", Name: "Legend", Description: "Reach level 50", XPReward: 1000, Icon: "🏅"},
		{ID: "early_bird", Name: "Early Bird", Description: "10 workouts before 8 AM", XPReward: 150, Icon: "🌅"},
		{ID: "night_owl", Name: "Night Owl", Description: "10 workouts after 10 PM", XPReward: 150, Icon: "🌙"},
		{ID: "variety_lover", Name: "Variety Lover", Description: "Complete every exercise type", XPReward: 200, Icon: "🎨"},
	}
}

// achievementRules maps achievement IDs to their unlock conditions.
var achievementRules = map[string]achievementRule{
	"first_step": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.TotalWorkouts >= 1
	},
	"on_fire": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.CurrentStreak >= 7
	},
	"perfect_week": func(_ *UserStats, workouts []workoutFacts, at time.Time) bool {
		return countSince(workouts, at, 7) >= 7
	},
	"century": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.TotalWorkouts >= 100
	},
	"speed_demon": func(_ *UserStats, workouts []workoutFacts, at time.Time) bool {
		return countSince(workouts, at, 30) >= 20
	},
	"perfectionist": func(_ *UserStats, workouts []workoutFacts, _ time.Time) bool {
		return countWithScoreAtLeast(workouts, 95) >= 10
	},
	"iron_will": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.CurrentStreak >= 30
	},
	"dedicated": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.TotalWorkouts >= 50
	},
	"marathon": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.TotalTimeSec >= 36000
	},
	"rising_star": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.Level >= 10
	},
	"elite_athlete": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.Level >= 25
	},
	"legend": func(stats *UserStats, _ []workoutFacts, _ time.Time) bool {
		return stats.Level >= 50
	},
	"early_bird": func(_ *UserStats, workouts []workoutFacts, _ time.Time) bool {
		return countInHourRange(workouts, 0, 8) >= 10
	},
	"night_owl": func(_ *UserStats, workouts []workoutFacts, _ time.Time) bool {
		return countInHourRange(workouts, 22, 24) >= 10
	},
	"variety_lover": func(_ *UserStats, workouts []workoutFacts, _ time.Time) bool {
		return allExercisesDone(workouts)
	},
}

func countSince(workouts []workoutFacts, at time.Time, days int) int {
	cutoff := at.AddDate(0, 0, -days)
	count := 0
	for _, w := range workouts {
		if !w.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count
}

func countWithScoreAtLeast(workouts []workoutFacts, threshold float64) int {
	count := 0
	for _, w := range workouts {
		if w.Score >= threshold {
			count++
		}
	}
	return count
}

func countInHourRange(workouts []workoutFacts, startHour, endHour int) int {
	count := 0
	for _, w := range workouts {
		hour := w.CreatedAt.Hour()
		if hour >= startHour && hour < endHour {
			count++
		}
	}
	return count
}

func allExercisesDone(workouts []workoutFacts) bool {
	done := make(map[string]bool)
	for _, w := range workouts {
		done[w.Exercise] = true
	}
	for _, t := range exercise.All() {
		if !done[string(t)] {
			return false
		}
	}
	return true
}

// AchievementRepository provides access to achievements and unlock state.
type AchievementRepository struct {
	db *sql.DB
}

// Achievements returns the achievement repository for this store.
func (s *Store) Achievements() *AchievementRepository {
	return &AchievementRepository{db: s.db}
}

// List retrieves all achievements with their unlock state, catalog order.
func (r *AchievementRepository) List() ([]*AchievementStatus, error) {
	rows, err := r.db.Query(
		`SELECT a.id, a.name, a.description, a.xp_reward, a.icon, ua.unlocked_at
		 FROM achievements a
		 LEFT JOIN user_achievements ua ON ua.achievement_id = a.id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*AchievementStatus)
	for rows.Next() {
		status := &AchievementStatus{}
		var unlockedAt sql.NullTime
		err := rows.Scan(&status.ID, &status.Name, &status.Description,
			&status.XPReward, &status.Icon, &unlockedAt)
		if err != nil {
			return nil, err
		}
		if unlockedAt.Valid {
			status.Unlocked = true
			status.UnlockedAt = &unlockedAt.Time
		}
		byID[status.ID] = status
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var statuses []*AchievementStatus
	for _, a := range AchievementCatalog() {
		if status, ok := byID[a.ID]; ok {
			statuses = append(statuses, status)
		}
	}
	return statuses, nil
}

// CheckUnlocks evaluates every locked achievement against the current
// profile and unlocks the ones whose conditions now hold.
//
// Unlocking banks the achievement's XP reward immediately, so a single
// pass can cascade: a level reached mid-pass counts for later rules.
// The whole pass runs in one transaction.
func (r *AchievementRepository) CheckUnlocks(at time.Time) ([]Achievement, error) {
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

	workouts, err := loadWorkoutFacts(tx)
	if err != nil {
		return nil, err
	}

	unlocked, err := loadUnlockedIDs(tx)
	if err != nil {
		return nil, err
	}

	var newlyUnlocked []Achievement
	for _, a := range AchievementCatalog() {
		if unlocked[a.ID] {
			continue
		}
		rule, ok := achievementRules[a.ID]
		if !ok || !rule(stats, workouts, at) {
			continue
		}

		_, err := tx.Exec(
			`INSERT INTO user_achievements (achievement_id, unlocked_at) VALUES (?, ?)`,
			a.ID, at,
		)
		if err != nil {
			return nil, err
		}

		stats.XP += a.XPReward
		stats.Level = LevelForXP(stats.XP)
		newlyUnlocked = append(newlyUnlocked, a)
	}

	if len(newlyUnlocked) > 0 {
		_, err = tx.Exec(
			`UPDATE user_stats SET xp = ?, level = ? WHERE id = 1`,
			stats.XP, stats.Level,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return newlyUnlocked, nil
}

func loadWorkoutFacts(tx *sql.Tx) ([]workoutFacts, error) {
	rows, err := tx.Query(`SELECT exercise, score, created_at FROM workouts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []workoutFacts
	for rows.Next() {
		var f workoutFacts
		if err := rows.Scan(&f.Exercise, &f.Score, &f.CreatedAt); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

func loadUnlockedIDs(tx *sql.Tx) (map[string]bool, error) {
	rows, err := tx.Query(`SELECT achievement_id FROM user_achievements`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		unlocked[id] = true
	}
	return unlocked, rows.Err()
}
