package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Workouts table - one row per completed exercise set
		`CREATE TABLE IF NOT EXISTS workouts (
			id TEXT PRIMARY KEY,
			exercise TEXT NOT NULL,
			repetitions INTEGER NOT NULL DEFAULT 0,
			duration_sec REAL NOT NULL,
			score REAL NOT NULL,
			regularity REAL NOT NULL,
			speed REAL NOT NULL,
			feedback TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			detected_by_ai INTEGER NOT NULL DEFAULT 0,
			ai_confidence REAL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// User stats table - a single row of lifetime aggregates
		`CREATE TABLE IF NOT EXISTS user_stats (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_workouts INTEGER NOT NULL DEFAULT 0,
			total_time_sec REAL NOT NULL DEFAULT 0,
			xp INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 1,
			current_streak INTEGER NOT NULL DEFAULT 0,
			best_streak INTEGER NOT NULL DEFAULT 0,
			last_workout_day TEXT NOT NULL DEFAULT ''
		)`,
		`INSERT OR IGNORE INTO user_stats (id) VALUES (1)`,

		// Achievements catalog - seeded below, unlocks live in user_achievements
		`CREATE TABLE IF NOT EXISTS achievements (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			xp_reward INTEGER NOT NULL DEFAULT 0,
			icon TEXT NOT NULL DEFAULT ''
		)`,

		// User achievements table - records when each achievement unlocked
		`CREATE TABLE IF NOT EXISTS user_achievements (
			achievement_id TEXT PRIMARY KEY REFERENCES achievements(id) ON DELETE CASCADE,
			unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_workouts_exercise ON workouts(exercise)`,
		`CREATE INDEX IF NOT EXISTS idx_workouts_created_at ON workouts(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return s.seedAchievements()
}

// seedAchievements inserts the achievement catalog. Existing rows are left
// untouched so unlock state survives restarts.
func (s *Store) seedAchievements() error {
	for _, a := range AchievementCatalog() {
		_, err := s.db.Exec(
			`INSERT OR IGNORE INTO achievements (id, name, description, xp_reward, icon)
			 VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.Name, a.Description, a.XPReward, a.Icon,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
