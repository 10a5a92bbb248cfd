package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Settings table - user preferences as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// High scores - best score per game and difficulty
		`CREATE TABLE IF NOT EXISTS high_scores (
			game TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (game, difficulty)
		)`,

		// Sessions - one row per finished game
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			seed INTEGER NOT NULL DEFAULT 0,
			replay_path TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_game ON sessions(game)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
