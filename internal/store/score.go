package store

import (
	"database/sql"
	"errors"
	"time"
)

// HighScore is the best score recorded for a game at a difficulty.
type HighScore struct {
	Game       string    `json:"game"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ScoreRepository tracks high scores.
type ScoreRepository struct {
	db *sql.DB
}

// Scores returns the high score repository for this store.
func (s *Store) Scores() *ScoreRepository {
	return &ScoreRepository{db: s.db}
}

// Get returns the high score for a game and difficulty, or ErrNotFound.
func (r *ScoreRepository) Get(game, difficulty string) (*HighScore, error) {
	h := &HighScore{}
	err := r.db.QueryRow(
		`SELECT game, difficulty, score, updated_at FROM high_scores
		 WHERE game = ? AND difficulty = ?`,
		game, difficulty,
	).Scan(&h.Game, &h.Difficulty, &h.Score, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// Submit records score if it beats the current high score and reports
// whether it did. A lower or equal score leaves the table untouched, and
// nothing is recorded until a game scores above zero.
func (r *ScoreRepository) Submit(game, difficulty string, score int) (bool, error) {
	if score <= 0 {
		return false, nil
	}

	result, err := r.db.Exec(
		`INSERT INTO high_scores (game, difficulty, score, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(game, difficulty) DO UPDATE SET score = excluded.score, updated_at = excluded.updated_at
		 WHERE excluded.score > high_scores.score`,
		game, difficulty, score, time.Now(),
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}

// List returns every high score, best first.
func (r *ScoreRepository) List() ([]*HighScore, error) {
	rows, err := r.db.Query(
		`SELECT game, difficulty, score, updated_at FROM high_scores
		 ORDER BY score DESC, game, difficulty`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []*HighScore
	for rows.Next() {
		h := &HighScore{}
		if err := rows.Scan(&h.Game, &h.Difficulty, &h.Score, &h.UpdatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, h)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scores, nil
}
