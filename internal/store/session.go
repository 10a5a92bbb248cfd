package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session is one finished game.
type Session struct {
	ID         string    `json:"id"`
	Game       string    `json:"game"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	Frames     int64     `json:"frames"`
	Seed       uint64    `json:"seed"`
	ReplayPath string    `json:"replay_path,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
}

// SessionRepository records finished games.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session. An empty ID is filled with a new UUID.
func (r *SessionRepository) Create(s *Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.EndedAt.IsZero() {
		s.EndedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, game, difficulty, score, frames, seed, replay_path, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Game, s.Difficulty, s.Score, s.Frames, int64(s.Seed), s.ReplayPath, s.StartedAt, s.EndedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT id, game, difficulty, score, frames, seed, replay_path, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List returns the most recent sessions, newest first. A game filter of ""
// matches every game.
func (r *SessionRepository) List(game string, limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, game, difficulty, score, frames, seed, replay_path, started_at, ended_at
		 FROM sessions WHERE ? = '' OR game = ?
		 ORDER BY ended_at DESC LIMIT ?`,
		game, game, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	s := &Session{}
	var seed int64
	err := row.Scan(&s.ID, &s.Game, &s.Difficulty, &s.Score, &s.Frames, &seed, &s.ReplayPath, &s.StartedAt, &s.EndedAt)
	if err != nil {
		return nil, err
	}
	s.Seed = uint64(seed)
	return s, nil
}
