package store

import (
	"database/sql"
	"errors"
	"strconv"
)

// Setting keys.
const (
	KeyDifficulty   = "difficulty"
	KeySoundEnabled = "sound_enabled"
)

// Defaults used when a setting has never been saved.
const (
	DefaultDifficulty   = "medium"
	DefaultSoundEnabled = true
)

// Settings are the persisted user preferences.
type Settings struct {
	Difficulty   string `json:"difficulty"`
	SoundEnabled bool   `json:"sound_enabled"`
}

// SettingsRepository reads and writes user preferences.
type SettingsRepository struct {
	db *sql.DB
}

// Settings returns the settings repository for this store.
func (s *Store) Settings() *SettingsRepository {
	return &SettingsRepository{db: s.db}
}

// Get returns the raw value for key, or ErrNotFound.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// Difficulty returns the saved difficulty, defaulting to medium.
func (r *SettingsRepository) Difficulty() (string, error) {
	v, err := r.Get(KeyDifficulty)
	if errors.Is(err, ErrNotFound) {
		return DefaultDifficulty, nil
	}
	return v, err
}

// SetDifficulty saves the difficulty.
func (r *SettingsRepository) SetDifficulty(d string) error {
	return r.Set(KeyDifficulty, d)
}

// SoundEnabled returns the saved sound flag, defaulting to on.
func (r *SettingsRepository) SoundEnabled() (bool, error) {
	v, err := r.Get(KeySoundEnabled)
	if errors.Is(err, ErrNotFound) {
		return DefaultSoundEnabled, nil
	}
	if err != nil {
		return DefaultSoundEnabled, err
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return DefaultSoundEnabled, nil
	}
	return enabled, nil
}

// SetSoundEnabled saves the sound flag.
func (r *SettingsRepository) SetSoundEnabled(enabled bool) error {
	return r.Set(KeySoundEnabled, strconv.FormatBool(enabled))
}

// Load returns all settings with defaults filled in.
func (r *SettingsRepository) Load() (Settings, error) {
	d, err := r.Difficulty()
	if err != nil {
		return Settings{}, err
	}
	sound, err := r.SoundEnabled()
	if err != nil {
		return Settings{}, err
	}
	return Settings{Difficulty: d, SoundEnabled: sound}, nil
}

// Save writes all settings.
func (r *SettingsRepository) Save(s Settings) error {
	if err := r.SetDifficulty(s.Difficulty); err != nil {
		return err
	}
	return r.SetSoundEnabled(s.SoundEnabled)
}
