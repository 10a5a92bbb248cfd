// Package config loads the arcade's YAML configuration. Every field has a
// default; a file only needs to name what it changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/arcade/internal/capture"
	"github.com/ayusman/arcade/internal/detector"
	"github.com/ayusman/arcade/internal/games/drawing"
	"github.com/ayusman/arcade/internal/games/flappy"
	"github.com/ayusman/arcade/internal/games/rps"
	"github.com/ayusman/arcade/internal/games/slicer"
	"github.com/ayusman/arcade/internal/games/snake"
	"github.com/ayusman/arcade/internal/gesture"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid config")

// Difficulty selects the snake's pace.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties returns the difficulty levels from slowest to fastest.
func Difficulties() []Difficulty {
	return []Difficulty{Easy, Medium, Hard}
}

// ParseDifficulty converts a name into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	for _, d := range Difficulties() {
		if string(d) == strings.ToLower(strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Config is the complete arcade configuration.
type Config struct {
	Addr      string `yaml:"addr"`
	DataDir   string `yaml:"data_dir"`
	PluginDir string `yaml:"plugin_dir"`
	StaticDir string `yaml:"static_dir"`
	ReplayDir string `yaml:"replay_dir"`
	// Seed fixes the game RNG. Zero picks a fresh seed per session.
	Seed uint64 `yaml:"seed"`

	Camera   capture.Config  `yaml:"camera"`
	Detector detector.Config `yaml:"detector"`
	Board    BoardConfig     `yaml:"board"`

	// SnakeSpeeds maps a difficulty to the snake's frames per step.
	SnakeSpeeds map[Difficulty]int `yaml:"snake_speeds"`

	Classifier gesture.Config `yaml:"classifier"`
	Snake      snake.Config   `yaml:"snake"`
	Slicer     slicer.Config  `yaml:"slicer"`
	Flappy     flappy.Config  `yaml:"flappy"`
	RPS        rps.Config     `yaml:"rps"`
	Drawing    drawing.Config `yaml:"drawing"`
}

// BoardConfig places the snake board inside the camera frame.
type BoardConfig struct {
	OffsetX int `yaml:"offset_x"`
	OffsetY int `yaml:"offset_y"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:      ":8080",
		PluginDir: "plugins",
		Camera:    capture.DefaultConfig(),
		Detector:  detector.DefaultConfig(),
		Board:     BoardConfig{OffsetX: 50, OffsetY: 50},
		SnakeSpeeds: map[Difficulty]int{
			Easy:   15,
			Medium: 8,
			Hard:   3,
		},
		Classifier: gesture.DefaultConfig(),
		Snake:      snake.DefaultConfig(),
		Slicer:     slicer.DefaultConfig(),
		Flappy:     flappy.DefaultConfig(),
		RPS:        rps.DefaultConfig(),
		Drawing:    drawing.DefaultConfig(),
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects sizes, rates and intervals that would stall or divide by zero.
func (c Config) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"camera.width", c.Camera.Width},
		{"camera.height", c.Camera.Height},
		{"camera.fps", c.Camera.FPS},
		{"snake.grid_width", c.Snake.GridWidth},
		{"snake.grid_height", c.Snake.GridHeight},
		{"snake.cell_size", c.Snake.CellSize},
		{"slicer.width", c.Slicer.Width},
		{"slicer.height", c.Slicer.Height},
		{"slicer.lives", c.Slicer.Lives},
		{"slicer.spawn_interval", c.Slicer.SpawnInterval},
		{"slicer.min_spawn_interval", c.Slicer.MinSpawnInterval},
		{"slicer.trail_length", c.Slicer.TrailLength},
		{"flappy.width", c.Flappy.Width},
		{"flappy.height", c.Flappy.Height},
		{"flappy.pipe_interval", c.Flappy.PipeInterval},
		{"rps.countdown", c.RPS.Countdown},
		{"rps.ticks_per_count", c.RPS.TicksPerCount},
		{"rps.result_frames", c.RPS.ResultFrames},
		{"drawing.max_history", c.Drawing.MaxHistory},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, p.name, p.value)
		}
	}

	for _, d := range Difficulties() {
		if c.SnakeSpeeds[d] <= 0 {
			return fmt.Errorf("%w: snake_speeds.%s must be positive", ErrInvalid, d)
		}
	}

	if c.Slicer.Width <= 2*c.Slicer.SpawnMarginX {
		return fmt.Errorf("%w: slicer.spawn_margin_x leaves no room to spawn", ErrInvalid)
	}
	if c.Flappy.Height <= 2*c.Flappy.GapMargin {
		return fmt.Errorf("%w: flappy.gap_margin leaves no room for gaps", ErrInvalid)
	}
	if c.Flappy.Smoothing <= 0 || c.Flappy.Smoothing > 1 {
		return fmt.Errorf("%w: flappy.smoothing must be in (0, 1]", ErrInvalid)
	}
	if c.Detector.IdleTimeout < 0 {
		return fmt.Errorf("%w: detector.idle_timeout must not be negative", ErrInvalid)
	}
	if c.Classifier.CooldownFrames < 0 {
		return fmt.Errorf("%w: classifier.cooldown_frames must not be negative", ErrInvalid)
	}
	return nil
}

// SnakeConfig returns the snake tuning paced for the given difficulty.
// Unknown difficulties play at medium speed.
func (c Config) SnakeConfig(d Difficulty) snake.Config {
	sc := c.Snake
	if speed, ok := c.SnakeSpeeds[d]; ok {
		sc.SpeedDelay = speed
	} else {
		sc.SpeedDelay = c.SnakeSpeeds[Medium]
	}
	return sc
}
