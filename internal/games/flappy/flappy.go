// Package flappy implements the smoothed-tracking game: a bird follows the
// height of the player's hand and must thread the gaps of scrolling pipes.
package flappy

import (
	"math/rand/v2"
	"slices"

	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/geom"
)

// Config holds the field size, bird and pipe tuning.
type Config struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	BirdX      float64 `yaml:"bird_x"`
	BirdRadius float64 `yaml:"bird_radius"`

	PipeInterval int `yaml:"pipe_interval"`
	PipeWidth    int `yaml:"pipe_width"`
	GapSize      int `yaml:"gap_size"`
	// GapMargin keeps gap centers this far from the top and bottom edges.
	GapMargin int `yaml:"gap_margin"`
	PipeSpeed int `yaml:"pipe_speed"`

	// Smoothing is the fraction of the remaining distance to the target
	// covered each frame.
	Smoothing float64 `yaml:"smoothing"`
}

// DefaultConfig returns the 1280x720 tuning.
func DefaultConfig() Config {
	return Config{
		Width:        1280,
		Height:       720,
		BirdX:        200,
		BirdRadius:   25,
		PipeInterval: 100,
		PipeWidth:    80,
		GapSize:      200,
		GapMargin:    150,
		PipeSpeed:    3,
		Smoothing:    0.3,
	}
}

// Pipe is one obstacle: a column with a gap centered at GapY.
type Pipe struct {
	X      int  `json:"x"`
	GapY   int  `json:"gap_y"`
	Passed bool `json:"passed"`
}

// Game is one flappy session. It is not safe for concurrent use.
type Game struct {
	config Config
	rng    *rand.Rand

	birdY    float64
	targetY  float64
	pipes    []Pipe
	score    int
	gameOver bool
	spawn    games.Counter
}

// New creates a game with the bird centered vertically.
func New(config Config, rng *rand.Rand) *Game {
	g := &Game{
		config: config,
		rng:    rng,
	}
	g.Reset()
	return g
}

// Reset recenters the bird and clears the pipes.
func (g *Game) Reset() {
	mid := float64(g.config.Height / 2)
	g.birdY = mid
	g.targetY = mid
	g.pipes = nil
	g.score = 0
	g.gameOver = false
	g.spawn = games.NewCounter(g.config.PipeInterval)
}

// Update advances one frame and returns the points scored in it. A nil
// trackedY keeps the previous target.
func (g *Game) Update(trackedY *float64) int {
	if g.gameOver {
		return 0
	}

	if trackedY != nil {
		g.targetY = *trackedY
	}
	g.birdY = geom.Lerp(g.birdY, g.targetY, g.config.Smoothing)

	r := g.config.BirdRadius
	h := float64(g.config.Height)
	switch {
	case g.birdY-r < 0:
		g.birdY = r
		g.gameOver = true
	case g.birdY+r > h:
		g.birdY = h - r
		g.gameOver = true
	}

	if g.spawn.Tick() {
		g.spawnPipe()
	}

	points := 0
	for i := range g.pipes {
		p := &g.pipes[i]
		p.X -= g.config.PipeSpeed

		if g.collides(*p) {
			g.gameOver = true
		}

		if !p.Passed && float64(p.X+g.config.PipeWidth) < g.config.BirdX {
			p.Passed = true
			g.score++
			points++
		}
	}

	g.pipes = slices.DeleteFunc(g.pipes, func(p Pipe) bool {
		return p.X+g.config.PipeWidth < 0
	})

	return points
}

func (g *Game) spawnPipe() {
	lo := g.config.GapMargin
	hi := g.config.Height - g.config.GapMargin
	g.pipes = append(g.pipes, Pipe{
		X:    g.config.Width,
		GapY: lo + g.rng.IntN(hi-lo+1),
	})
}

// collides reports whether the bird overlaps the pipe's columns outside its gap.
func (g *Game) collides(p Pipe) bool {
	bx, by, r := g.config.BirdX, g.birdY, g.config.BirdRadius
	left := float64(p.X)
	right := float64(p.X + g.config.PipeWidth)
	if bx+r <= left || bx-r >= right {
		return false
	}

	half := g.config.GapSize / 2
	top := float64(p.GapY - half)
	bottom := float64(p.GapY + half)
	return by-r < top || by+r > bottom
}

// BirdY returns the bird's current height.
func (g *Game) BirdY() float64 { return g.birdY }

// TargetY returns the height the bird is easing toward.
func (g *Game) TargetY() float64 { return g.targetY }

// Pipes returns a copy of the pipes on screen.
func (g *Game) Pipes() []Pipe { return slices.Clone(g.pipes) }

func (g *Game) Score() int     { return g.score }
func (g *Game) GameOver() bool { return g.gameOver }

// Snapshot is the read-only view a renderer draws from.
type Snapshot struct {
	BirdX      float64 `json:"bird_x"`
	BirdY      float64 `json:"bird_y"`
	BirdRadius float64 `json:"bird_radius"`
	Pipes      []Pipe  `json:"pipes"`
	PipeWidth  int     `json:"pipe_width"`
	GapSize    int     `json:"gap_size"`
	Score      int     `json:"score"`
	GameOver   bool    `json:"game_over"`
}

// Snapshot captures the current field.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		BirdX:      g.config.BirdX,
		BirdY:      g.birdY,
		BirdRadius: g.config.BirdRadius,
		Pipes:      g.Pipes(),
		PipeWidth:  g.config.PipeWidth,
		GapSize:    g.config.GapSize,
		Score:      g.score,
		GameOver:   g.gameOver,
	}
}
