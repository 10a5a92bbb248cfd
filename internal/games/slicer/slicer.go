// Package slicer implements the falling-object game. Fruit is tossed up from
// the bottom of the field and the player slices it by sweeping a fingertip
// through it; every fruit that falls back out unsliced costs a life.
package slicer

import (
	"math/rand/v2"
	"slices"

	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/geom"
)

// Config holds the field size and the physics of a toss.
type Config struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Lives  int `yaml:"lives"`

	// SpawnInterval is the initial number of frames between spawns. It
	// shrinks by one per spawn down to MinSpawnInterval.
	SpawnInterval    int `yaml:"spawn_interval"`
	MinSpawnInterval int `yaml:"min_spawn_interval"`

	Gravity        float64 `yaml:"gravity"`
	Radius         float64 `yaml:"radius"`
	SliceTolerance float64 `yaml:"slice_tolerance"`
	Points         int     `yaml:"points"`
	TrailLength    int     `yaml:"trail_length"`

	// OffscreenMargin is how far below the field a fruit falls before it is dropped.
	OffscreenMargin float64 `yaml:"offscreen_margin"`
	SpawnMarginX    int     `yaml:"spawn_margin_x"`
	SpawnOffsetY    float64 `yaml:"spawn_offset_y"`
	VYMin           float64 `yaml:"vy_min"`
	VYMax           float64 `yaml:"vy_max"`
	DriftMax        float64 `yaml:"drift_max"`
}

// DefaultConfig returns the 1280x720 tuning.
func DefaultConfig() Config {
	return Config{
		Width:            1280,
		Height:           720,
		Lives:            3,
		SpawnInterval:    60,
		MinSpawnInterval: 30,
		Gravity:          0.5,
		Radius:           30,
		SliceTolerance:   20,
		Points:           10,
		TrailLength:      10,
		OffscreenMargin:  50,
		SpawnMarginX:     100,
		SpawnOffsetY:     50,
		VYMin:            -15,
		VYMax:            -10,
		DriftMax:         3,
	}
}

// FruitType selects the fruit's look.
type FruitType int

const (
	Apple FruitType = iota
	Orange
	Banana
	Kiwi
	Grape
)

var fruitNames = [...]string{"apple", "orange", "banana", "kiwi", "grape"}

func (t FruitType) String() string {
	if t < 0 || int(t) >= len(fruitNames) {
		return "unknown"
	}
	return fruitNames[t]
}

// MarshalText encodes the type by name.
func (t FruitType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Fruit is one tossed object.
type Fruit struct {
	ID     int        `json:"id"`
	Pos    geom.Point `json:"pos"`
	Vel    geom.Point `json:"vel"`
	Type   FruitType  `json:"type"`
	Sliced bool       `json:"sliced"`
}

// step integrates one frame: velocity first, then position.
func (f *Fruit) step(gravity float64) {
	f.Vel.Y += gravity
	f.Pos.Y += f.Vel.Y
	f.Pos.X += f.Vel.X
}

// Game is one slicer session. It is not safe for concurrent use.
type Game struct {
	config Config
	rng    *rand.Rand

	fruits   []Fruit
	trail    []geom.Point
	prev     *geom.Point
	score    int
	lives    int
	gameOver bool
	spawn    games.Counter
	nextID   int
}

// New creates a game with full lives and no fruit.
func New(config Config, rng *rand.Rand) *Game {
	g := &Game{
		config: config,
		rng:    rng,
	}
	g.Reset()
	return g
}

// Reset clears the field and restores lives and the spawn pace.
func (g *Game) Reset() {
	g.fruits = nil
	g.trail = nil
	g.prev = nil
	g.score = 0
	g.lives = g.config.Lives
	g.gameOver = false
	g.spawn = games.NewCounter(g.config.SpawnInterval)
	g.nextID = 0
}

// Update advances one frame and returns the points scored in it.
func (g *Game) Update(pointer *geom.Point) int {
	if g.gameOver {
		return 0
	}

	if pointer != nil {
		g.trail = append(g.trail, *pointer)
		if len(g.trail) > g.config.TrailLength {
			g.trail = slices.Delete(g.trail, 0, len(g.trail)-g.config.TrailLength)
		}
	}

	if g.spawn.Tick() {
		g.spawnFruit()
		g.spawn.Threshold = max(g.config.MinSpawnInterval, g.spawn.Threshold-1)
	}

	points := 0
	limit := float64(g.config.Height) + g.config.OffscreenMargin
	gone := make([]bool, len(g.fruits))

	for i := range g.fruits {
		f := &g.fruits[i]
		f.step(g.config.Gravity)

		if pointer != nil && g.prev != nil && !f.Sliced {
			if geom.DistanceToSegment(f.Pos, *g.prev, *pointer) < g.config.Radius+g.config.SliceTolerance {
				f.Sliced = true
				g.score += g.config.Points
				points += g.config.Points
			}
		}

		if f.Pos.Y > limit {
			if !f.Sliced {
				g.lives--
				if g.lives <= 0 {
					g.gameOver = true
				}
			}
			gone[i] = true
		}
	}

	kept := g.fruits[:0]
	for i, f := range g.fruits {
		if !gone[i] {
			kept = append(kept, f)
		}
	}
	g.fruits = kept

	if pointer != nil {
		p := *pointer
		g.prev = &p
	} else {
		g.prev = nil
	}

	return points
}

func (g *Game) spawnFruit() {
	span := g.config.Width - 2*g.config.SpawnMarginX
	x := g.config.SpawnMarginX + g.rng.IntN(span+1)

	f := Fruit{
		ID:   g.nextID,
		Pos:  geom.Pt(float64(x), float64(g.config.Height)-g.config.SpawnOffsetY),
		Type: FruitType(g.rng.IntN(len(fruitNames))),
		Vel: geom.Pt(
			g.uniform(-g.config.DriftMax, g.config.DriftMax),
			g.uniform(g.config.VYMin, g.config.VYMax),
		),
	}
	g.nextID++
	g.fruits = append(g.fruits, f)
}

func (g *Game) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// Fruits returns a copy of the fruit on the field, sliced ones included.
func (g *Game) Fruits() []Fruit { return slices.Clone(g.fruits) }

// Trail returns the recent pointer positions, oldest first.
func (g *Game) Trail() []geom.Point { return slices.Clone(g.trail) }

func (g *Game) Score() int     { return g.score }
func (g *Game) Lives() int     { return g.lives }
func (g *Game) GameOver() bool { return g.gameOver }

// SpawnInterval returns the current number of frames between spawns.
func (g *Game) SpawnInterval() int { return g.spawn.Threshold }

// Snapshot is the read-only view a renderer draws from.
type Snapshot struct {
	Fruits   []Fruit      `json:"fruits"`
	Trail    []geom.Point `json:"trail"`
	Radius   float64      `json:"radius"`
	Score    int          `json:"score"`
	Lives    int          `json:"lives"`
	GameOver bool         `json:"game_over"`
}

// Snapshot captures the current field.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Fruits:   g.Fruits(),
		Trail:    g.Trail(),
		Radius:   g.config.Radius,
		Score:    g.score,
		Lives:    g.lives,
		GameOver: g.gameOver,
	}
}
