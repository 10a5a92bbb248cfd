// Package rps implements rock-paper-scissors against the computer as a
// frame-counted state machine: waiting for a throw, counting down, showing
// the result.
package rps

import (
	"math/rand/v2"

	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/gesture"
)

// Config paces the round.
type Config struct {
	Countdown int `yaml:"countdown"`
	// TicksPerCount is the number of Update calls per visible countdown step.
	TicksPerCount int `yaml:"ticks_per_count"`
	// ResultFrames is how long a result stays up before the next round.
	ResultFrames int `yaml:"result_frames"`
}

// DefaultConfig counts down from 3 at 30 frames per count and shows the
// result for 90 frames.
func DefaultConfig() Config {
	return Config{
		Countdown:     3,
		TicksPerCount: 30,
		ResultFrames:  90,
	}
}

// Choice is a throw. The zero value means no throw.
type Choice string

const (
	NoChoice Choice = ""
	Rock     Choice = "rock"
	Paper    Choice = "paper"
	Scissors Choice = "scissors"
)

// Choices returns the three throws.
func Choices() []Choice {
	return []Choice{Rock, Paper, Scissors}
}

// beats maps each throw to the throw it defeats.
var beats = map[Choice]Choice{
	Rock:     Scissors,
	Scissors: Paper,
	Paper:    Rock,
}

// ChoiceFor maps a hand gesture onto a throw.
func ChoiceFor(g gesture.Gesture) (Choice, bool) {
	switch g {
	case gesture.Fist:
		return Rock, true
	case gesture.OpenPalm:
		return Paper, true
	case gesture.Peace:
		return Scissors, true
	default:
		return NoChoice, false
	}
}

// Outcome is the result of a round from the player's side.
type Outcome string

const (
	NoOutcome Outcome = ""
	Win       Outcome = "win"
	Lose      Outcome = "lose"
	Tie       Outcome = "tie"
)

// Resolve decides a round.
func Resolve(player, computer Choice) Outcome {
	switch {
	case player == computer:
		return Tie
	case beats[player] == computer:
		return Win
	default:
		return Lose
	}
}

// State is the machine's phase.
type State string

const (
	StateWaiting    State = "waiting"
	StateCountdown  State = "countdown"
	StateShowResult State = "show_result"
)

// Game is one rock-paper-scissors session. It is not safe for concurrent use.
type Game struct {
	config Config
	rng    *rand.Rand

	state         State
	player        Choice
	computer      Choice
	result        Outcome
	countdown     int
	tick          games.Counter
	resultTimer   games.Counter
	playerScore   int
	computerScore int
	rounds        int
}

// New creates a game waiting for the first throw.
func New(config Config, rng *rand.Rand) *Game {
	g := &Game{
		config: config,
		rng:    rng,
	}
	g.Reset()
	return g
}

// Reset zeroes the scores and returns to waiting.
func (g *Game) Reset() {
	g.playerScore = 0
	g.computerScore = 0
	g.rounds = 0
	g.toWaiting()
}

func (g *Game) toWaiting() {
	g.state = StateWaiting
	g.player = NoChoice
	g.computer = NoChoice
	g.result = NoOutcome
	g.countdown = g.config.Countdown
	g.tick = games.NewCounter(g.config.TicksPerCount)
	g.resultTimer = games.NewCounter(g.config.ResultFrames)
}

// Input offers a detected gesture. It starts a round only while waiting and
// only for the three throwing gestures; it reports whether the gesture was taken.
func (g *Game) Input(gst gesture.Gesture) bool {
	if g.state != StateWaiting {
		return false
	}
	c, ok := ChoiceFor(gst)
	if !ok {
		return false
	}

	g.player = c
	g.state = StateCountdown
	g.countdown = g.config.Countdown
	g.tick.Reset()
	return true
}

// Update advances one frame. When a round is decided on this frame it
// returns the outcome and true.
func (g *Game) Update() (Outcome, bool) {
	switch g.state {
	case StateCountdown:
		if !g.tick.Tick() {
			return NoOutcome, false
		}
		g.countdown--
		if g.countdown > 0 {
			return NoOutcome, false
		}

		choices := Choices()
		g.computer = choices[g.rng.IntN(len(choices))]
		g.result = Resolve(g.player, g.computer)
		g.rounds++
		switch g.result {
		case Win:
			g.playerScore++
		case Lose:
			g.computerScore++
		}
		g.state = StateShowResult
		g.resultTimer.Reset()
		return g.result, true

	case StateShowResult:
		if g.resultTimer.Tick() {
			g.toWaiting()
		}
	}

	return NoOutcome, false
}

func (g *Game) State() State           { return g.state }
func (g *Game) PlayerChoice() Choice   { return g.player }
func (g *Game) ComputerChoice() Choice { return g.computer }
func (g *Game) Result() Outcome        { return g.result }
func (g *Game) Countdown() int         { return g.countdown }
func (g *Game) PlayerScore() int       { return g.playerScore }
func (g *Game) ComputerScore() int     { return g.computerScore }
func (g *Game) Rounds() int            { return g.rounds }

// Score is the player's score, used for high scores.
func (g *Game) Score() int { return g.playerScore }

// Snapshot is the read-only view a renderer draws from.
type Snapshot struct {
	State         State   `json:"state"`
	Player        Choice  `json:"player,omitempty"`
	Computer      Choice  `json:"computer,omitempty"`
	Result        Outcome `json:"result,omitempty"`
	Countdown     int     `json:"countdown"`
	PlayerScore   int     `json:"player_score"`
	ComputerScore int     `json:"computer_score"`
	Rounds        int     `json:"rounds"`
}

// Snapshot captures the current round.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		State:         g.state,
		Player:        g.player,
		Computer:      g.computer,
		Result:        g.result,
		Countdown:     g.countdown,
		PlayerScore:   g.playerScore,
		ComputerScore: g.computerScore,
		Rounds:        g.rounds,
	}
}
