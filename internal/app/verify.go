package app

import (
	"fmt"

	"github.com/ayusman/arcade/internal/config"
	"github.com/ayusman/arcade/internal/detector"
	"github.com/ayusman/arcade/internal/games"
	"github.com/ayusman/arcade/internal/replay"
)

// machine replays a log against an Arcade.
type machine struct {
	arcade *Arcade
}

func (m machine) Step(hand *detector.HandLandmarks) (int, bool) {
	res := m.arcade.Step(hand)
	return res.Score, res.GameOver
}

func (m machine) Apply(ev replay.Event) error {
	switch ev.Action {
	case replay.ActionSwitch:
		return m.arcade.Switch(games.Kind(ev.Value))
	case replay.ActionPause:
		m.arcade.SetPaused(true)
	case replay.ActionResume:
		m.arcade.SetPaused(false)
	case replay.ActionReset:
		m.arcade.Reset()
	case replay.ActionDifficulty:
		d, err := config.ParseDifficulty(ev.Value)
		if err != nil {
			return err
		}
		m.arcade.SetDifficulty(d)
	case replay.ActionDrawing:
		return m.arcade.DrawingControl(ev.Value)
	default:
		return fmt.Errorf("unknown replay action %q", ev.Action)
	}
	return nil
}

// VerifyReplay rebuilds the arcade a log was recorded with and re-feeds it.
// It returns a *replay.Divergence when a frame does not reproduce.
func VerifyReplay(cfg config.Config, log *replay.Log) error {
	h := log.Header
	arcade, err := NewArcade(cfg, h.Difficulty, h.Seed, h.Game)
	if err != nil {
		return err
	}
	return replay.Verify(log, machine{arcade: arcade})
}
