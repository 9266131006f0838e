package main

import (
	"math"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/sim"
)

// autopilot задаёт ввод для безголового режима: игрок ходит по кругу,
// подпрыгивает и время от времени ставит и убирает блоки.
type autopilot struct {
	tickRate uint64
}

func newAutopilot(tickRate int) *autopilot {
	return &autopilot{tickRate: uint64(tickRate)}
}

func (a *autopilot) Poll(frame uint64) sim.Input {
	second := frame / a.tickRate
	phase := frame % a.tickRate

	return sim.Input{
		PointerLocked: true,
		Forward:       second%4 != 3,
		Jump:          phase == 0 && second%3 == 1,
		Place:         phase == a.tickRate/2 && second%2 == 0,
		Remove:        phase == a.tickRate/2 && second%5 == 4,
		Wheel:         wheelEvery(second, phase, 7),
		Yaw:           float64(frame) / float64(a.tickRate) * 1.2,
		Pitch:         -0.35 - 0.15*math.Sin(float64(frame)/float64(a.tickRate)),
	}
}

func wheelEvery(second, phase, period uint64) int {
	if phase == 0 && second > 0 && second%period == 0 {
		return 1
	}
	return 0
}

// logRenderer вместо отрисовки раз в секунду пишет позу игрока в лог
type logRenderer struct {
	every  uint64
	logger *logging.Logger
}

func newLogRenderer(tickRate int) *logRenderer {
	return &logRenderer{every: uint64(tickRate), logger: logging.GetComponentLogger(logging.ComponentRender)}
}

func (r *logRenderer) Render(s *sim.State, res sim.Result) error {
	for _, change := range res.Changes {
		r.logger.Info("Кадр %d: %s %s", res.Frame, change.Kind, change.Block)
	}
	if res.Frame%r.every != 0 {
		return nil
	}

	feet := s.Player.Feet
	r.logger.Debug("Кадр %d: ноги (%.2f, %.2f, %.2f), на земле=%v, выбран %s, подсветка=%v",
		res.Frame, feet.X(), feet.Y(), feet.Z(), s.Player.Grounded, s.Selection.Current(), s.Preview.Visible)
	return nil
}
