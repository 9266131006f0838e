package sim

import (
	"math"

	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/targeting"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// Result описывает итог одного кадра
type Result struct {
	Frame      uint64
	DT         float64 // Шаг после ограничения
	Kinematics physics.Report
	Removal    *interaction.Outcome // nil, если удаления не было
	Placement  *interaction.Outcome // nil, если установки не было
	Changes    []world.Change
}

// Step продвигает симуляцию на один кадр. Результат зависит только от state,
// in и dt, поэтому одинаковая последовательность ввода воспроизводит тот же мир.
//
// Порядок: выбор типа, поворот камеры, кинематика, подсветка, действия мыши.
// Пока указатель не захвачен, игрок не двигается и подсветка скрыта. Левый
// клик по курсору (Pointer) удаляет блок под ним, правый игнорируется:
// установка требует видимой подсветки.
func Step(s *State, in Input, dt float64) Result {
	params := s.Config.Physics
	dt = math.Max(0, params.ClampDelta(dt))

	s.Frame++
	s.Elapsed += dt
	result := Result{Frame: s.Frame, DT: dt}

	if in.Select != nil {
		s.Selection.Select(*in.Select)
	}
	if in.Wheel != 0 {
		s.Selection.Cycle(in.Wheel)
	}

	if !in.PointerLocked {
		s.Preview = targeting.Preview{}
		if in.Remove && in.Pointer != nil {
			picked := targeting.Target(s.Store, s.Camera().RayFromNDC(in.Pointer[0], in.Pointer[1]), s.Config.Targeting)
			outcome := s.controller.Remove(s.Store, picked)
			result.Removal = &outcome
			result.record(outcome)
		}
		return result
	}

	s.Yaw = in.Yaw
	s.Pitch = math.Max(-MaxPitch, math.Min(MaxPitch, in.Pitch))

	mv := in.Movement()
	mv.Yaw = s.Yaw
	result.Kinematics = physics.StepPlayer(s.Player, mv, dt, params, s.Store)

	s.Preview = targeting.Target(s.Store, s.Camera().Ray(), s.Config.Targeting)

	if in.Remove {
		outcome := s.controller.Remove(s.Store, s.Preview)
		result.Removal = &outcome
		result.record(outcome)
	}
	if in.Place {
		// После удаления подсветка могла устареть
		if in.Remove {
			s.Preview = targeting.Target(s.Store, s.Camera().Ray(), s.Config.Targeting)
		}
		outcome := s.controller.Place(s.Store, s.Preview, s.Selection.Current(), s.Player, params)
		result.Placement = &outcome
		result.record(outcome)
	}
	if len(result.Changes) > 0 {
		s.Preview = targeting.Target(s.Store, s.Camera().Ray(), s.Config.Targeting)
	}

	return result
}

func (r *Result) record(outcome interaction.Outcome) {
	if !outcome.OK() {
		return
	}
	change := outcome.Change
	change.Frame = r.Frame
	r.Changes = append(r.Changes, change)
}
