// Package sim содержит контекст симуляции, шаг кадра и цикл кадров.
package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/targeting"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// MaxPitch ограничивает наклон камеры, чтобы она не переворачивалась
const MaxPitch = math.Pi/2 - 1e-3

// Config объединяет настройки подсистем кадра
type Config struct {
	Physics     physics.Params
	Targeting   targeting.Options
	Interaction interaction.Options
	InitialType block.BlockType
	FOV         float64 // Вертикальный угол обзора камеры, градусы
	Aspect      float64 // Отношение ширины экрана к высоте
}

// DefaultConfig возвращает настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		Physics:     physics.DefaultParams(),
		Targeting:   targeting.DefaultOptions(),
		Interaction: interaction.DefaultOptions(),
		InitialType: block.GrassBlock,
		FOV:         75,
		Aspect:      16.0 / 9,
	}
}

// State хранит явный контекст симуляции. Им владеет один цикл кадров.
type State struct {
	Config     Config
	Store      *world.Store
	Player     *physics.Player
	Selection  *block.Selection
	Preview    targeting.Preview
	Yaw        float64
	Pitch      float64
	Frame      uint64
	Elapsed    float64
	controller *interaction.Controller
}

// NewState создаёт контекст с игроком в точке появления
func NewState(store *world.Store, cfg Config) *State {
	return &State{
		Config:     cfg,
		Store:      store,
		Player:     physics.NewPlayer(cfg.Physics.Spawn),
		Selection:  block.NewSelection(cfg.InitialType),
		controller: interaction.NewController(cfg.Interaction),
	}
}

// Camera возвращает камеру, закреплённую на уровне глаз игрока
func (s *State) Camera() targeting.Camera {
	return targeting.Camera{
		Position: s.Player.Eye(s.Config.Physics),
		Yaw:      s.Yaw,
		Pitch:    s.Pitch,
		FOV:      s.Config.FOV,
		Aspect:   s.Config.Aspect,
	}
}

// Snapshot это копия состояния для чтения из других горутин
type Snapshot struct {
	Frame    uint64       `json:"frame"`
	Elapsed  float64      `json:"elapsed"`
	Feet     mgl64.Vec3   `json:"feet"`
	Velocity mgl64.Vec3   `json:"velocity"`
	Grounded bool         `json:"grounded"`
	Yaw      float64      `json:"yaw"`
	Pitch    float64      `json:"pitch"`
	Selected string       `json:"selected"`
	Preview  PreviewView  `json:"preview"`
	Target   *world.Block `json:"target,omitempty"`
	Blocks   int          `json:"blocks"`

	Palette []block.PaletteEntry `json:"-"`
}

// PreviewView описывает подсветку в снимке
type PreviewView struct {
	Visible  bool       `json:"visible"`
	Cell     vec.Vec3   `json:"cell"`
	Position mgl64.Vec3 `json:"position"`
}

// Snapshot снимает копию текущего состояния
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Frame:    s.Frame,
		Elapsed:  s.Elapsed,
		Feet:     s.Player.Feet,
		Velocity: s.Player.Velocity,
		Grounded: s.Player.Grounded,
		Yaw:      s.Yaw,
		Pitch:    s.Pitch,
		Selected: s.Selection.Current().String(),
		Preview: PreviewView{
			Visible:  s.Preview.Visible,
			Cell:     s.Preview.Cell,
			Position: s.Preview.Position(),
		},
		Blocks:  s.Store.Len(),
		Palette: s.Selection.Palette(),
	}
	if s.Preview.Target != nil {
		target := s.Preview.Target.Block
		snap.Target = &target
	}
	return snap
}
