package sim

import (
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Input содержит снимок ввода, опрашиваемый один раз за кадр.
// Remove и Place означают нажатие кнопки мыши в этом кадре.
// Pointer задаёт курсор в нормализованных координатах экрана и учитывается
// только пока указатель не захвачен.
type Input struct {
	Forward       bool             `json:"forward,omitempty"`
	Backward      bool             `json:"backward,omitempty"`
	Left          bool             `json:"left,omitempty"`
	Right         bool             `json:"right,omitempty"`
	Jump          bool             `json:"jump,omitempty"`
	Remove        bool             `json:"remove,omitempty"`
	Place         bool             `json:"place,omitempty"`
	Wheel         int              `json:"wheel,omitempty"`  // Знак прокрутки колеса
	Select        *block.BlockType `json:"select,omitempty"` // Прямой выбор типа из палитры
	PointerLocked bool             `json:"locked"`
	Pointer       *[2]float64      `json:"pointer,omitempty"`
	Yaw           float64          `json:"yaw"`
	Pitch         float64          `json:"pitch"`
}

// Movement возвращает управляющий ввод для кинематики
func (in Input) Movement() physics.Movement {
	return physics.Movement{
		Forward:  in.Forward,
		Backward: in.Backward,
		Left:     in.Left,
		Right:    in.Right,
		Jump:     in.Jump,
		Yaw:      in.Yaw,
	}
}
