package world

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/vec"
)

// DefaultTolerance допуск сравнения позиций при проверке занятости
const DefaultTolerance = 0.1

// Store хранит живые блоки мира в пространственном индексе по ячейкам.
// Store не потокобезопасен: им владеет единственный цикл кадров.
type Store struct {
	blocks map[vec.Vec3]Block
}

// NewStore создаёт пустое хранилище
func NewStore() *Store {
	return &Store{blocks: make(map[vec.Vec3]Block)}
}

// Add добавляет блок. Повторная вставка в ту же ячейку ошибкой не считается и
// заменяет прежний блок; проверять занятость должен вызывающий.
func (s *Store) Add(b Block) {
	s.blocks[b.Cell] = b
}

// Remove удаляет блок по его ячейке. Возвращает false, если блока не было.
func (s *Store) Remove(b Block) bool {
	if _, exists := s.blocks[b.Cell]; !exists {
		return false
	}
	delete(s.blocks, b.Cell)
	return true
}

// At возвращает блок в ячейке
func (s *Store) At(cell vec.Vec3) (Block, bool) {
	b, exists := s.blocks[cell]
	return b, exists
}

// Len возвращает количество блоков
func (s *Store) Len() int {
	return len(s.blocks)
}

// IsOccupied сообщает, есть ли блок, центр которого отличается от pos меньше
// чем на tolerance по каждой оси (покомпонентно, не по евклидовой метрике).
func (s *Store) IsOccupied(pos mgl64.Vec3, tolerance float64) bool {
	// Центры блоков лежат в точках k + 0.5, перебираем только подходящие k
	from := vec.CellOf(pos.Sub(mgl64.Vec3{tolerance, tolerance, tolerance}).Sub(mgl64.Vec3{0.5, 0.5, 0.5}))
	to := vec.CellOf(pos.Add(mgl64.Vec3{tolerance, tolerance, tolerance}).Sub(mgl64.Vec3{0.5, 0.5, 0.5})).Add(vec.Vec3{X: 1, Y: 1, Z: 1})

	for x := from.X; x <= to.X; x++ {
		for y := from.Y; y <= to.Y; y++ {
			for z := from.Z; z <= to.Z; z++ {
				b, exists := s.blocks[vec.Vec3{X: x, Y: y, Z: z}]
				if !exists {
					continue
				}
				c := b.Position()
				if math.Abs(c.X()-pos.X()) < tolerance &&
					math.Abs(c.Y()-pos.Y()) < tolerance &&
					math.Abs(c.Z()-pos.Z()) < tolerance {
					return true
				}
			}
		}
	}
	return false
}

// All возвращает все живые блоки в детерминированном порядке (Y, X, Z)
func (s *Store) All() []Block {
	result := make([]Block, 0, len(s.blocks))
	for _, b := range s.blocks {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Cell, result[j].Cell
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Z < b.Z
	})
	return result
}

// SolidsIn возвращает коллайдеры блоков в ячейках, которые задевает area
func (s *Store) SolidsIn(area physics.AABB) []physics.AABB {
	from, to := area.Cells()
	volume := (to.X - from.X + 1) * (to.Y - from.Y + 1) * (to.Z - from.Z + 1)

	result := make([]physics.AABB, 0, 8)

	// Для огромных областей дешевле пройти по всем блокам
	if volume > len(s.blocks) {
		for _, b := range s.blocks {
			box := b.Box()
			if box.Max.X() >= area.Min.X() && box.Min.X() <= area.Max.X() &&
				box.Max.Y() >= area.Min.Y() && box.Min.Y() <= area.Max.Y() &&
				box.Max.Z() >= area.Min.Z() && box.Min.Z() <= area.Max.Z() {
				result = append(result, box)
			}
		}
		return result
	}

	for x := from.X; x <= to.X; x++ {
		for y := from.Y; y <= to.Y; y++ {
			for z := from.Z; z <= to.Z; z++ {
				if b, exists := s.blocks[vec.Vec3{X: x, Y: y, Z: z}]; exists {
					result = append(result, b.Box())
				}
			}
		}
	}
	return result
}

// Clone создаёт независимую копию хранилища
func (s *Store) Clone() *Store {
	clone := &Store{blocks: make(map[vec.Vec3]Block, len(s.blocks))}
	for cell, b := range s.blocks {
		clone.blocks[cell] = b
	}
	return clone
}
