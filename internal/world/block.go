package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Block представляет собой единичный куб в игровом мире.
// Блок не изменяется после создания; идентичность определяется ячейкой.
type Block struct {
	Cell vec.Vec3        `json:"cell"`
	Type block.BlockType `json:"type"`
}

// NewBlock создаёт блок в указанной ячейке
func NewBlock(cell vec.Vec3, t block.BlockType) Block {
	return Block{Cell: cell, Type: t}
}

// NewBlockAt создаёт блок в ячейке, содержащей точку pos
func NewBlockAt(pos mgl64.Vec3, t block.BlockType) Block {
	return NewBlock(vec.CellOf(pos), t)
}

// Position возвращает центр блока
func (b Block) Position() mgl64.Vec3 {
	return b.Cell.Center()
}

// Box возвращает коллайдер блока
func (b Block) Box() physics.AABB {
	return physics.CellBox(b.Cell)
}

// String возвращает краткое описание блока для логов
func (b Block) String() string {
	p := b.Position()
	return fmt.Sprintf("%s@(%.1f,%.1f,%.1f)", b.Type, p.X(), p.Y(), p.Z())
}
