package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/vec"
)

// AABB представляет выровненный по осям прямоугольный параллелепипед
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABBFromCenter создаёт коллайдер по центру и полным размерам
func NewAABBFromCenter(center, size mgl64.Vec3) AABB {
	half := size.Mul(0.5)
	return AABB{Min: center.Sub(half), Max: center.Add(half)}
}

// CellBox возвращает единичный куб ячейки
func CellBox(cell vec.Vec3) AABB {
	lo := cell.Min()
	return AABB{Min: lo, Max: lo.Add(mgl64.Vec3{1, 1, 1})}
}

// EntityBox возвращает коллайдер сущности, стоящей ногами в точке feet
func EntityBox(feet mgl64.Vec3, width, height float64) AABB {
	hw := width / 2
	return AABB{
		Min: mgl64.Vec3{feet.X() - hw, feet.Y(), feet.Z() - hw},
		Max: mgl64.Vec3{feet.X() + hw, feet.Y() + height, feet.Z() + hw},
	}
}

// Intersects проверяет строгое пересечение двух коллайдеров.
// Касание гранями пересечением не считается.
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y() &&
		a.Min.Z() < b.Max.Z() && a.Max.Z() > b.Min.Z()
}

// OverlapsXZ проверяет пересечение проекций на горизонтальную плоскость
func (a AABB) OverlapsXZ(b AABB) bool {
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Z() < b.Max.Z() && a.Max.Z() > b.Min.Z()
}

// Move возвращает коллайдер, сдвинутый на d
func (a AABB) Move(d mgl64.Vec3) AABB {
	return AABB{Min: a.Min.Add(d), Max: a.Max.Add(d)}
}

// Union возвращает наименьший коллайдер, содержащий оба
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{min(a.Min.X(), b.Min.X()), min(a.Min.Y(), b.Min.Y()), min(a.Min.Z(), b.Min.Z())},
		Max: mgl64.Vec3{max(a.Max.X(), b.Max.X()), max(a.Max.Y(), b.Max.Y()), max(a.Max.Z(), b.Max.Z())},
	}
}

// Center возвращает центр коллайдера
func (a AABB) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// Cells возвращает диапазон ячеек, которые задевает коллайдер (включительно)
func (a AABB) Cells() (from, to vec.Vec3) {
	return vec.CellOf(a.Min), vec.CellOf(a.Max)
}

// Collider отдаёт твёрдые коллайдеры мира в окрестности заданной области.
// Реализация может вернуть лишние коллайдеры, но не должна пропускать пересекающиеся.
type Collider interface {
	SolidsIn(area AABB) []AABB
}

// CheckCollision проверяет, пересекается ли коллайдер с чем-либо в мире
func CheckCollision(box AABB, world Collider) bool {
	for _, solid := range world.SolidsIn(box) {
		if box.Intersects(solid) {
			return true
		}
	}
	return false
}
