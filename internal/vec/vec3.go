package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 представляет целочисленные координаты ячейки сетки.
// Центр блока в ячейке находится в точке cell + (0.5, 0.5, 0.5).
type Vec3 struct {
	X int
	Y int
	Z int
}

// CellOf возвращает ячейку, в которую попадает точка
func CellOf(p mgl64.Vec3) Vec3 {
	return Vec3{
		X: int(math.Floor(p.X())),
		Y: int(math.Floor(p.Y())),
		Z: int(math.Floor(p.Z())),
	}
}

// Center возвращает центр ячейки
func (v Vec3) Center() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X) + 0.5, float64(v.Y) + 0.5, float64(v.Z) + 0.5}
}

// Min возвращает минимальный угол ячейки
func (v Vec3) Min() mgl64.Vec3 {
	return mgl64.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// Column возвращает колонку (X, Z), в которой лежит ячейка
func (v Vec3) Column() Vec2 {
	return Vec2{X: v.X, Z: v.Z}
}

// DistanceTo возвращает квадрат расстояния до другой ячейки
func (v Vec3) DistanceTo(other Vec3) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	dz := v.Z - other.Z
	return float64(dx*dx + dy*dy + dz*dz)
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Up и Down возвращают соседние ячейки по вертикали
func (v Vec3) Up() Vec3   { return Vec3{X: v.X, Y: v.Y + 1, Z: v.Z} }
func (v Vec3) Down() Vec3 { return Vec3{X: v.X, Y: v.Y - 1, Z: v.Z} }

// AxisOffset округляет нормаль до ближайшей оси и возвращает единичное смещение ячейки.
// Для нулевого вектора возвращается нулевое смещение.
func AxisOffset(n mgl64.Vec3) Vec3 {
	ax, ay, az := math.Abs(n.X()), math.Abs(n.Y()), math.Abs(n.Z())
	switch {
	case ax == 0 && ay == 0 && az == 0:
		return Vec3{}
	case ax >= ay && ax >= az:
		return Vec3{X: sign(n.X())}
	case ay >= az:
		return Vec3{Y: sign(n.Y())}
	default:
		return Vec3{Z: sign(n.Z())}
	}
}

func sign(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}
