package vec

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2Float представляет горизонтальный вектор (компоненты X и Z) с плавающей точкой
type Vec2Float struct {
	X, Z float64
}

// Flatten отбрасывает вертикальную составляющую
func Flatten(v mgl64.Vec3) Vec2Float {
	return Vec2Float{X: v.X(), Z: v.Z()}
}

// Vec3 возвращает трёхмерный вектор с заданной высотой
func (v Vec2Float) Vec3(y float64) mgl64.Vec3 {
	return mgl64.Vec3{v.X, y, v.Z}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Z: v.Z + other.Z}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Z: v.Z - other.Z}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Z: v.Z * scalar}
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{}
	}
	return Vec2Float{X: v.X / length, Z: v.Z / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Z*v.Z)
}

// IsZero сообщает, нулевой ли вектор
func (v Vec2Float) IsZero() bool {
	return v.X == 0 && v.Z == 0
}
