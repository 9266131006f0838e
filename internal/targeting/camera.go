package targeting

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/physics"
)

// Camera описывает перспективную камеру от первого лица.
// При нулевых углах камера смотрит в сторону -Z.
type Camera struct {
	Position mgl64.Vec3
	Yaw      float64 // Поворот вокруг Y, рад
	Pitch    float64 // Наклон, рад; положительный вверх
	FOV      float64 // Вертикальный угол обзора, градусы
	Aspect   float64 // Отношение ширины к высоте
}

// orientation возвращает матрицу поворота камеры (порядок YXZ)
func (c Camera) orientation() mgl64.Mat3 {
	return mgl64.Rotate3DY(c.Yaw).Mul3(mgl64.Rotate3DX(c.Pitch))
}

// Forward возвращает направление взгляда
func (c Camera) Forward() mgl64.Vec3 {
	return c.orientation().Mul3x1(mgl64.Vec3{0, 0, -1}).Normalize()
}

// Ray возвращает луч из центра экрана
func (c Camera) Ray() physics.Ray {
	return physics.NewRay(c.Position, c.Forward())
}

// RayFromNDC возвращает луч через точку экрана в нормализованных координатах
// устройства (x и y от -1 до 1, y направлен вверх)
func (c Camera) RayFromNDC(x, y float64) physics.Ray {
	fov := c.FOV
	if fov <= 0 {
		fov = 75
	}
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}

	tanHalf := math.Tan(mgl64.DegToRad(fov) / 2)
	local := mgl64.Vec3{x * tanHalf * aspect, y * tanHalf, -1}
	return physics.NewRay(c.Position, c.orientation().Mul3x1(local))
}
