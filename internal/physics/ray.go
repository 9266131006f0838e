package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray представляет луч с началом и нормализованным направлением
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// NewRay создаёт луч, нормализуя направление
func NewRay(origin, direction mgl64.Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// At возвращает точку луча для параметра t
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IntersectRay пересекает луч с коллайдером методом плит.
// Возвращает параметр входа и внешнюю нормаль грани входа. Луч, начинающийся
// внутри коллайдера, пересечением не считается: видны только внешние грани.
func (a AABB) IntersectRay(r Ray) (t float64, normal mgl64.Vec3, ok bool) {
	tNear := math.Inf(-1)
	tFar := math.Inf(1)
	axis := -1

	for i := 0; i < 3; i++ {
		o, d := r.Origin[i], r.Direction[i]
		if d == 0 {
			if o < a.Min[i] || o > a.Max[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}

		t1 := (a.Min[i] - o) / d
		t2 := (a.Max[i] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tNear {
			tNear = t1
			axis = i
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return 0, mgl64.Vec3{}, false
		}
	}

	if axis < 0 || tFar < 0 || tNear < 0 {
		return 0, mgl64.Vec3{}, false
	}

	if r.Direction[axis] > 0 {
		normal[axis] = -1
	} else {
		normal[axis] = 1
	}
	return tNear, normal, true
}
