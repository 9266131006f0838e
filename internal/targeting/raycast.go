package targeting

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// Hit описывает попадание луча в блок
type Hit struct {
	Block    world.Block
	Normal   mgl64.Vec3 // Внешняя нормаль грани попадания
	Point    mgl64.Vec3
	Distance float64
}

// Cast находит ближайший блок на луче. При maxDistance > 0 ячейки обходятся
// вдоль луча до этой дистанции; при maxDistance <= 0 проверяются все блоки.
func Cast(store *world.Store, ray physics.Ray, maxDistance float64) (Hit, bool) {
	if maxDistance <= 0 {
		return castAll(store, ray)
	}

	var hit Hit
	found := false
	traverse(ray, maxDistance, func(cell vec.Vec3) bool {
		b, exists := store.At(cell)
		if !exists {
			return true
		}
		t, normal, ok := b.Box().IntersectRay(ray)
		if !ok || t > maxDistance {
			return true
		}
		hit = Hit{Block: b, Normal: normal, Point: ray.At(t), Distance: t}
		found = true
		return false
	})
	return hit, found
}

// castAll проверяет луч против каждого живого блока и выбирает ближайшее попадание
func castAll(store *world.Store, ray physics.Ray) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	found := false
	for _, b := range store.All() {
		t, normal, ok := b.Box().IntersectRay(ray)
		if ok && t < best.Distance {
			best = Hit{Block: b, Normal: normal, Point: ray.At(t), Distance: t}
			found = true
		}
	}
	return best, found
}

// traverse обходит ячейки сетки вдоль луча в порядке возрастания параметра,
// пока visit возвращает true и луч не вышел за maxDistance
func traverse(ray physics.Ray, maxDistance float64, visit func(vec.Vec3) bool) {
	cell := vec.CellOf(ray.Origin)
	current := [3]int{cell.X, cell.Y, cell.Z}

	var step [3]int
	var tMax, tDelta [3]float64
	for i := 0; i < 3; i++ {
		o, d := ray.Origin[i], ray.Direction[i]
		switch {
		case d > 0:
			step[i] = 1
			tMax[i] = (math.Floor(o) + 1 - o) / d
			tDelta[i] = 1 / d
		case d < 0:
			step[i] = -1
			tMax[i] = (o - math.Floor(o)) / -d
			tDelta[i] = 1 / -d
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	maxSteps := 3*int(math.Ceil(maxDistance)) + 3
	for n := 0; n <= maxSteps; n++ {
		if !visit(vec.Vec3{X: current[0], Y: current[1], Z: current[2]}) {
			return
		}

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if tMax[axis] > maxDistance {
			return
		}
		current[axis] += step[axis]
		tMax[axis] += tDelta[axis]
	}
}
