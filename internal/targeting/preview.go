package targeting

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
)

// Options настраивает наведение
type Options struct {
	MaxDistance           float64 // Дальность луча; <= 0 без ограничения
	RefineVerticalNormals bool    // Для почти вертикальной нормали брать ячейку прямо над/под блоком
	Tolerance             float64 // Допуск проверки занятости
}

// DefaultOptions возвращает настройки по умолчанию
func DefaultOptions() Options {
	return Options{
		MaxDistance:           100,
		RefineVerticalNormals: true,
		Tolerance:             world.DefaultTolerance,
	}
}

// Preview подсвечивает ячейку, куда будет поставлен блок. Не участвует в коллизиях.
type Preview struct {
	Cell    vec.Vec3
	Visible bool
	Target  *Hit // Блок под прицелом; nil, если луч ни во что не попал
}

// Position возвращает центр подсвеченной ячейки
func (p Preview) Position() mgl64.Vec3 {
	return p.Cell.Center()
}

// Box возвращает коллайдер подсветки
func (p Preview) Box() physics.AABB {
	return physics.CellBox(p.Cell)
}

// PlacementCell вычисляет ячейку для установки рядом с гранью попадания:
// ячейка блока, сдвинутая на нормаль, округлённую до ближайшей оси.
func PlacementCell(hit Hit, refineVertical bool) vec.Vec3 {
	if refineVertical && math.Abs(hit.Normal.Y()) > 0.5 {
		if hit.Normal.Y() > 0 {
			return hit.Block.Cell.Up()
		}
		return hit.Block.Cell.Down()
	}
	return hit.Block.Cell.Add(vec.AxisOffset(hit.Normal))
}

// Target пускает луч и пересчитывает подсветку. Подсветка видна, только если
// луч попал в блок и ячейка для установки свободна.
func Target(store *world.Store, ray physics.Ray, opts Options) Preview {
	hit, ok := Cast(store, ray, opts.MaxDistance)
	if !ok {
		return Preview{}
	}

	cell := PlacementCell(hit, opts.RefineVerticalNormals)
	return Preview{
		Cell:    cell,
		Visible: !store.IsOccupied(cell.Center(), opts.Tolerance),
		Target:  &hit,
	}
}
