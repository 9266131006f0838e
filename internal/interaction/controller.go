// Package interaction реализует установку и удаление блоков игроком.
package interaction

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/targeting"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// Reason объясняет результат действия игрока
type Reason uint8

const (
	Accepted       Reason = iota // Действие выполнено
	NoTarget                     // Луч ни во что не попал
	PreviewHidden                // Подсветка скрыта
	Occupied                     // Ячейка уже занята
	OverlapsPlayer               // Блок пересёкся бы с игроком
	TooFar                       // Ячейка дальше допустимой дистанции
)

// String возвращает имя причины для логов и метрик
func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case NoTarget:
		return "no_target"
	case PreviewHidden:
		return "preview_hidden"
	case Occupied:
		return "occupied"
	case OverlapsPlayer:
		return "overlaps_player"
	case TooFar:
		return "too_far"
	default:
		return "unknown"
	}
}

// Outcome описывает результат попытки установить или удалить блок
type Outcome struct {
	Reason Reason
	Change world.Change // Заполнено только при Reason == Accepted
}

// OK сообщает, изменился ли мир
func (o Outcome) OK() bool {
	return o.Reason == Accepted
}

// Options настраивает проверки при установке
type Options struct {
	Tolerance     float64 // Допуск проверки занятости
	Clearance     float64 // Зазор вокруг игрока по горизонтали (на каждую сторону)
	HeadClearance float64 // Зазор над головой игрока
	LimitDistance bool    // Проверять расстояние от глаз до ячейки
	MaxDistance   float64 // Максимальное расстояние установки
}

// DefaultOptions возвращает настройки по умолчанию
func DefaultOptions() Options {
	return Options{
		Tolerance:     world.DefaultTolerance,
		Clearance:     0.1,
		HeadClearance: 0.1,
		LimitDistance: true,
		MaxDistance:   10,
	}
}

// Controller применяет действия игрока к миру
type Controller struct {
	opts   Options
	logger *logging.Logger
}

// NewController создаёт контроллер
func NewController(opts Options) *Controller {
	return &Controller{
		opts:   opts,
		logger: logging.GetWorldLogger(),
	}
}

// Options возвращает текущие настройки
func (c *Controller) Options() Options {
	return c.opts
}

// Remove удаляет блок под прицелом
func (c *Controller) Remove(store *world.Store, preview targeting.Preview) Outcome {
	if preview.Target == nil {
		return Outcome{Reason: NoTarget}
	}

	target := preview.Target.Block
	if !store.Remove(target) {
		// Подсветка устарела: блок уже удалён
		return Outcome{Reason: NoTarget}
	}

	c.logger.Debug("Удалён блок %s", target)
	return Outcome{
		Reason: Accepted,
		Change: world.Change{Kind: world.ChangeRemoved, Block: target},
	}
}

// Place ставит блок выбранного типа в подсвеченную ячейку
func (c *Controller) Place(store *world.Store, preview targeting.Preview, selected block.BlockType, player *physics.Player, params physics.Params) Outcome {
	if preview.Target == nil {
		return Outcome{Reason: NoTarget}
	}
	if !preview.Visible {
		return Outcome{Reason: PreviewHidden}
	}

	candidate := world.NewBlock(preview.Cell, selected)
	center := candidate.Position()

	if store.IsOccupied(center, c.opts.Tolerance) {
		return Outcome{Reason: Occupied}
	}
	if candidate.Box().Intersects(c.ClearanceBox(player, params)) {
		c.logger.Trace("Отказ в установке %s: пересечение с игроком", candidate)
		return Outcome{Reason: OverlapsPlayer}
	}
	if c.opts.LimitDistance && tooFar(center, player.Eye(params), c.opts.MaxDistance) {
		return Outcome{Reason: TooFar}
	}

	store.Add(candidate)
	c.logger.Debug("Поставлен блок %s", candidate)
	return Outcome{
		Reason: Accepted,
		Change: world.Change{Kind: world.ChangePlaced, Block: candidate},
	}
}

// ClearanceBox возвращает область вокруг игрока, в которую нельзя ставить блоки:
// коллайдер, расширенный по горизонтали и вверх, низ на уровне ног.
func (c *Controller) ClearanceBox(player *physics.Player, params physics.Params) physics.AABB {
	return physics.EntityBox(player.Feet, params.Width+2*c.opts.Clearance, params.Height+c.opts.HeadClearance)
}

func tooFar(center, eye mgl64.Vec3, limit float64) bool {
	return center.Sub(eye).Len() > limit
}
