package sim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

var (
	// ErrNoInput возвращается, если источник ввода не задан
	ErrNoInput = errors.New("sim: не задан источник ввода")
	// ErrNoRenderer возвращается, если не задан рендерер
	ErrNoRenderer = errors.New("sim: не задан рендерер")
)

// InputSource поставляет снимок ввода на каждый кадр
type InputSource interface {
	Poll(frame uint64) Input
}

// Renderer получает состояние после каждого кадра
type Renderer interface {
	Render(s *State, r Result) error
}

// Recorder сохраняет ввод кадров для повторного воспроизведения
type Recorder interface {
	Record(frame uint64, dt float64, in Input) error
}

// DriverOptions настраивает цикл кадров
type DriverOptions struct {
	TickRate  int               // Кадров в секунду
	MaxFrames uint64            // Остановиться после стольких кадров; 0 без ограничения
	Bus       eventbus.EventBus // Куда публиковать изменения мира; nil означает глобальную шину
	Metrics   *Metrics
	Recorder  Recorder
	Tracer    trace.Tracer
}

// Driver крутит цикл кадров в одной горутине
type Driver struct {
	state    *State
	input    InputSource
	renderer Renderer
	opts     DriverOptions
	tracer   trace.Tracer
	logger   *logging.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewDriver создаёт цикл кадров. Без источника ввода или рендерера запуск невозможен.
func NewDriver(state *State, input InputSource, renderer Renderer, opts DriverOptions) (*Driver, error) {
	if state == nil {
		return nil, errors.New("sim: не задано состояние")
	}
	if input == nil {
		return nil, ErrNoInput
	}
	if renderer == nil {
		return nil, ErrNoRenderer
	}
	if opts.TickRate <= 0 {
		return nil, fmt.Errorf("sim: некорректная частота кадров %d", opts.TickRate)
	}

	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer("github.com/annel0/voxel-sandbox/internal/sim")
	}

	return &Driver{
		state:    state,
		input:    input,
		renderer: renderer,
		opts:     opts,
		tracer:   tracer,
		logger:   logging.GetSimLogger(),
		snapshot: state.Snapshot(),
	}, nil
}

// Snapshot возвращает последний опубликованный снимок состояния
func (d *Driver) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// Palette возвращает палитру с отметкой выбранного типа
func (d *Driver) Palette() []block.PaletteEntry {
	return d.Snapshot().Palette
}

// Run крутит кадры до отмены контекста или до MaxFrames
func (d *Driver) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(d.opts.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	d.logger.Info("Цикл кадров запущен: %d кадров/с, блоков в мире: %d", d.opts.TickRate, d.state.Store.Len())

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Цикл кадров остановлен на кадре %d", d.state.Frame)
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now

			if err := d.frame(ctx, dt); err != nil {
				return err
			}
			if d.opts.MaxFrames > 0 && d.state.Frame >= d.opts.MaxFrames {
				d.logger.Info("Достигнут лимит кадров: %d", d.opts.MaxFrames)
				return nil
			}
		}
	}
}

// frame выполняет один кадр: опрос ввода, шаг, публикация изменений, отрисовка
func (d *Driver) frame(ctx context.Context, dt float64) error {
	started := time.Now()
	ctx, span := d.tracer.Start(ctx, "sim.frame")
	defer span.End()

	in := d.input.Poll(d.state.Frame + 1)
	if d.opts.Recorder != nil {
		// Записывается шаг до ограничения: Step ограничит его так же при повторе
		if err := d.opts.Recorder.Record(d.state.Frame+1, dt, in); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("запись кадра %d: %w", d.state.Frame+1, err)
		}
	}

	result := Step(d.state, in, dt)
	span.SetAttributes(
		attribute.Int64("sim.frame", int64(result.Frame)),
		attribute.Float64("sim.dt", result.DT),
		attribute.Bool("player.grounded", d.state.Player.Grounded),
		attribute.Int("world.changes", len(result.Changes)),
	)

	if result.Kinematics.Respawned {
		d.logger.Warn("Игрок упал из мира и возвращён на точку появления")
	}
	d.publish(ctx, result)

	if err := d.renderer.Render(d.state, result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("отрисовка кадра %d: %w", result.Frame, err)
	}

	snap := d.state.Snapshot()
	d.mu.Lock()
	d.snapshot = snap
	d.mu.Unlock()

	d.opts.Metrics.Observe(d.state, result, time.Since(started).Seconds())
	d.logger.Trace("Кадр %d: dt=%.4f ноги=%v", result.Frame, result.DT, d.state.Player.Feet)
	return nil
}

// publish отправляет изменения мира в шину событий
func (d *Driver) publish(ctx context.Context, result Result) {
	for _, change := range result.Changes {
		ev, err := eventbus.NewChangeEnvelope(change)
		if err != nil {
			d.logger.Error("Ошибка упаковки события: %v", err)
			continue
		}

		if d.opts.Bus != nil {
			err = d.opts.Bus.Publish(ctx, ev)
		} else {
			err = eventbus.Publish(ctx, ev)
		}
		if err != nil {
			d.logger.Warn("Событие %s не опубликовано: %v", ev.EventType, err)
		}
	}
}
