package sim

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

const frameDT = 1.0 / 60

func newFlatState(t *testing.T) *State {
	t.Helper()
	store := world.NewStore()
	world.NewWorldGenerator(7, 20).GenerateFlat(store)
	return NewState(store, DefaultConfig())
}

func TestStep_SpawnLandsOnGrass(t *testing.T) {
	s := newFlatState(t)

	result := Step(s, Input{PointerLocked: true}, frameDT)

	assert.True(t, result.Kinematics.Landed)
	assert.Equal(t, mgl64.Vec3{0, 0, 5}, s.Player.Feet, "ноги на верхней грани травы")
	assert.Equal(t, 0.0, s.Player.Velocity.Y())
	assert.True(t, s.Player.Grounded)

	for i := 0; i < 120; i++ {
		Step(s, Input{PointerLocked: true}, frameDT)
	}
	assert.Equal(t, 0.0, s.Player.Feet.Y(), "игрок не проваливается")
	assert.Equal(t, uint64(121), s.Frame)
}

func TestStep_UnlockedPointerFreezesPlayer(t *testing.T) {
	s := newFlatState(t)
	s.Player.Feet = mgl64.Vec3{0, 3, 5}

	result := Step(s, Input{Forward: true, Place: true, Pitch: -1}, frameDT)

	assert.Equal(t, mgl64.Vec3{0, 3, 5}, s.Player.Feet)
	assert.False(t, s.Preview.Visible)
	assert.Nil(t, result.Placement)
	assert.Empty(t, result.Changes)
}

func TestStep_UnlockedPointerRemovesBlockUnderCursor(t *testing.T) {
	s := newFlatState(t)
	Step(s, Input{PointerLocked: true}, frameDT)
	before := s.Store.Len()

	horizon := Step(s, Input{Remove: true, Pointer: &[2]float64{0, 0}}, frameDT)
	require.NotNil(t, horizon.Removal)
	assert.Equal(t, interaction.NoTarget, horizon.Removal.Reason, "горизонтальный луч уходит за край мира")

	result := Step(s, Input{Remove: true, Place: true, Pointer: &[2]float64{0, -1}}, frameDT)

	require.NotNil(t, result.Removal)
	require.True(t, result.Removal.OK(), result.Removal.Reason.String())
	require.Len(t, result.Changes, 1)
	assert.Equal(t, world.ChangeRemoved, result.Changes[0].Kind)
	assert.Equal(t, world.SurfaceLayer, result.Changes[0].Block.Cell.Y)
	assert.Less(t, result.Changes[0].Block.Cell.Z, 5, "курсор внизу экрана указывает на траву впереди")
	assert.Nil(t, result.Placement, "без подсветки установка не выполняется")
	assert.False(t, s.Preview.Visible)
	assert.Equal(t, before-1, s.Store.Len())
}

func TestStep_UnlockedClickWithoutPointerIgnored(t *testing.T) {
	s := newFlatState(t)
	before := s.Store.Len()

	result := Step(s, Input{Remove: true, Pitch: -1}, frameDT)

	assert.Nil(t, result.Removal)
	assert.Equal(t, before, s.Store.Len())
}

func TestStep_WheelCyclesSelection(t *testing.T) {
	s := newFlatState(t)
	types := block.Types()
	require.Equal(t, 0, s.Selection.Index())

	Step(s, Input{Wheel: -1}, frameDT)
	assert.Equal(t, types[len(types)-1], s.Selection.Current(), "вверх с первого даёт последний")

	Step(s, Input{Wheel: 1}, frameDT)
	assert.Equal(t, types[0], s.Selection.Current(), "вниз с последнего даёт первый")

	stone := block.StoneBlock
	Step(s, Input{Select: &stone}, frameDT)
	assert.Equal(t, block.StoneBlock, s.Selection.Current())
}

func TestStep_PitchIsClamped(t *testing.T) {
	s := newFlatState(t)
	Step(s, Input{PointerLocked: true, Pitch: 5}, frameDT)
	assert.Equal(t, MaxPitch, s.Pitch)
}

func TestStep_PlaceAndRemove(t *testing.T) {
	s := newFlatState(t)
	wood := block.WoodBlock
	look := Input{PointerLocked: true, Pitch: -0.5, Select: &wood}

	Step(s, look, frameDT)
	require.True(t, s.Preview.Visible)
	candidate := s.Preview.Cell
	assert.Equal(t, 0, candidate.Y)
	assert.Equal(t, 2, candidate.Z)
	before := s.Store.Len()

	place := look
	place.Place = true
	result := Step(s, place, frameDT)

	require.NotNil(t, result.Placement)
	require.True(t, result.Placement.OK(), result.Placement.Reason.String())
	require.Len(t, result.Changes, 1)
	assert.Equal(t, world.ChangePlaced, result.Changes[0].Kind)
	assert.Equal(t, result.Frame, result.Changes[0].Frame)
	assert.Equal(t, candidate, result.Changes[0].Block.Cell)
	assert.Equal(t, before+1, s.Store.Len())

	// Подсветка перешла на переднюю грань нового блока
	require.NotNil(t, s.Preview.Target)
	assert.Equal(t, candidate, s.Preview.Target.Block.Cell)
	assert.Equal(t, candidate.Z+1, s.Preview.Cell.Z)

	remove := look
	remove.Remove = true
	result = Step(s, remove, frameDT)

	require.NotNil(t, result.Removal)
	assert.True(t, result.Removal.OK())
	require.Len(t, result.Changes, 1)
	assert.Equal(t, world.ChangeRemoved, result.Changes[0].Kind)
	assert.Equal(t, before, s.Store.Len())
}

func TestStep_PlacementUnderPlayerRejected(t *testing.T) {
	s := newFlatState(t)
	look := Input{PointerLocked: true, Pitch: -MaxPitch}

	Step(s, look, frameDT)
	before := s.Store.Len()

	place := look
	place.Place = true
	result := Step(s, place, frameDT)

	require.NotNil(t, result.Placement)
	assert.Equal(t, interaction.OverlapsPlayer, result.Placement.Reason)
	assert.Equal(t, before, s.Store.Len())
	assert.Empty(t, result.Changes)
}

func TestStep_Deterministic(t *testing.T) {
	script := func(frame int) Input {
		return Input{
			PointerLocked: true,
			Forward:       frame%40 < 25,
			Left:          frame%70 > 50,
			Jump:          frame%33 == 0,
			Place:         frame%17 == 0,
			Remove:        frame%29 == 0,
			Wheel:         frame%23 - 11,
			Yaw:           float64(frame) * 0.013,
			Pitch:         -0.4,
		}
	}

	run := func() *State {
		store := world.NewStore()
		world.NewWorldGenerator(2024, 20).Generate(store)
		s := NewState(store, DefaultConfig())
		for i := 0; i < 600; i++ {
			Step(s, script(i), frameDT)
		}
		return s
	}

	a, b := run(), run()
	assert.Equal(t, a.Player, b.Player)
	assert.Equal(t, a.Store.All(), b.Store.All())
	assert.Equal(t, a.Selection.Current(), b.Selection.Current())
}

// scriptedInput выдаёт ввод по номеру кадра
type scriptedInput func(frame uint64) Input

func (f scriptedInput) Poll(frame uint64) Input { return f(frame) }

type countingRenderer struct {
	mu     sync.Mutex
	frames int
	failAt int
}

func (r *countingRenderer) Render(s *State, res Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames++
	if r.failAt > 0 && r.frames == r.failAt {
		return errors.New("экран недоступен")
	}
	return nil
}

type memoryRecorder struct {
	frames []uint64
}

func (m *memoryRecorder) Record(frame uint64, dt float64, in Input) error {
	m.frames = append(m.frames, frame)
	return nil
}

func TestNewDriver_RequiresCollaborators(t *testing.T) {
	s := newFlatState(t)
	input := scriptedInput(func(uint64) Input { return Input{} })

	_, err := NewDriver(s, nil, &countingRenderer{}, DriverOptions{TickRate: 60})
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = NewDriver(s, input, nil, DriverOptions{TickRate: 60})
	assert.ErrorIs(t, err, ErrNoRenderer)

	_, err = NewDriver(s, input, &countingRenderer{}, DriverOptions{})
	assert.Error(t, err)
}

func TestDriver_RunsFramesAndPublishesChanges(t *testing.T) {
	s := newFlatState(t)
	bus := eventbus.NewMemoryBus(16)

	var (
		mu     sync.Mutex
		events []*eventbus.Envelope
	)
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(ctx context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})
	require.NoError(t, err)

	input := scriptedInput(func(frame uint64) Input {
		return Input{PointerLocked: true, Pitch: -0.5, Place: frame == 3}
	})
	renderer := &countingRenderer{}
	recorder := &memoryRecorder{}
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	d, err := NewDriver(s, input, renderer, DriverOptions{
		TickRate:  500,
		MaxFrames: 5,
		Bus:       bus,
		Metrics:   metrics,
		Recorder:  recorder,
	})
	require.NoError(t, err)

	require.NoError(t, d.Run(context.Background()))
	bus.Close()

	assert.Equal(t, 5, renderer.frames)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, recorder.frames)
	assert.Equal(t, uint64(5), d.Snapshot().Frame)
	assert.True(t, d.Snapshot().Grounded)
	assert.Equal(t, 5.0, testutil.ToFloat64(metrics.frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.placements.WithLabelValues("accepted")))
	assert.Len(t, d.Palette(), len(block.Types()))

	require.Len(t, events, 1)
	assert.Equal(t, eventbus.TypeBlockPlaced, events[0].EventType)
	assert.Equal(t, uint64(3), events[0].Frame)
}

func TestDriver_StopsOnRendererError(t *testing.T) {
	s := newFlatState(t)
	renderer := &countingRenderer{failAt: 2}
	d, err := NewDriver(s, scriptedInput(func(uint64) Input { return Input{} }), renderer, DriverOptions{TickRate: 500})
	require.NoError(t, err)

	err = d.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "отрисовка кадра 2")
}

func TestDriver_StopsOnContextCancel(t *testing.T) {
	s := newFlatState(t)
	ctx, cancel := context.WithCancel(context.Background())
	input := scriptedInput(func(frame uint64) Input {
		if frame == 3 {
			cancel()
		}
		return Input{}
	})
	d, err := NewDriver(s, input, &countingRenderer{}, DriverOptions{TickRate: 500})
	require.NoError(t, err)

	assert.ErrorIs(t, d.Run(ctx), context.Canceled)
	assert.GreaterOrEqual(t, s.Frame, uint64(3))
}
