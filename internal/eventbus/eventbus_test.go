package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/vec"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

func TestMemoryBus_DeliversMatchingEvents(t *testing.T) {
	bus := NewMemoryBus(16)

	var (
		mu       sync.Mutex
		received []*Envelope
	)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeBlockPlaced}}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		received = append(received, ev)
		mu.Unlock()
	})
	require.NoError(t, err)

	placed := world.Change{Kind: world.ChangePlaced, Block: world.NewBlock(vec.Vec3{X: 1, Y: 0, Z: 2}, block.WoodBlock), Frame: 42}
	removed := world.Change{Kind: world.ChangeRemoved, Block: world.NewBlock(vec.Vec3{X: 1, Y: -1, Z: 2}, block.GrassBlock), Frame: 43}

	for _, change := range []world.Change{placed, removed} {
		ev, err := NewChangeEnvelope(change)
		require.NoError(t, err)
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	bus.Close()

	require.Len(t, received, 1)
	ev := received[0]
	assert.Equal(t, TypeBlockPlaced, ev.EventType)
	assert.Equal(t, uint64(42), ev.Frame)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "wood", ev.Metadata["block_type"])

	var payload BlockChangePayload
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, placed.Block, payload.Block)

	stats := bus.Metrics()
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(1), stats.Consumed)
}

func TestMemoryBus_BackpressureByPriority(t *testing.T) {
	// Шина без цикла рассылки: буфер не разгружается
	mb := &memoryBus{
		subscribers: make(map[int]*subscriber),
		buffer:      make(chan *Envelope, 1),
		done:        make(chan struct{}),
	}

	for i := 0; i < 3; i++ {
		ev, err := NewEnvelope(SourceSim, "test", i)
		require.NoError(t, err)
		require.NoError(t, mb.Publish(context.Background(), ev))
	}

	stats := mb.Metrics()
	assert.Equal(t, uint64(1), stats.Published)
	assert.Equal(t, uint64(2), stats.Dropped)
	assert.Equal(t, 1, stats.InFlight)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	urgent, _ := NewEnvelope(SourceSim, "test", "urgent")
	urgent.Priority = 9
	assert.ErrorIs(t, mb.Publish(ctx, urgent), context.Canceled)
}

func TestMemoryBus_PreservesOrderPerSubscriber(t *testing.T) {
	bus := NewMemoryBus(64)
	const total = 500

	var (
		mu   sync.Mutex
		fast []uint64
		slow []uint64
	)
	_, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		fast = append(fast, ev.Frame)
		mu.Unlock()
	})
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		if ev.Frame%50 == 0 {
			time.Sleep(time.Millisecond)
		}
		mu.Lock()
		slow = append(slow, ev.Frame)
		mu.Unlock()
	})
	require.NoError(t, err)

	for frame := uint64(1); frame <= total; frame++ {
		change := world.Change{Kind: world.ChangePlaced, Block: world.NewBlock(vec.Vec3{X: int(frame)}, block.StoneBlock), Frame: frame}
		ev, err := NewChangeEnvelope(change)
		require.NoError(t, err)
		ev.Priority = 9 // при заполненном буфере ждём, а не теряем
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	bus.Close()

	for name, frames := range map[string][]uint64{"fast": fast, "slow": slow} {
		require.Len(t, frames, total, name)
		for i, frame := range frames {
			require.Equal(t, uint64(i+1), frame, "%s: событие %d пришло не по порядку", name, i)
		}
	}
	assert.Equal(t, uint64(2*total), bus.Metrics().Consumed)
}

func TestMemoryBus_PublishAfterClose(t *testing.T) {
	bus := NewMemoryBus(4)
	bus.Close()

	ev, err := NewEnvelope(SourceSim, "test", nil)
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)

	_, err = bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	calls := 0
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) { calls++ })
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, _ := NewEnvelope(SourceSim, "test", 1)
	require.NoError(t, bus.Publish(context.Background(), ev))
	bus.Close()

	assert.Equal(t, 0, calls)
}

func TestMetricsExporter_CollectsDeltas(t *testing.T) {
	bus := NewMemoryBus(8)
	reg := prometheus.NewRegistry()
	exporter := NewMetricsExporter(bus, reg, time.Hour)
	exporter.Start()

	for i := 0; i < 3; i++ {
		ev, _ := NewEnvelope(SourceSim, "test", i)
		require.NoError(t, bus.Publish(context.Background(), ev))
	}
	exporter.Stop()

	assert.Equal(t, 3.0, testutil.ToFloat64(exporter.published))
	bus.Close()
}

func TestGlobalPublishWithoutBus(t *testing.T) {
	Init(nil)
	ev, _ := NewEnvelope(SourceSim, "test", nil)
	assert.NoError(t, Publish(context.Background(), ev))
}
