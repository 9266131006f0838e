package replay

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/sim"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

func flatHeader(seed int64) Header {
	gen := world.NewWorldGenerator(seed, 20)
	gen.Flat = true
	return NewHeader(gen, sim.DefaultConfig())
}

func decompressed(t *testing.T, r io.Reader) []byte {
	t.Helper()
	dec, err := zstd.NewReader(r)
	require.NoError(t, err)
	defer dec.Close()
	data, err := io.ReadAll(dec)
	require.NoError(t, err)
	return data
}

func compressed(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write(data)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

// recordLive прогоняет живую сессию и возвращает её конечное состояние
// вместе с записью
func recordLive(t *testing.T, header Header, frames uint64) (*sim.State, *bytes.Buffer) {
	t.Helper()
	live := header.NewState()
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, header)
	require.NoError(t, err)

	for frame := uint64(1); frame <= frames; frame++ {
		in := sessionInput(frame)
		dt := 1.0/60 + float64(frame%5)*0.001
		require.NoError(t, rec.Record(frame, dt, in))
		sim.Step(live, in, dt)
	}
	assert.Equal(t, frames, rec.Frames())
	require.NoError(t, rec.Close())
	return live, &buf
}

func sessionInput(frame uint64) sim.Input {
	in := sim.Input{
		PointerLocked: true,
		Forward:       frame%50 < 30,
		Right:         frame%90 > 60,
		Jump:          frame%41 == 0,
		Place:         frame%13 == 0,
		Remove:        frame%31 == 0,
		Yaw:           float64(frame) * 0.02,
		Pitch:         -0.45,
	}
	if frame == 100 {
		leaves := block.LeavesBlock
		in.Select = &leaves
	}
	return in
}

func TestRecordAndReplayReproducesSession(t *testing.T) {
	header := NewHeader(world.NewWorldGenerator(77, 20), sim.DefaultConfig())
	live, buf := recordLive(t, header, 400)

	reader, err := NewReader(buf)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, int64(77), reader.Header().World.Seed)
	assert.Equal(t, FormatVersion, reader.Header().Version)

	frames, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, frames, 400)

	replayed := reader.Header().NewState()
	summary := Replay(replayed, frames)

	assert.Equal(t, 400, summary.Frames)
	assert.Equal(t, live.Player, replayed.Player)
	assert.Equal(t, live.Store.All(), replayed.Store.All())
	assert.Equal(t, block.LeavesBlock, replayed.Selection.Current())
	assert.Greater(t, summary.Placed+summary.Removed, 0)
}

func TestReplay_RestoresGeneratorAndSimSettings(t *testing.T) {
	gen := world.NewWorldGenerator(31, 24)
	gen.PillarChance = 0.3
	gen.StoneChance = 0.2
	gen.MaxPillarHeight = 5

	cfg := sim.DefaultConfig()
	cfg.Physics.WorldSize = 24
	cfg.Physics.Speed = 5
	cfg.Physics.Spawn[2] = 3
	gen.KeepClear(physics.EntityBox(cfg.Physics.Spawn, cfg.Physics.Width, cfg.Physics.Height))

	original := world.NewStore()
	gen.Fill(original)

	header := NewHeader(gen, cfg)
	live, buf := recordLive(t, header, 300)

	reader, err := NewReader(buf)
	require.NoError(t, err)
	defer reader.Close()

	restored := reader.Header()
	assert.Equal(t, 0.3, restored.World.PillarChance)
	assert.Equal(t, cfg, restored.Sim)
	assert.Equal(t, original.All(), restored.NewWorld().All(), "мир записи совпадает с исходным")

	defaultWorld := world.NewStore()
	world.NewWorldGenerator(31, 24).Generate(defaultWorld)
	assert.NotEqual(t, defaultWorld.Len(), original.Len(), "плотность столбиков отличается от умолчания")

	frames, err := reader.ReadAll()
	require.NoError(t, err)

	replayed := restored.NewState()
	Replay(replayed, frames)
	assert.Equal(t, live.Player, replayed.Player)
	assert.Equal(t, live.Store.All(), replayed.Store.All())
}

func TestReader_RejectsOldVersion(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, flatHeader(1))
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	data := bytes.Replace(decompressed(t, &buf), []byte(`"version":2`), []byte(`"version":1`), 1)
	_, err = NewReader(bytes.NewReader(compressed(t, data)))
	assert.ErrorIs(t, err, ErrCorruptRecording)
}

func TestReader_RejectsGarbage(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("не zstd")))
	assert.Error(t, err)
}

func TestReader_RejectsFrameGap(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, flatHeader(1))
	require.NoError(t, err)
	require.NoError(t, rec.Record(1, 0.016, sim.Input{}))
	require.NoError(t, rec.Record(3, 0.016, sim.Input{}))
	require.NoError(t, rec.Close())

	reader, err := NewReader(&buf)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	require.NoError(t, err)
	_, err = reader.Next()
	assert.ErrorIs(t, err, ErrCorruptRecording)
}

func TestReader_EmptySession(t *testing.T) {
	var buf bytes.Buffer
	rec, err := NewRecorder(&buf, flatHeader(1))
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	reader, err := NewReader(&buf)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}
