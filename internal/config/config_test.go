package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/sim"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sandbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_DefaultsWithoutPath(t *testing.T) {
	t.Setenv("SANDBOX_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, physics.DefaultParams(), cfg.PhysicsParams())
	assert.Equal(t, 60, cfg.Server.TickRate)
}

func TestLoad_OverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
world:
  size: 32
  seed: 42
physics:
  gravity: 9.8
  spawn: [1, 2, 3]
  fall_recovery: false
interaction:
  limit_distance: false
  initial_block: stone
targeting:
  refine_vertical_normals: false
  fov: 90
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	params := cfg.PhysicsParams()
	assert.Equal(t, 9.8, params.Gravity)
	assert.Equal(t, 32.0, params.WorldSize)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, params.Spawn)
	assert.False(t, params.FallRecovery)
	assert.Equal(t, 1.0, params.JumpHeight, "незаданные поля сохраняют значения по умолчанию")

	simCfg := cfg.SimConfig()
	assert.False(t, simCfg.Interaction.LimitDistance)
	assert.False(t, simCfg.Targeting.RefineVerticalNormals)
	assert.Equal(t, block.StoneBlock, simCfg.InitialType)
	assert.Equal(t, 90.0, simCfg.FOV)
	assert.Equal(t, sim.DefaultConfig().Aspect, simCfg.Aspect)
	assert.Equal(t, int64(42), cfg.World.Seed)
}

func TestLoad_FromEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  tick_rate: 30\n")
	t.Setenv("SANDBOX_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Server.TickRate)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"нулевая гравитация", "physics:\n  gravity: 0\n"},
		{"пустой мир", "world:\n  size: -1\n"},
		{"неизвестный блок", "interaction:\n  initial_block: lava\n"},
		{"неизвестный уровень логов", "logging:\n  level: loud\n"},
		{"неизвестный уровень компонента", "logging:\n  components:\n    sim: chatty\n"},
		{"нулевая частота кадров", "server:\n  tick_rate: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFileAndBadYAML(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "world: [не словарь"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestGetHTTPPort(t *testing.T) {
	s := ServerConfig{HTTPPort: 9000}
	assert.Equal(t, 9000, s.GetHTTPPort())

	s.HTTPPort = 0
	t.Setenv("SANDBOX_HTTP_PORT", "9100")
	assert.Equal(t, 9100, s.GetHTTPPort())

	t.Setenv("SANDBOX_HTTP_PORT", "abc")
	assert.Equal(t, 8088, s.GetHTTPPort())
}

func TestLoggingOptions(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"
	cfg.Logging.Dir = "logs"

	opts := cfg.LoggingOptions()
	assert.Equal(t, logging.WARN, opts.ConsoleLevel)
	assert.Equal(t, logging.DEBUG, opts.FileLevel)
	assert.Equal(t, "logs", opts.Dir)
	assert.Nil(t, opts.Components)

	cfg.Logging.Components = map[string]string{logging.ComponentSim: "trace"}
	opts = cfg.LoggingOptions()
	assert.Equal(t, map[string]logging.LogLevel{logging.ComponentSim: logging.TRACE}, opts.Components)
}

func TestNewWorld(t *testing.T) {
	cfg := Default()
	cfg.World.Flat = true
	cfg.World.Size = 4

	store := cfg.NewWorld()
	assert.Equal(t, 4*4*2, store.Len())

	cfg.World.Flat = false
	cfg.World.PillarChance = 0
	assert.Equal(t, 4*4*2, cfg.NewWorld().Len(), "без столбов мир плоский")
}

func TestNewWorld_SpawnIsFreeForEverySeed(t *testing.T) {
	for seed := int64(0); seed < 200; seed++ {
		cfg := Default()
		cfg.World.Seed = seed
		cfg.World.PillarChance = 0.5

		state := sim.NewState(cfg.NewWorld(), cfg.SimConfig())
		params := state.Config.Physics
		require.False(t, physics.CheckCollision(state.Player.Box(params), state.Store),
			"seed %d: точка появления внутри блока", seed)

		start := state.Player.Feet
		for frame := 0; frame < 60; frame++ {
			sim.Step(state, sim.Input{PointerLocked: true, Forward: true}, 1.0/60)
		}

		assert.False(t, physics.CheckCollision(state.Player.Box(params), state.Store), "seed %d", seed)
		moved := state.Player.Feet.Sub(start)
		assert.Greater(t, mgl64.Vec2{moved.X(), moved.Z()}.Len(), 0.3, "seed %d: игрок не сошёл с места", seed)
	}
}
