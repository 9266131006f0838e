package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/physics"
	"github.com/annel0/voxel-sandbox/internal/sim"
	"github.com/annel0/voxel-sandbox/internal/targeting"
	"github.com/annel0/voxel-sandbox/internal/world"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// ErrInvalidConfig возвращается, если значения конфигурации недопустимы
var ErrInvalidConfig = errors.New("config: недопустимая конфигурация")

// Config корневая структура конфигурации приложения
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Interaction InteractionConfig `yaml:"interaction"`
	Targeting   TargetingConfig   `yaml:"targeting"`
	Server      ServerConfig      `yaml:"server"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type WorldConfig struct {
	Size         int     `yaml:"size"`
	Seed         int64   `yaml:"seed"`
	Flat         bool    `yaml:"flat"`
	PillarChance float64 `yaml:"pillar_chance"`
	StoneChance  float64 `yaml:"stone_chance"`
}

type PhysicsConfig struct {
	Gravity       float64    `yaml:"gravity"`
	JumpHeight    float64    `yaml:"jump_height"`
	Speed         float64    `yaml:"speed"`
	Damping       float64    `yaml:"damping"`
	AccelFactor   float64    `yaml:"accel_factor"`
	PlayerWidth   float64    `yaml:"player_width"`
	PlayerHeight  float64    `yaml:"player_height"`
	EyeHeight     float64    `yaml:"eye_height"`
	MaxFrameDelta float64    `yaml:"max_frame_delta"`
	Spawn         [3]float64 `yaml:"spawn"`
	FallRecovery  bool       `yaml:"fall_recovery"`
	FallThreshold float64    `yaml:"fall_threshold"`
}

type InteractionConfig struct {
	MaxDistance   float64 `yaml:"max_distance"`
	LimitDistance bool    `yaml:"limit_distance"`
	Tolerance     float64 `yaml:"tolerance"`
	Clearance     float64 `yaml:"clearance"`
	InitialBlock  string  `yaml:"initial_block"`
}

type TargetingConfig struct {
	MaxDistance           float64 `yaml:"max_distance"`
	RefineVerticalNormals bool    `yaml:"refine_vertical_normals"`
	FOV                   float64 `yaml:"fov"`
	Aspect                float64 `yaml:"aspect"`
}

type ServerConfig struct {
	HTTPPort  int    `yaml:"http_port"`
	TickRate  int    `yaml:"tick_rate"`
	MaxFrames uint64 `yaml:"max_frames"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
}

type LoggingConfig struct {
	Level      string            `yaml:"level"`
	FileLevel  string            `yaml:"file_level"`
	Dir        string            `yaml:"dir"`
	Components map[string]string `yaml:"components"` // Уровни отдельных компонентов: sim, world, api, eventbus, render
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	simDefaults := sim.DefaultConfig()
	params := physics.DefaultParams()
	tgt := targeting.DefaultOptions()
	act := interaction.DefaultOptions()

	return &Config{
		World: WorldConfig{
			Size:         20,
			Seed:         1,
			PillarChance: 0.05,
			StoneChance:  0.7,
		},
		Physics: PhysicsConfig{
			Gravity:       params.Gravity,
			JumpHeight:    params.JumpHeight,
			Speed:         params.Speed,
			Damping:       params.Damping,
			AccelFactor:   params.AccelFactor,
			PlayerWidth:   params.Width,
			PlayerHeight:  params.Height,
			EyeHeight:     params.EyeHeight,
			MaxFrameDelta: params.MaxFrameDelta,
			Spawn:         params.Spawn,
			FallRecovery:  params.FallRecovery,
			FallThreshold: params.FallThreshold,
		},
		Interaction: InteractionConfig{
			MaxDistance:   act.MaxDistance,
			LimitDistance: act.LimitDistance,
			Tolerance:     act.Tolerance,
			Clearance:     act.Clearance,
			InitialBlock:  block.GrassBlock.String(),
		},
		Targeting: TargetingConfig{
			MaxDistance:           tgt.MaxDistance,
			RefineVerticalNormals: tgt.RefineVerticalNormals,
			FOV:                   simDefaults.FOV,
			Aspect:                simDefaults.Aspect,
		},
		Server: ServerConfig{
			TickRate: 60,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-sandbox",
			Endpoint:    "localhost:4318",
		},
		Logging: LoggingConfig{
			Level:     "info",
			FileLevel: "debug",
		},
	}
}

// GetHTTPPort возвращает порт операторского HTTP с поддержкой fallback значений
func (s *ServerConfig) GetHTTPPort() int {
	return getPortWithEnvFallback(s.HTTPPort, "SANDBOX_HTTP_PORT", 8088)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV SANDBOX_CONFIG; без него
// возвращает конфигурацию по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SANDBOX_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет значения, без которых симуляция не работает
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.World.Size > 0, "world.size должен быть положительным: %d", c.World.Size)
	check(c.World.PillarChance >= 0 && c.World.PillarChance <= 1, "world.pillar_chance вне [0,1]: %v", c.World.PillarChance)
	check(c.World.StoneChance >= 0 && c.World.StoneChance <= 1, "world.stone_chance вне [0,1]: %v", c.World.StoneChance)
	check(c.Physics.Gravity > 0, "physics.gravity должен быть положительным: %v", c.Physics.Gravity)
	check(c.Physics.JumpHeight >= 0, "physics.jump_height не может быть отрицательным: %v", c.Physics.JumpHeight)
	check(c.Physics.PlayerWidth > 0 && c.Physics.PlayerHeight > 0, "размеры игрока должны быть положительными")
	check(c.Physics.EyeHeight <= c.Physics.PlayerHeight, "physics.eye_height выше роста игрока")
	check(c.Physics.MaxFrameDelta > 0, "physics.max_frame_delta должен быть положительным: %v", c.Physics.MaxFrameDelta)
	check(c.Targeting.FOV > 0 && c.Targeting.FOV < 180, "targeting.fov вне (0,180): %v", c.Targeting.FOV)
	check(c.Targeting.Aspect > 0, "targeting.aspect должен быть положительным: %v", c.Targeting.Aspect)
	check(c.Interaction.Tolerance > 0 && c.Interaction.Tolerance < 0.5, "interaction.tolerance вне (0,0.5): %v", c.Interaction.Tolerance)
	check(c.Server.TickRate > 0, "server.tick_rate должен быть положительным: %d", c.Server.TickRate)

	if _, err := block.Parse(c.Interaction.InitialBlock); err != nil {
		errs = append(errs, err)
	}
	for _, level := range []string{c.Logging.Level, c.Logging.FileLevel} {
		if _, err := logging.ParseLevel(level); err != nil {
			errs = append(errs, err)
		}
	}
	for component, level := range c.Logging.Components {
		if _, err := logging.ParseLevel(level); err != nil {
			errs = append(errs, fmt.Errorf("logging.components.%s: %w", component, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// PhysicsParams переводит секцию physics в параметры кинематики
func (c *Config) PhysicsParams() physics.Params {
	p := c.Physics
	return physics.Params{
		Gravity:       p.Gravity,
		JumpHeight:    p.JumpHeight,
		Speed:         p.Speed,
		Damping:       p.Damping,
		AccelFactor:   p.AccelFactor,
		Width:         p.PlayerWidth,
		Height:        p.PlayerHeight,
		EyeHeight:     p.EyeHeight,
		MaxFrameDelta: p.MaxFrameDelta,
		WorldSize:     float64(c.World.Size),
		Spawn:         mgl64.Vec3(p.Spawn),
		FallRecovery:  p.FallRecovery,
		FallThreshold: p.FallThreshold,
	}
}

// SimConfig собирает настройки кадра
func (c *Config) SimConfig() sim.Config {
	initial, err := block.Parse(c.Interaction.InitialBlock)
	if err != nil {
		initial = block.GrassBlock
	}

	act := interaction.DefaultOptions()
	act.MaxDistance = c.Interaction.MaxDistance
	act.LimitDistance = c.Interaction.LimitDistance
	act.Tolerance = c.Interaction.Tolerance
	act.Clearance = c.Interaction.Clearance

	return sim.Config{
		Physics: c.PhysicsParams(),
		Targeting: targeting.Options{
			MaxDistance:           c.Targeting.MaxDistance,
			RefineVerticalNormals: c.Targeting.RefineVerticalNormals,
			Tolerance:             c.Interaction.Tolerance,
		},
		Interaction: act,
		InitialType: initial,
		FOV:         c.Targeting.FOV,
		Aspect:      c.Targeting.Aspect,
	}
}

// Generator создаёт генератор мира по секции world. Колонки под коллайдером
// игрока в точке появления остаются без столбиков.
func (c *Config) Generator() *world.WorldGenerator {
	gen := world.NewWorldGenerator(c.World.Seed, c.World.Size)
	gen.Flat = c.World.Flat
	gen.PillarChance = c.World.PillarChance
	gen.StoneChance = c.World.StoneChance

	params := c.PhysicsParams()
	gen.KeepClear(physics.EntityBox(params.Spawn, params.Width, params.Height))
	return gen
}

// NewWorld создаёт и заполняет хранилище блоков
func (c *Config) NewWorld() *world.Store {
	store := world.NewStore()
	c.Generator().Fill(store)
	return store
}

// LoggingOptions переводит секцию logging в параметры логгеров
func (c *Config) LoggingOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Dir = c.Logging.Dir
	if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
		opts.ConsoleLevel = level
	}
	if level, err := logging.ParseLevel(c.Logging.FileLevel); err == nil {
		opts.FileLevel = level
	}
	if len(c.Logging.Components) > 0 {
		opts.Components = make(map[string]logging.LogLevel, len(c.Logging.Components))
		for component, name := range c.Logging.Components {
			if level, err := logging.ParseLevel(name); err == nil {
				opts.Components[component] = level
			}
		}
	}
	return opts
}
