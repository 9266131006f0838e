package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/voxel-sandbox/internal/api"
	"github.com/annel0/voxel-sandbox/internal/config"
	"github.com/annel0/voxel-sandbox/internal/eventbus"
	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/observability"
	"github.com/annel0/voxel-sandbox/internal/replay"
	"github.com/annel0/voxel-sandbox/internal/sim"
)

func main() {
	var (
		configPath = flag.String("config", "", "Путь к YAML конфигурации (или SANDBOX_CONFIG)")
		recordPath = flag.String("record", "", "Записать ввод сессии в файл для replay-cli")
		maxFrames  = flag.Uint64("frames", 0, "Остановиться после N кадров (0: из конфигурации)")
		noHTTP     = flag.Bool("no-http", false, "Не запускать операторский HTTP")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	if *maxFrames > 0 {
		cfg.Server.MaxFrames = *maxFrames
	}

	if err := logging.InitDefaultLogger("sandbox", cfg.LoggingOptions()); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	if err := run(cfg, *recordPath, !*noHTTP); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Песочница остановлена")
}

func run(cfg *config.Config, recordPath string, withHTTP bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.InitTelemetry(ctx, observability.Options{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    true,
	})
	if err != nil {
		return fmt.Errorf("инициализация телеметрии: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}()

	// === МИР ===
	store := cfg.NewWorld()
	logging.Info("🌍 Мир %dx%d сгенерирован (seed=%d): %d блоков", cfg.World.Size, cfg.World.Size, cfg.World.Seed, store.Len())

	state := sim.NewState(store, cfg.SimConfig())

	// === ШИНА СОБЫТИЙ ===
	bus := eventbus.NewMemoryBus(256)
	eventbus.Init(bus)
	defer bus.Close()

	if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		return fmt.Errorf("подписка логирования событий: %w", err)
	}

	reg := prometheus.DefaultRegisterer
	busMetrics := eventbus.NewMetricsExporter(bus, reg, time.Second)
	busMetrics.Start()
	defer busMetrics.Stop()

	// === ЗАПИСЬ ===
	var recorder sim.Recorder
	if recordPath != "" {
		file, err := os.Create(recordPath)
		if err != nil {
			return fmt.Errorf("создание файла записи: %w", err)
		}
		defer file.Close()

		rec, err := replay.NewRecorder(file, replay.NewHeader(cfg.Generator(), cfg.SimConfig()))
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				logging.Error("Ошибка завершения записи: %v", err)
			}
			logging.Info("📼 Записано кадров: %d → %s", rec.Frames(), recordPath)
		}()
		recorder = rec
	}

	// === ЦИКЛ КАДРОВ ===
	driver, err := sim.NewDriver(state, newAutopilot(cfg.Server.TickRate), newLogRenderer(cfg.Server.TickRate), sim.DriverOptions{
		TickRate:  cfg.Server.TickRate,
		MaxFrames: cfg.Server.MaxFrames,
		Bus:       bus,
		Metrics:   sim.NewMetrics(reg),
		Recorder:  recorder,
	})
	if err != nil {
		return fmt.Errorf("создание цикла кадров: %w", err)
	}

	// === HTTP ===
	if withHTTP {
		port := fmt.Sprintf(":%d", cfg.Server.GetHTTPPort())
		server, err := api.NewRestServer(api.Config{
			Port:        port,
			Source:      driver,
			ServiceName: "sandbox_api",
		})
		if err != nil {
			return fmt.Errorf("создание REST API: %w", err)
		}
		server.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Stop(ctx); err != nil {
				logging.Error("❌ %v", err)
			}
		}()

		logging.Info("   ❤️  Health check: http://localhost%s/health", port)
		logging.Info("   📈 Метрики: http://localhost%s/metrics", port)
	}

	logging.Info("🎮 Песочница запущена: %d кадров/с", cfg.Server.TickRate)

	err = driver.Run(ctx)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("цикл кадров: %w", err)
	}

	snap := driver.Snapshot()
	logging.Info("Итог: кадров %d, блоков %d, ноги %.2f/%.2f/%.2f, на земле=%v",
		snap.Frame, snap.Blocks, snap.Feet.X(), snap.Feet.Y(), snap.Feet.Z(), snap.Grounded)
	return nil
}
