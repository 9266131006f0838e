package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel-sandbox/internal/logging"
	"github.com/annel0/voxel-sandbox/internal/middleware"
	"github.com/annel0/voxel-sandbox/internal/sim"
	"github.com/annel0/voxel-sandbox/internal/world/block"
)

// StateSource отдаёт снимки состояния симуляции. Реализуется sim.Driver.
type StateSource interface {
	Snapshot() sim.Snapshot
	Palette() []block.PaletteEntry
}

// RestServer представляет операторский HTTP сервер (только чтение)
type RestServer struct {
	router  *gin.Engine
	server  *http.Server
	source  StateSource
	port    string
	metrics *ProcessMetrics
	logger  *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port        string                // порт для запуска сервера
	Source      StateSource           // источник снимков состояния
	Registerer  prometheus.Registerer // куда регистрировать HTTP-метрики (nil: глобальный регистр)
	Gatherer    prometheus.Gatherer   // откуда отдавать /metrics (nil: глобальный регистр)
	ServiceName string                // имя для otelgin и пространства метрик
}

// GenericResponse общий конверт ответа
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Source == nil {
		return nil, errors.New("api: не задан источник состояния")
	}
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.ServiceName == "" {
		config.ServiceName = "sandbox_api"
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(config.ServiceName))

	loggerMw := middleware.NewRequestLogger(logging.GetAPILogger())
	router.Use(loggerMw.Handler())

	promMw := middleware.NewPrometheusMiddleware(config.ServiceName, config.Registerer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, config.Gatherer)

	rs := &RestServer{
		router:  router,
		source:  config.Source,
		port:    config.Port,
		metrics: NewProcessMetrics(),
		logger:  logging.GetAPILogger(),
	}
	rs.setupRoutes()

	rs.server = &http.Server{
		Addr:              config.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return rs, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	api := rs.router.Group("/api")
	{
		api.GET("/state", rs.handleState)
		api.GET("/palette", rs.handlePalette)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// handleState возвращает снимок состояния игрока и мира
func (rs *RestServer) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Состояние симуляции",
		Data:    rs.source.Snapshot(),
	})
}

// handlePalette возвращает палитру блоков с отметкой выбранного
func (rs *RestServer) handlePalette(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Палитра блоков",
		Data:    rs.source.Palette(),
	})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	snap := rs.source.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().Unix(),
		"frame":   snap.Frame,
		"blocks":  snap.Blocks,
		"process": rs.metrics.Snapshot(),
	})
}

// Start запускает REST сервер в отдельной горутине
func (rs *RestServer) Start() {
	go func() {
		rs.logger.Info("REST API слушает %s", rs.port)
		if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.logger.Error("Ошибка REST API сервера: %v", err)
		}
	}()
}

// Stop останавливает REST сервер, дожидаясь завершения активных запросов
func (rs *RestServer) Stop(ctx context.Context) error {
	if err := rs.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("остановка REST API: %w", err)
	}
	return nil
}
