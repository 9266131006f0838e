package sim

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics содержит Prometheus-метрики цикла кадров
type Metrics struct {
	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	blocks        prometheus.Gauge
	grounded      prometheus.Gauge
	placements    *prometheus.CounterVec
	removals      *prometheus.CounterVec
	respawns      prometheus.Counter
}

// NewMetrics создаёт метрики и регистрирует их в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sandbox",
			Name:      "frames_total",
			Help:      "Количество обработанных кадров.",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sandbox",
			Name:      "frame_duration_seconds",
			Help:      "Время обработки одного кадра.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		blocks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sandbox",
			Name:      "blocks",
			Help:      "Количество живых блоков в мире.",
		}),
		grounded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sandbox",
			Name:      "player_grounded",
			Help:      "1, если игрок стоит на блоке.",
		}),
		placements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sandbox",
			Name:      "placements_total",
			Help:      "Попытки установки блоков по результату.",
		}, []string{"reason"}),
		removals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sandbox",
			Name:      "removals_total",
			Help:      "Попытки удаления блоков по результату.",
		}, []string{"reason"}),
		respawns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sandbox",
			Name:      "respawns_total",
			Help:      "Возвраты игрока на точку появления после падения из мира.",
		}),
	}

	reg.MustRegister(m.frames, m.frameDuration, m.blocks, m.grounded, m.placements, m.removals, m.respawns)
	return m
}

// Observe учитывает результат кадра
func (m *Metrics) Observe(s *State, r Result, seconds float64) {
	if m == nil {
		return
	}
	m.frames.Inc()
	m.frameDuration.Observe(seconds)
	m.blocks.Set(float64(s.Store.Len()))
	if s.Player.Grounded {
		m.grounded.Set(1)
	} else {
		m.grounded.Set(0)
	}
	if r.Placement != nil {
		m.placements.WithLabelValues(r.Placement.Reason.String()).Inc()
	}
	if r.Removal != nil {
		m.removals.WithLabelValues(r.Removal.Reason.String()).Inc()
	}
	if r.Kinematics.Respawned {
		m.respawns.Inc()
	}
}
