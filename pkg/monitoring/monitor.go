package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry 独立于默认注册表，/metrics 只暴露这里注册的指标
var Registry = prometheus.NewRegistry()

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"method", "route"},
	)
)

// 游戏指标
var (
	LevelUps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dungeon_level_ups_total",
			Help: "Level-ups granted, by subject (student, instructor)",
		},
		[]string{"subject"},
	)

	MentalBreakdowns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dungeon_mental_breakdowns_total",
			Help: "Transitions of a student into mental crisis",
		},
	)

	RaidDamage = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dungeon_raid_damage_total",
			Help: "HP removed from raid sessions",
		},
	)

	RaidOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dungeon_raid_outcomes_total",
			Help: "Completed raid sessions by outcome (defeated, expired)",
		},
		[]string{"outcome"},
	)

	DialogueFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dungeon_dialogue_fallbacks_total",
			Help: "Flavor lines served from the static pool after a generator failure",
		},
		[]string{"kind"},
	)
)

var initOnce sync.Once

// Init 可重复调用，只注册一次
func Init() {
	initOnce.Do(func() {
		Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			RequestCounter,
			RequestDuration,
			LevelUps,
			MentalBreakdowns,
			RaidDamage,
			RaidOutcomes,
			DialogueFallbacks,
		)
	})
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := routeLabel(c)
		RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
