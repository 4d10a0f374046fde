package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	bookingHandler "github.com/jwalitptl/clinic-scheduler/internal/handler/booking"
	healthHandler "github.com/jwalitptl/clinic-scheduler/internal/handler/health"
	"github.com/jwalitptl/clinic-scheduler/internal/middleware"
)

type RouterConfig struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine   *gin.Engine
	bookingH *bookingHandler.Handler
	healthH  *healthHandler.Handler
	metrics  *routerMetrics
	config   RouterConfig
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func initRouterMetrics() *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func NewRouter(bookingH *bookingHandler.Handler, healthH *healthHandler.Handler, config RouterConfig) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.RateLimit == 0 {
		config.RateLimit = 100
	}
	if config.RateBurst == 0 {
		config.RateBurst = 20
	}

	return &Router{
		engine:   engine,
		bookingH: bookingH,
		healthH:  healthH,
		metrics:  initRouterMetrics(),
		config:   config,
	}
}

func (r *Router) Setup() {
	bookingHandler.RegisterValidations()

	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger())
	r.engine.Use(r.instrument())

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  r.config.RateLimit,
		Burst: r.config.RateBurst,
	})

	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1", limiter.RateLimit())
	r.bookingH.RegisterRoutes(api)
	r.healthH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) instrument() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}
