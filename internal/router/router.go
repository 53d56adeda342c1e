package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/middleware"
)

// Handler registers routes on a public group, an authenticated admin group,
// or both.
type Handler interface {
	RegisterPublicRoutes(r gin.IRouter)
	RegisterAdminRoutes(r gin.IRouter)
}

// HealthHandler only exposes unauthenticated probes.
type HealthHandler interface {
	RegisterRoutes(r gin.IRouter)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	Timeout        time.Duration
	CacheTTL       time.Duration
	CORS           middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine      *gin.Engine
	auth        *middleware.AuthMiddleware
	publicCache *middleware.ResponseCache
	metrics     *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func New(auth *middleware.AuthMiddleware, logger zerolog.Logger, cfg Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:      engine,
		auth:        auth,
		publicCache: middleware.NewResponseCache(cfg.CacheTTL),
		metrics:     newRouterMetrics(cfg.MetricsPrefix),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		r.metricsMiddleware(),
		middleware.Timeout(cfg.Timeout),
		middleware.CORS(cfg.CORS),
		middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit(),
	)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Setup mounts all application routes. Public routes sit at the root so the
// paths match what the frontend already calls; admin routes are the same
// resources behind authentication.
func (r *Router) Setup(health HealthHandler, handlers ...Handler) {
	health.RegisterRoutes(r.engine)

	public := r.engine.Group("")
	cached := public.Group("")
	cached.Use(r.publicCache.Cache())

	// Admin routes share the public paths and differ only in auth; the
	// router tells them apart by method and full path.
	admin := r.engine.Group("")
	admin.Use(r.auth.Authenticate(), r.auth.RequireAdmin())

	for _, h := range handlers {
		h.RegisterPublicRoutes(public)
		h.RegisterAdminRoutes(admin)
	}
}

// PublicCacheInvalidator is handed to write handlers so admin changes show
// up on the public endpoints immediately.
func (r *Router) PublicCacheInvalidator() func() {
	return r.publicCache.Invalidate
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: prefix,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: prefix,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
