package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/medagenda/scheduler-api/internal/handler/prometheus"
	"github.com/medagenda/scheduler-api/internal/middleware"
)

// Handler registers its routes on an API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine       *gin.Engine
	appointmentH Handler
	doctorH      Handler
	patientH     Handler
	clinicH      Handler
	healthH      Handler
	promH        *prometheus.Handler
}

type RouterConfig struct {
	RateLimit  rate.Limit
	RateBurst  int
	CORSConfig middleware.CORSConfig
}

func NewRouter(
	appointmentH Handler,
	doctorH Handler,
	patientH Handler,
	clinicH Handler,
	healthH Handler,
	promH *prometheus.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:       engine,
		appointmentH: appointmentH,
		doctorH:      doctorH,
		patientH:     patientH,
		clinicH:      clinicH,
		healthH:      healthH,
		promH:        promH,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		promH.Middleware(),
	)

	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	r.engine.GET("/metrics", r.promH.Handler())

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.healthH.RegisterRoutes(api)
	r.appointmentH.RegisterRoutes(api)
	r.doctorH.RegisterRoutes(api)
	r.patientH.RegisterRoutes(api)
	r.clinicH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
