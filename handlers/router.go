package handlers

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"options-pricer/metrics"
	"options-pricer/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Deps is everything the router needs. Health may be nil.
type Deps struct {
	Calculations CalculationStore
	Users        UserStore
	Tokens       Tokens
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	CORSOrigins  []string
	Health       map[string]PingFunc
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Validation errors name fields the way clients send them. The validator
// caches struct metadata, so this has to run before the first bind.
func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// NewRouter wires routes and middleware.
func NewRouter(d Deps) *gin.Engine {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}

	router := gin.New()
	router.Use(
		middleware.RequestLogger(log),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			log.Error("panic recovered", "panic", recovered, "request_id", middleware.RequestID(c))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}),
		middleware.CORS(d.CORSOrigins),
		middleware.Metrics(m),
	)

	pricingHandler := NewPricingHandler(d.Calculations, m)
	authHandler := NewAuthHandler(d.Users, d.Tokens, m)
	if d.BcryptCost != 0 {
		authHandler.bcryptCost = d.BcryptCost
	}

	bs := router.Group("/black-scholes")
	{
		bs.POST("/calculate", pricingHandler.Calculate)
		bs.GET("/calculations", pricingHandler.ListCalculations)
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("", authHandler.CreateUser)
		authGroup.POST("/", authHandler.CreateUser)
		authGroup.POST("/token", authHandler.Token)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.GET("/me", middleware.JWTAuth(d.Tokens), authHandler.Me)
	}

	router.GET("/health", NewHealthHandler(d.Health).Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	return router
}
