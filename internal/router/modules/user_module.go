package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-user-lifecycle/internal/interface/http"
	"github.com/oksasatya/go-user-lifecycle/internal/interface/middleware"
)

// UserModule wires the user HTTP handlers into routes under the given group (usually /api).
// Public: POST /users, GET /users/:id, GET /users/:id/verify, GET /users/search
// Identified by EMAIL header: GET /users/me, PUT /users/me
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	createLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIP(), nil)        // 10 req/min per IP
	verifyLimiter := middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByIPAndPath(), nil) // 30 req/min per IP
	searchLimiter := middleware.RateLimit(m.Redis, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/users", createLimiter, m.Handler.Create)
	rg.GET("/users/search", searchLimiter, m.Handler.Search)

	me := rg.Group("/users/me")
	me.Use(
		middleware.RequireEmail(),
		middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByEmail(), nil),
	)
	{
		me.GET("", m.Handler.GetMe)
		me.PUT("", m.Handler.UpdateMe)
	}

	rg.GET("/users/:id", m.Handler.GetByID)
	rg.GET("/users/:id/verify", verifyLimiter, m.Handler.Verify)
}
