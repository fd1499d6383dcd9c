package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	appuser "github.com/oksasatya/go-user-lifecycle/internal/application"
	handlers "github.com/oksasatya/go-user-lifecycle/internal/interface/http"
	"github.com/oksasatya/go-user-lifecycle/internal/router/modules"
)

// Deps are the collaborators the HTTP modules need. Redis may be nil, which disables rate limiting.
type Deps struct {
	Service           *appuser.Service
	Redis             *redis.Client
	Logger            *logrus.Logger
	VerifyRedirectURL string
	DebugMetrics      bool
}

// InitModules builds the handlers, registers the health probe on the engine
// and adds every feature module to the registry.
func InitModules(r *Registry, d Deps) {
	r.Engine.GET("/health_check.html", handlers.HealthCheck)

	userHandler := handlers.NewUserHandler(d.Service, d.Logger, d.VerifyRedirectURL)
	r.Add(modules.NewUserModule(userHandler, d.Redis))
	if d.DebugMetrics {
		r.Add(modules.NewDebugModule(d.Redis))
	}
}
