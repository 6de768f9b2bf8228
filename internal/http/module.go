// Package http holds what the router and the domain modules share: the
// Module contract, the route groups handed to modules and the per-request
// scope resolution.
package http

import (
	"context"

	"sales_crm_backend/platform/config"
	"sales_crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups a module may mount on.
type RouterContext struct {
	// Public is /api/v1 without authentication.
	Public *gin.RouterGroup
	// Protected is /api/v1 behind the access token check.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin, restricted to super users.
	Admin *gin.RouterGroup
}

// RouterConfig is the configuration the router reads.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker reports whether a backing store answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled by the composition root and turned into an engine by the
// router package.
type App struct {
	Config  RouterConfig
	Logger  *logger.Logger
	Health  HealthChecker
	Modules []Module
}
