package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"vregistry/internal/authz"
	"vregistry/internal/handlers"
	"vregistry/internal/middleware"
)

type Deps struct {
	Auth           middleware.UserResolver
	Cache          *redis.Client // может быть nil, тогда лимит входа отключён
	LoginMaxPerMin int
	Log            *zap.Logger
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.VerifiedUserHandler
	VehicleHandler *handlers.VerifiedVehicleHandler
	DisableSwagger bool
}

func SetupRoutes(r *gin.Engine, d Deps) *gin.Engine {
	// ---- public
	r.GET("/healthz", handlers.Healthz)
	if !d.DisableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	r.POST("/login", middleware.LoginRateLimit(d.Cache, d.LoginMaxPerMin, d.Log), d.AuthHandler.Login)
	r.POST("/refresh", d.AuthHandler.Refresh)

	// ---- protected
	authed := r.Group("", middleware.AuthMiddleware(d.Auth))
	authed.GET("/me", d.AuthHandler.Me)

	registry := authed.Group("",
		middleware.RequireRoles(authz.Known...),
		middleware.ReadOnlyGuard(),
	)

	// VERIFIED USERS
	users := registry.Group("/verified-users")
	{
		users.GET("/", d.UserHandler.List)
		users.POST("/create", d.UserHandler.Create)
		users.PUT("/update/:id", d.UserHandler.Update)
		users.DELETE("/delete/:id", d.UserHandler.Delete)
		users.GET("/get/:id", d.UserHandler.Get)
		users.GET("/get-by-value/:value", d.UserHandler.GetByValue)
	}

	// VERIFIED VEHICLES
	vehicles := registry.Group("/verified-vehicles")
	{
		vehicles.GET("/", d.VehicleHandler.List)
		vehicles.POST("/create", d.VehicleHandler.Create)
		vehicles.PUT("/update/:id", d.VehicleHandler.Update)
		vehicles.DELETE("/delete/:id", d.VehicleHandler.Delete)
		vehicles.GET("/get/:id", d.VehicleHandler.Get)
		vehicles.GET("/get-by-value/:value", d.VehicleHandler.GetByValue)
	}

	return r
}
