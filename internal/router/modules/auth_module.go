package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"lifetrack-api/internal/domain/repository"
	handlers "lifetrack-api/internal/interface/http"
	"lifetrack-api/internal/interface/middleware"
	"lifetrack-api/pkg/helpers"
)

// AuthModule registers the authentication surface.
// Public: register, login, logout, refresh, Google OAuth start/callback.
// Protected: me, logout/all.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
	RDB     *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Users: users, JWT: jwt, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Credential endpoints take the tightest per-IP limits.
	registerLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	refreshLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)

	rg.GET("/auth/google", m.Handler.GoogleStart)
	rg.GET("/auth/google/callback", m.Handler.GoogleCallback)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	auth.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.GET("/auth/me", m.Handler.Me)
		auth.POST("/auth/logout/all", m.Handler.LogoutAll)
	}
}
