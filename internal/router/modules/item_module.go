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

// ItemModule registers the owner-scoped item CRUD routes. Everything here
// sits behind the session middleware.
type ItemModule struct {
	Handler *handlers.ItemHandler
	Users   repository.UserRepository
	JWT     *helpers.JWTManager
	RDB     *redis.Client
}

func NewItemModule(h *handlers.ItemHandler, users repository.UserRepository, jwt *helpers.JWTManager, rdb *redis.Client) *ItemModule {
	return &ItemModule{Handler: h, Users: users, JWT: jwt, RDB: rdb}
}

func (m *ItemModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/items")
	auth.Use(middleware.Auth(m.Users, m.JWT))
	auth.Use(middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", m.Handler.Create)
		auth.GET("", m.Handler.List)
		auth.PUT("/:id", m.Handler.Update)
		auth.DELETE("/:id", m.Handler.Delete)
	}
}
