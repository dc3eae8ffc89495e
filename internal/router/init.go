package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"lifetrack-api/config"
	"lifetrack-api/internal/application"
	"lifetrack-api/internal/infrastructure/mongodb"
	"lifetrack-api/internal/infrastructure/oauth"
	handlers "lifetrack-api/internal/interface/http"
	"lifetrack-api/internal/router/modules"
	"lifetrack-api/pkg/helpers"
)

// Deps are the shared components constructed once in main and passed down
// explicitly; modules never reach for process-global state.
type Deps struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	Mongo  *mongo.Database
	RDB    *redis.Client
	JWT    *helpers.JWTManager
	Google *oauth.GoogleStrategy
}

// InitModules wires repositories, services, and handlers, and registers all
// feature modules with the router registry.
func InitModules(r *Registry, d Deps) {
	users := mongodb.NewUserRepository(d.Mongo)
	items := mongodb.NewItemRepository(d.Mongo)

	authSvc := application.NewAuthService(users, d.JWT, d.Logger)
	itemSvc := application.NewItemService(items, d.Logger)

	authHandler := handlers.NewAuthHandler(authSvc, d.Google, d.RDB, d.Logger, d.Cfg)
	userHandler := handlers.NewUserHandler(authSvc, d.Logger)
	itemHandler := handlers.NewItemHandler(itemSvc, d.Logger)

	r.Add(modules.NewAuthModule(authHandler, users, d.JWT, d.RDB))
	r.Add(modules.NewUserModule(userHandler, users, d.JWT, d.RDB))
	r.Add(modules.NewItemModule(itemHandler, users, d.JWT, d.RDB))
}
