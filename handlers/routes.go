package handlers

import (
	"github.com/cesizen/cesizen/config"
	jwtmw "github.com/cesizen/cesizen/middleware/jwt"
	"github.com/cesizen/cesizen/middleware/ratelimit"
	"github.com/cesizen/cesizen/server"
	"github.com/cesizen/cesizen/services/token"
	"github.com/cesizen/cesizen/services/user"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewAuthHandler),
	fx.Provide(NewAccountHandler),
	fx.Invoke(RegisterRoutes),
)

func RegisterRoutes(srv *server.Server, cfg *config.Config, store ratelimit.Store, auth *AuthHandler, account *AccountHandler, tokens *token.Service) {
	authGroup := srv.Group("/auth")

	if cfg.RateLimit.Enabled {
		authGroup.Use(ratelimit.Middleware(&ratelimit.Config{
			Store:  store,
			Rate:   cfg.RateLimit.Rate,
			Period: cfg.RateLimit.Period.Std(),
		}))
	}

	authGroup.POST("/register", auth.Register)
	authGroup.POST("/login", auth.Login)
	authGroup.POST("/refresh", auth.Refresh)
	authGroup.POST("/logout", auth.Logout)

	me := srv.Group("/me", jwtmw.RequireJWT(tokens))
	me.GET("", account.Me)
	me.GET("/sessions", account.Sessions)

	admin := srv.Group("/admin", jwtmw.RequireJWT(tokens), jwtmw.RequireRole(user.RoleAdmin))
	admin.PATCH("/users/:id/active", account.SetUserActive)
}
