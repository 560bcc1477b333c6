package main

import (
	"github.com/cesizen/cesizen/config"
	"github.com/cesizen/cesizen/database"
	"github.com/cesizen/cesizen/handlers"
	"github.com/cesizen/cesizen/middleware/ratelimit"
	"github.com/cesizen/cesizen/server"
	"github.com/cesizen/cesizen/services/cipher"
	"github.com/cesizen/cesizen/services/logging"
	"github.com/cesizen/cesizen/services/password"
	"github.com/cesizen/cesizen/services/token"
	"github.com/cesizen/cesizen/services/user"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		config.Module,
		logging.Module,
		fx.Provide(func() *database.ModelsOption {
			return database.WithModels(&user.User{}, &token.RefreshToken{})
		}),
		database.Module,
		cipher.Module,
		password.Module,
		user.Module,
		token.Module,
		ratelimit.Module,
		server.Module,
		handlers.Module,
	).Run()
}
