package password

import (
	"github.com/cesizen/cesizen/config"
	"github.com/cesizen/cesizen/services/logging"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ProvidePasswordService),
)

func ProvidePasswordService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(cfg.Auth.BcryptCost, logger)
}
