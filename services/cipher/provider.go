package cipher

import (
	"github.com/cesizen/cesizen/config"
	"github.com/cesizen/cesizen/services/logging"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(ProvideCipherService),
)

func ProvideCipherService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	return NewService(cfg.Cipher.KeyHex, cfg.Cipher.IVLength, logger)
}
