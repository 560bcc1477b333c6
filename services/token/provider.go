package token

import (
	"github.com/cesizen/cesizen/config"
	"github.com/cesizen/cesizen/services/cipher"
	"github.com/cesizen/cesizen/services/logging"
	"github.com/cesizen/cesizen/services/user"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(ProvideTokenService),
)

func ProvideTokenService(db *gorm.DB, cfg *config.Config, cipherSvc *cipher.Service, users *user.Service, logger *logging.Service) *Service {
	service := NewService(db, cfg, cipherSvc, users, logger)

	if cfg.JWT.CleanupInterval.Std() > 0 {
		service.StartCleanupWorker()
	}

	return service
}
