package user

import (
	"github.com/cesizen/cesizen/services/cipher"
	"github.com/cesizen/cesizen/services/logging"
	"github.com/cesizen/cesizen/services/password"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Options(
	fx.Provide(ProvideUserService),
)

func ProvideUserService(db *gorm.DB, cipherSvc *cipher.Service, passwords *password.Service, logger *logging.Service) *Service {
	return NewService(db, cipherSvc, passwords, logger)
}
