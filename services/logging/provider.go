package logging

import (
	"context"

	"github.com/cesizen/cesizen/config"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewLoggingService),
	fx.Invoke(func(lc fx.Lifecycle, logger *Service) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				// Sync can fail on stdout; buffered entries still flush.
				_ = logger.Sync()
				return nil
			},
		})
	}),
)

func NewLoggingService(cfg *config.Config) (*Service, error) {
	return NewService(Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		OutputPath: cfg.Log.Output,
	})
}
