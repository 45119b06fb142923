package observability

import (
	"os"
	"strings"

	"github.com/openconext/teams/internal/config"
	"github.com/openconext/teams/internal/observability/logger"
	"github.com/openconext/teams/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		provideLoggerConfig,
		logger.New,
		metrics.NewHTTPMetrics,
	),
)

func provideLoggerConfig(cfg config.Config) logger.Config {
	return logger.Config{
		ServiceName:   cfg.AppName,
		Environment:   cfg.Environment,
		Version:       cfg.AppVersion,
		Level:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		Format:        strings.TrimSpace(os.Getenv("LOG_FORMAT")),
		IncludeCaller: true,
	}
}
