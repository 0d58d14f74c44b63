package monitoring

import (
	"errors"

	"github.com/benidevo/mentormatch/internal/config"
)

// Setup initializes the monitoring system from process settings. It
// returns a nil Monitor, nil error when metrics are disabled, so callers
// can treat a disabled Monitor the same as a configured-but-idle one.
func Setup(settings *config.Settings) (*Monitor, error) {
	if !settings.MetricsEnabled {
		return nil, nil
	}

	if settings.IsCloudMode && settings.TokenSecret == "" {
		return nil, errors.New("TOKEN_SECRET is required for metrics in cloud mode")
	}

	cfg := monitorConfig{
		enabled:     settings.MetricsEnabled,
		metricsPort: settings.MetricsPort,
		serviceName: "mentormatch",
		version:     settings.Version,
		cloudMode:   settings.IsCloudMode,
		tokenSecret: settings.TokenSecret,
	}

	if cfg.metricsPort == "" {
		cfg.metricsPort = "9090"
	}
	if cfg.version == "" {
		cfg.version = "dev"
	}

	return newMonitor(cfg)
}
