package observability

import "github.com/agencyops/kanri/internal/config"

// Config carries the observability settings derived from app config.
type Config struct {
	ServiceName  string
	Environment  string
	Version      string
	LogLevel     string
	LogFormat    string
	OtelEnabled  bool
	OTLPEndpoint string
	DebugMode    bool
}

func LoadConfig(cfg config.Config) Config {
	return Config{
		ServiceName:  cfg.AppName,
		Environment:  cfg.Environment,
		Version:      cfg.AppVersion,
		LogLevel:     cfg.LogLevel,
		LogFormat:    cfg.LogFormat,
		OtelEnabled:  cfg.OtelEnabled,
		OTLPEndpoint: cfg.OTLPEndpoint,
		DebugMode:    cfg.Debug(),
	}
}

func (c Config) Debug() bool { return c.DebugMode }
