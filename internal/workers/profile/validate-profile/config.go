package validateprofile

import (
	"time"

	"mobile-forms/internal/common/config"
)

type Config struct {
	Timeout time.Duration
	Locale  string
}

// NewConfig reads the worker entry keyed by WorkerName; the locale is the form default.
func NewConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, WorkerName)
	return &Config{
		Timeout: config.GetDuration(wc.Timeout),
		Locale:  cfg.Form.Locale,
	}
}
