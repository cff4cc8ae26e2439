package core

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger returns the process-wide logger used by every server component,
// configured from the log level and (optional) log file path in cfg.
func NewLogger(cfg *Config) (*logrus.Logger, error) {
	logger := logrus.New()

	lvl, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}
	logger.SetLevel(lvl)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if cfg.LogFilePath != "" {
		f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", cfg.LogFilePath, err)
		}
		logger.SetOutput(f)
	}

	return logger, nil
}
