package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"crm-backend/internal/config"
)

var log *logrus.Logger

// Initialize builds the shared logger from config: level, json/text format,
// and optional rotated file output alongside stdout.
func Initialize(cfg config.LogConfig) error {
	log = logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	if cfg.FilePath != "" {
		logDir := filepath.Dir(cfg.FilePath)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}

		rotateLogger := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}

		log.SetOutput(io.MultiWriter(os.Stdout, rotateLogger))
	}

	return nil
}

// Get returns the shared logger, falling back to a plain logrus instance if
// Initialize was never called (tests, tooling).
func Get() *logrus.Logger {
	if log == nil {
		log = logrus.New()
	}
	return log
}
