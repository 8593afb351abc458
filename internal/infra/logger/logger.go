package logger

import (
	"os"
	"strings"

	"coworking_compliance/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger instance.
var Log = logrus.New()

// Init configures level and format from application configuration. JSON in
// production and staging, colored text elsewhere.
func Init(cfg *config.AppConfig) {
	Log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		Log.Warnf("Invalid log level %q, defaulting to info: %v", cfg.LogLevel, err)
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	switch cfg.Environment {
	case "production", "staging":
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}
}
