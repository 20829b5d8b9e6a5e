package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init configures the shared logger from environment values. Call once at
// startup before anything logs.
func Init() {
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if os.Getenv("ENV") == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// L returns the shared logger instance.
func L() *logrus.Logger {
	return log
}

// WithField is a convenience wrapper around the shared logger.
func WithField(key string, value interface{}) *logrus.Entry {
	return log.WithField(key, value)
}

// WithError is a convenience wrapper around the shared logger.
func WithError(err error) *logrus.Entry {
	return log.WithError(err)
}
