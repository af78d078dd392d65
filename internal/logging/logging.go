// Package logging builds the process logger from configuration.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to out with the given level and format
// ("text" or "json").
func New(level, format string, out io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log := logrus.New()
	switch format {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	log.SetLevel(lvl)
	log.SetOutput(out)
	return log, nil
}

// Install makes log the package-level logrus logger as well, so components
// that log through logrus.WithField share its level and format.
func Install(log *logrus.Logger) {
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())
	logrus.SetOutput(log.Out)
}
