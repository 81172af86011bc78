package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  string // falls back to LOG_LEVEL, then "info"
	Format string // "text" or "json"; falls back to LOG_FORMAT
	Output io.Writer
}

func New(opts Options) *logrus.Logger {
	log := logrus.New()

	lvl := opts.Level
	if lvl == "" {
		lvl = os.Getenv("LOG_LEVEL")
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(lvl))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	format := opts.Format
	if format == "" {
		format = os.Getenv("LOG_FORMAT")
	}
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if opts.Output != nil {
		log.SetOutput(opts.Output)
	} else {
		log.SetOutput(os.Stdout)
	}
	return log
}

// Discard returns a logger that drops everything; used by tests and tools.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
