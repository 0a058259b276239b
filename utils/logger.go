package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  = logrus.New()
	ErrorLogger = logrus.New()
)

// InitLogger configures both loggers. level is a logrus level name ("debug",
// "info", ...); format "json" switches to the JSON formatter.
func InitLogger(level, format string) {
	configureLogger(InfoLogger, os.Stdout, level, format)
	configureLogger(ErrorLogger, os.Stderr, "warn", format)
}

func configureLogger(l *logrus.Logger, out io.Writer, level, format string) {
	l.SetOutput(out)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
}
