package contract

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string    // trace, debug, info, warn, error
	JSON   bool      // JSON formatter instead of text
	File   string    // Optional rotating log file
	Output io.Writer // Defaults to os.Stderr when File is empty
}

// NewLogger builds a logger from the config. The returned close function
// releases the log file, if any, and is always safe to call.
func NewLogger(lc LogConfig) (*logrus.Logger, func() error) {
	logger := logrus.New()
	logger.SetLevel(GetLevel(lc.Level))

	if lc.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := lc.Output
	if out == nil {
		out = os.Stderr
	}

	if lc.File == "" {
		logger.SetOutput(out)
		return logger, func() error { return nil }
	}

	if !strings.HasSuffix(lc.File, ".log") {
		lc.File += ".log"
	}
	rotating := &lumberjack.Logger{
		Filename: lc.File,
		MaxSize:  50, // megabytes
		Compress: true,
	}
	logger.SetOutput(io.MultiWriter(out, rotating))
	return logger, rotating.Close
}

// GetLevel maps a level name to a logrus level. Unknown names map to info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
