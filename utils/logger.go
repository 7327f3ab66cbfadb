package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
)

var (
	level  = new(slog.LevelVar)
	logger = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))
}

// SetOutput redirects all log lines to w.
func SetOutput(w io.Writer) {
	logger = newLogger(w)
}

func SetDebug(on bool) {
	if on {
		level.Set(slog.LevelDebug)
		return
	}
	level.Set(slog.LevelInfo)
}

func Debug(format string, a ...interface{}) {
	logger.Debug(fmt.Sprintf(format, a...))
}

func Info(format string, a ...interface{}) {
	logger.Info(fmt.Sprintf(format, a...))
}

func Success(format string, a ...interface{}) {
	logger.Info("✓ " + fmt.Sprintf(format, a...))
}

func Warn(format string, a ...interface{}) {
	logger.Warn(fmt.Sprintf(format, a...))
}

func Error(format string, a ...interface{}) {
	logger.Error(fmt.Sprintf(format, a...))
}

func Section(title string) {
	logger.Info(fmt.Sprintf("══════════ %s ══════════", title))
}
