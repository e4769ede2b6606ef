// Package logging builds the logr.Logger used by csvtok.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// traceLevel enables logr V(2) messages through zapr.
const traceLevel = zapcore.Level(-2)

// New returns a zap-backed logger writing to w at the given level string.
// "debug" enables the reader's V(1) diagnostics and "trace" adds V(2).
func New(level string, w io.Writer) (logr.Logger, error) {
	lower := strings.ToLower(level)
	encCfg := zap.NewProductionEncoderConfig()
	var zapLevel zapcore.Level
	switch lower {
	case "trace":
		encCfg = zap.NewDevelopmentEncoderConfig()
		zapLevel = traceLevel
	case "debug":
		encCfg = zap.NewDevelopmentEncoderConfig()
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return logr.Logger{}, fmt.Errorf("unknown log level %q (expected trace, debug, info, warn, or error)", level)
	}
	atomic := zap.NewAtomicLevelAt(zapLevel)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), atomic)
	return zapr.NewLogger(zap.New(core)), nil
}
