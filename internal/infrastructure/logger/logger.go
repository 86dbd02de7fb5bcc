package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger writing to stderr, or to logFile when one is given.
// The level name is case-insensitive; an unknown name disables level filtering.
func New(logLevel, logFile string) (*Logger, error) {
	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	level := ParseLevel(logLevel)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var core zapcore.Core
	if logFile != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
		core = zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level)
	} else {
		consoleWriter := zapcore.Lock(zapcore.AddSync(os.Stderr))
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), consoleWriter, level)
	}

	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		Named("exbackup")
	return &Logger{zapLogger.Sugar()}, nil
}

// FromZap wraps an existing zap logger, mostly for tests using zaptest/observer.
func FromZap(l *zap.Logger) *Logger {
	return &Logger{l.Sugar()}
}

func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

// levelAliases maps the level names of Python's logging module onto zap levels.
var levelAliases = map[string]zapcore.Level{
	"notset":   zapcore.DebugLevel,
	"warning":  zapcore.WarnLevel,
	"critical": zapcore.FatalLevel,
}

func ParseLevel(name string) zapcore.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if level, ok := levelAliases[name]; ok {
		return level
	}

	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.DebugLevel
	}
	return level
}

func (l *Logger) Close() {
	_ = l.Sync()
}
