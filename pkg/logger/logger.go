// Package logger provides a context-aware structured logger for the whole
// application, built on zap with lumberjack file rotation. The same logger
// satisfies the sqldb-logger interface so database queries land in the
// application log.
package logger

import (
	"context"
	"os"

	"atm-service/internal/config"
	sqldblogger "github.com/simukti/sqldb-logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging interface the application codes against.
type Logger interface {
	// With returns a logger based off the root logger and decorated with
	// the given context and arguments.
	With(ctx context.Context, args ...interface{}) Logger

	Debug(args ...interface{})
	Info(args ...interface{})
	Error(args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// Log lets the logger double as the sqldb-logger sink.
	Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{})

	// Sync flushes any buffered log entries.
	Sync() error
}

type logger struct {
	*zap.SugaredLogger
}

var _ Logger = (*logger)(nil)

// contextKeyFn extracts extra logging args from a context. The accesslog
// package registers the request correlation id here.
type contextKeyFn func(ctx context.Context) []interface{}

var contextFns []contextKeyFn

// RegisterContextFn adds an extractor applied by With to every context.
func RegisterContextFn(fn contextKeyFn) {
	contextFns = append(contextFns, fn)
}

// New creates a logger configured per cfg. Logs always go to stdout;
// a rotating file sink is added when a path is configured.
func New(cfg *config.Config) Logger {
	level := zap.InfoLevel
	if err := level.Set(cfg.Logger.Level); err != nil {
		level = zap.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if cfg.Logger.Path != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Logger.Path,
			MaxSize:    cfg.Logger.MaxSizeMB,
			MaxBackups: cfg.Logger.MaxBackups,
			MaxAge:     cfg.Logger.MaxAgeDays,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)

	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	return &logger{l.Sugar()}
}

// NewWithZap creates a logger over an existing zap logger.
func NewWithZap(l *zap.Logger) Logger {
	return &logger{l.Sugar()}
}

// NewNop returns a logger that discards everything. For tests.
func NewNop() Logger {
	return &logger{zap.NewNop().Sugar()}
}

func (l *logger) With(ctx context.Context, args ...interface{}) Logger {
	if ctx != nil {
		for _, fn := range contextFns {
			args = append(args, fn(ctx)...)
		}
	}
	if len(args) > 0 {
		return &logger{l.SugaredLogger.With(args...)}
	}
	return l
}

// Log implements the sqldb-logger sink on top of zap.
func (l *logger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	args := make([]interface{}, 0, len(data)*2)
	for k, v := range data {
		args = append(args, k, v)
	}

	log := l.With(ctx, args...).(*logger)

	switch level {
	case sqldblogger.LevelError:
		log.SugaredLogger.Error(msg)
	case sqldblogger.LevelInfo:
		log.SugaredLogger.Info(msg)
	default:
		log.SugaredLogger.Debug(msg)
	}
}
