// Package log is a structured logger built on zap. The package-level helpers
// write through a process-wide logger that Init replaces.
package log

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the logging capabilities used across krs.
type Logger interface {
	Debugw(msg string, keyvals ...any)
	Infow(msg string, keyvals ...any)
	Warnw(msg string, keyvals ...any)
	Errorw(err error, msg string, keyvals ...any)
	WithValues(keyvals ...any) Logger
	Sync()
}

type zapLogger struct {
	z *zap.Logger
}

var _ Logger = (*zapLogger)(nil)

var (
	mu  sync.Mutex
	std = New(NewOptions())
)

// Init initializes the default logger with the given options.
func Init(opts *Options) {
	mu.Lock()
	defer mu.Unlock()

	std = New(opts)
}

// New creates a logger from opts. Invalid options fall back to the defaults.
func New(opts *Options) *zapLogger {
	if opts == nil {
		opts = NewOptions()
	}

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(opts.Level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.MessageKey = "message"
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	encoderConfig.EncodeDuration = func(d time.Duration, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendFloat64(float64(d) / float64(time.Millisecond))
	}
	if opts.Format == consoleFormat && opts.EnableColor {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	cfg := &zap.Config{
		DisableCaller:     opts.DisableCaller,
		DisableStacktrace: opts.DisableStacktrace,
		Level:             zap.NewAtomicLevelAt(zapLevel),
		Encoding:          opts.Format,
		EncoderConfig:     encoderConfig,
		OutputPaths:       opts.OutputPaths,
		ErrorOutputPaths:  []string{"stderr"},
	}

	z, err := cfg.Build(zap.AddStacktrace(zapcore.PanicLevel), zap.AddCallerSkip(2))
	if err != nil {
		z = zap.NewNop()
	}
	zap.RedirectStdLog(z)

	return &zapLogger{z: z}
}

// Std returns the default logger.
func Std() Logger {
	mu.Lock()
	defer mu.Unlock()
	return std
}

func Sync() { Std().Sync() }

func (l *zapLogger) Sync() { _ = l.z.Sync() }

func Debugw(msg string, keyvals ...any) { Std().Debugw(msg, keyvals...) }

func (l *zapLogger) Debugw(msg string, keyvals ...any) { l.z.Sugar().Debugw(msg, keyvals...) }

func Infow(msg string, keyvals ...any) { Std().Infow(msg, keyvals...) }

func (l *zapLogger) Infow(msg string, keyvals ...any) { l.z.Sugar().Infow(msg, keyvals...) }

func Warnw(msg string, keyvals ...any) { Std().Warnw(msg, keyvals...) }

func (l *zapLogger) Warnw(msg string, keyvals ...any) { l.z.Sugar().Warnw(msg, keyvals...) }

func Errorw(err error, msg string, keyvals ...any) { Std().Errorw(err, msg, keyvals...) }

func (l *zapLogger) Errorw(err error, msg string, keyvals ...any) {
	l.z.Sugar().Errorw(msg, append(keyvals, "err", err)...)
}

// WithValues returns a logger that always carries keyvals.
func WithValues(keyvals ...any) Logger { return Std().WithValues(keyvals...) }

func (l *zapLogger) WithValues(keyvals ...any) Logger {
	// One less frame: calls on the returned logger don't go through a package-level helper.
	return &zapLogger{z: l.z.Sugar().With(keyvals...).Desugar().WithOptions(zap.AddCallerSkip(-1))}
}
