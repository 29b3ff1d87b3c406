package logging

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a sugared zap logger to Logger.
type ZapLogger struct {
	z *zap.Logger
	s *zap.SugaredLogger
}

func NewZapLogger(z *zap.Logger) *ZapLogger {
	return &ZapLogger{z: z, s: z.Sugar()}
}

// Zap exposes the underlying logger for libraries that take *zap.Logger.
func (l *ZapLogger) Zap() *zap.Logger { return l.z }

func (l *ZapLogger) Debug(_ context.Context, msg string, args ...any) {
	l.s.Debugw(msg, args...)
}

func (l *ZapLogger) Info(_ context.Context, msg string, args ...any) {
	l.s.Infow(msg, args...)
}

func (l *ZapLogger) Warn(_ context.Context, msg string, args ...any) {
	l.s.Warnw(msg, args...)
}

func (l *ZapLogger) Error(_ context.Context, msg string, args ...any) {
	l.s.Errorw(msg, args...)
}

func (l *ZapLogger) With(args ...any) Logger {
	s := l.s.With(args...)
	return &ZapLogger{z: s.Desugar(), s: s}
}

func newZap(level string, w io.Writer) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:       "level",
		TimeKey:        "timestamp",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(time.RFC3339),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(w), lvl)
	return zap.New(core)
}
