package app

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the component-tagged logger shared by every package.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

// FileLogger writes human-readable lines to w, one named zap logger per
// component.
type FileLogger struct{ z *zap.SugaredLogger }

func NewFileLogger(w io.Writer) FileLogger {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.RFC3339TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel)
	return FileLogger{z: zap.New(core).Sugar()}
}

func (l FileLogger) Infof(component string, format string, args ...interface{}) {
	l.z.Named(component).Infof(format, args...)
}

func (l FileLogger) Errorf(component string, format string, args ...interface{}) {
	l.z.Named(component).Errorf(format, args...)
}

// Sync flushes buffered entries.
func (l FileLogger) Sync() error { return l.z.Sync() }
