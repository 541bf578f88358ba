//go:build !linux

package system

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EnterGraphicsConsole is a no-op where there is no Linux virtual console.
func EnterGraphicsConsole(l logger) (restore func()) {
	if l != nil {
		l.Infof("tty", "console graphics mode not supported on this platform")
	}
	return func() {}
}
