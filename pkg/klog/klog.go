// Package klog extends the standard library's log package to support
// multiple independently-leveled loggers, the way a kernel fans the same
// event out to a serial console, an in-memory ring (dmesg) and, in tests, a
// buffer nothing else observes. Call AddLogger to register a destination,
// then use the package-level Debug/Info/Warn/Error/Fatal functions to send
// to every registered logger at or above its own level.
package klog

import (
	"errors"
	golog "log"
	"os"
	"runtime"
	"sync"
)

var (
	mu      sync.RWMutex
	loggers = make(map[string]*kernlogger)
)

type writer interface {
	Write([]byte) (int, error)
}

// AddLogger registers a named logger that writes events at level or higher
// to out. Color enables ANSI escapes, which AddLogger disables automatically
// on Windows regardless of the argument.
func AddLogger(name string, out writer, level Level, color bool) {
	mu.Lock()
	defer mu.Unlock()

	if runtime.GOOS == "windows" {
		color = false
	}
	loggers[name] = &kernlogger{
		out:   golog.New(out, "", golog.LstdFlags),
		level: level,
		color: color,
	}
}

// DelLogger removes a previously registered logger.
func DelLogger(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(loggers, name)
}

// SetLevel changes the severity threshold for a named logger.
func SetLevel(name string, level Level) error {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		return errors.New("klog: no such logger: " + name)
	}
	l.level = level
	return nil
}

// WillLog reports whether any registered logger would emit at level. Guard
// expensive format arguments with this before calling Debug in a hot path.
func WillLog(level Level) bool {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.level <= level {
			return true
		}
	}
	return false
}

// AddFilter suppresses any future message containing substr on the named
// logger, useful for silencing a noisy recurring line during a long boot.
func AddFilter(name, substr string) error {
	mu.Lock()
	defer mu.Unlock()

	l, ok := loggers[name]
	if !ok {
		return errors.New("klog: no such logger: " + name)
	}
	for _, f := range l.filters {
		if f == substr {
			return nil
		}
	}
	l.filters = append(l.filters, substr)
	return nil
}

func dispatch(level Level, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, l := range loggers {
		if l.level <= level {
			l.log(level, format, args...)
		}
	}
}

func Debug(format string, args ...interface{}) { dispatch(LevelDebug, format, args...) }
func Info(format string, args ...interface{})  { dispatch(LevelInfo, format, args...) }
func Warn(format string, args ...interface{})  { dispatch(LevelWarn, format, args...) }
func Error(format string, args ...interface{}) { dispatch(LevelError, format, args...) }

// Fatal logs at LevelFatal and terminates the process, matching the standard
// library's log.Fatal. Used only by host-side command entry points; kernel
// subsystems should return an error instead and let the caller decide.
func Fatal(format string, args ...interface{}) {
	dispatch(LevelFatal, format, args...)
	os.Exit(1)
}
