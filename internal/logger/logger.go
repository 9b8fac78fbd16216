// Package logger dispatches log calls to the backends registered with Init.
// Every function is a no-op until Init has been called.
package logger

import "sync"

// Instance defines the interface for logging backends
type Instance interface {
	Debug(message string, keyvals ...any)
	Info(message string, keyvals ...any)
	Warn(message string, keyvals ...any)
	Error(message string, keyvals ...any)
}

// Logger holds multiple logging backends and dispatches log calls to all of them
type Logger struct {
	instances []Instance
}

var (
	mu        sync.RWMutex
	singleton *Logger
)

// Init installs the global logger with one or more backends.
// Calling Init with no backends disables logging.
func Init(instances ...Instance) {
	mu.Lock()
	defer mu.Unlock()
	if len(instances) == 0 {
		singleton = nil
		return
	}
	singleton = &Logger{instances: instances}
}

func each(fn func(Instance)) {
	mu.RLock()
	l := singleton
	mu.RUnlock()
	if l == nil {
		return
	}
	for _, instance := range l.instances {
		fn(instance)
	}
}

// Debug writes a message at DEBUG level to all configured backends
func Debug(message string, keyvals ...any) {
	each(func(i Instance) { i.Debug(message, keyvals...) })
}

// Info writes a message at INFO level to all configured backends
func Info(message string, keyvals ...any) {
	each(func(i Instance) { i.Info(message, keyvals...) })
}

// Warn writes a message at WARN level to all configured backends
func Warn(message string, keyvals ...any) {
	each(func(i Instance) { i.Warn(message, keyvals...) })
}

// Error writes a message at ERROR level to all configured backends
func Error(message string, keyvals ...any) {
	each(func(i Instance) { i.Error(message, keyvals...) })
}
