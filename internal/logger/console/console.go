package console

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// Logger implements logger.Instance on charmbracelet/log
type Logger struct {
	logger *log.Logger
}

// Params configures a console Logger
type Params struct {
	Debug  bool
	Writer io.Writer // defaults to stderr
	Prefix string
}

// New creates a console logger
func New(params Params) *Logger {
	level := log.InfoLevel
	if params.Debug {
		level = log.DebugLevel
	}
	w := params.Writer
	if w == nil {
		w = os.Stderr
	}
	return &Logger{
		logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			Level:           level,
			Prefix:          params.Prefix,
		}),
	}
}

// OpenFile creates a logger appending to path, creating parent directories.
// The returned closer releases the file.
func OpenFile(path string, debug bool) (*Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return New(Params{Debug: debug, Writer: f}), f, nil
}

func (c *Logger) Debug(message string, keyvals ...any) {
	c.logger.Debug(message, keyvals...)
}

func (c *Logger) Info(message string, keyvals ...any) {
	c.logger.Info(message, keyvals...)
}

func (c *Logger) Warn(message string, keyvals ...any) {
	c.logger.Warn(message, keyvals...)
}

func (c *Logger) Error(message string, keyvals ...any) {
	c.logger.Error(message, keyvals...)
}
