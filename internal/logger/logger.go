// Package logger writes the engine's diagnostics to a rotated file under the
// config directory. Packages log through a named Component so every line
// carries the subsystem it came from ("cadence/mirror", "cadence/tracker").
package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	rootPrefix = "cadence"
	fileName   = "cadence.log"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	mu      sync.RWMutex
	logFile string
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
	// Stderr receives a copy of every line in debug mode; nil means os.Stderr
	Stderr io.Writer
}

// Init opens the rotated log file and installs the global logger. Outside
// debug mode only warnings and errors are kept.
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	path := filepath.Join(logDir, fileName)
	var writer io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writer = io.MultiWriter(stderr, writer)
	}

	install(log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          rootPrefix,
	}), path)
	return nil
}

// Capture routes all logging at or above level to w until the returned
// function restores the previous logger.
func Capture(w io.Writer, level log.Level) (restore func()) {
	mu.RLock()
	prev, prevFile := Logger, logFile
	mu.RUnlock()

	install(log.NewWithOptions(w, log.Options{Level: level, Prefix: rootPrefix}), "")
	return func() { install(prev, prevFile) }
}

// File is the path of the active log file, empty before Init
func File() string {
	mu.RLock()
	defer mu.RUnlock()
	return logFile
}

func install(l *log.Logger, path string) {
	mu.Lock()
	Logger = l
	logFile = path
	mu.Unlock()
}

func current() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return Logger
}

// Component is a named logging scope. The zero value logs under the root prefix.
// It resolves the global logger on every call, so package-level components
// declared before Init still pick up the configured output.
type Component struct {
	name string
}

// For returns the component for a subsystem
func For(name string) Component {
	return Component{name: name}
}

func (c Component) logger() *log.Logger {
	l := current()
	if l == nil || c.name == "" {
		return l
	}
	return l.WithPrefix(rootPrefix + "/" + c.name)
}

func (c Component) Debug(msg string, keyvals ...interface{}) {
	if l := c.logger(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

func (c Component) Info(msg string, keyvals ...interface{}) {
	if l := c.logger(); l != nil {
		l.Info(msg, keyvals...)
	}
}

func (c Component) Warn(msg string, keyvals ...interface{}) {
	if l := c.logger(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

func (c Component) Error(msg string, keyvals ...interface{}) {
	if l := c.logger(); l != nil {
		l.Error(msg, keyvals...)
	}
}

var root Component

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) { root.Debug(msg, keyvals...) }

// Info logs an info message
func Info(msg string, keyvals ...interface{}) { root.Info(msg, keyvals...) }

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) { root.Warn(msg, keyvals...) }

// Error logs an error message
func Error(msg string, keyvals ...interface{}) { root.Error(msg, keyvals...) }

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...interface{}) {
	if l := current(); l != nil {
		l.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
