// Package log wraps log/slog with a component attribute so every
// record names the part of the ledger it came from.
package log

import (
	"log/slog"
	"os"
)

// Standard component names.
const (
	ComponentApp      = "app"
	ComponentCLI      = "cli"
	ComponentStorage  = "storage"
	ComponentLedger   = "ledger"
	ComponentAudit    = "audit"
	ComponentBudget   = "budget"
	ComponentSearch   = "search"
	ComponentAlerts   = "alerts"
	ComponentExport   = "export"
)

// Logger is a slog.Logger tagged with a component.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration.
type Config struct {
	Level   slog.Level
	Handler slog.Handler
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{Level: slog.LevelInfo}
}

// New creates a new logger with the given configuration.
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: config.Level,
		})
	}

	return &Logger{
		Logger:    slog.New(handler).With("component", ComponentApp),
		component: ComponentApp,
	}
}

// WithComponent returns a logger tagged with a specific component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With("component", component),
		component: component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs the logger as the process-wide slog default, so
// packages logging through slog inherit the handler.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}
