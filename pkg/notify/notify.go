// Package notify is the glue between the modal subsystem and whatever toast
// component presents messages. Notifications are fire-and-forget.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Durations holds the display time per level. Zero values fall back to
// DefaultDurations.
type Durations struct {
	Success time.Duration `mapstructure:"success" yaml:"success"`
	Error   time.Duration `mapstructure:"error" yaml:"error"`
	Warning time.Duration `mapstructure:"warning" yaml:"warning"`
	Info    time.Duration `mapstructure:"info" yaml:"info"`
}

// DefaultDurations returns the display times used when none are configured.
func DefaultDurations() Durations {
	return Durations{
		Success: 3 * time.Second,
		Error:   5 * time.Second,
		Warning: 4 * time.Second,
		Info:    3 * time.Second,
	}
}

// For returns the duration configured for level.
func (d Durations) For(level Level) time.Duration {
	defaults := DefaultDurations()
	pick := func(v, fallback time.Duration) time.Duration {
		if v > 0 {
			return v
		}
		return fallback
	}
	switch level {
	case LevelSuccess:
		return pick(d.Success, defaults.Success)
	case LevelError:
		return pick(d.Error, defaults.Error)
	case LevelWarning:
		return pick(d.Warning, defaults.Warning)
	default:
		return pick(d.Info, defaults.Info)
	}
}

// Notifier presents a message. Implementations must not block.
type Notifier interface {
	Notify(message string, level Level, duration time.Duration)
}

// Func adapts a function to Notifier.
type Func func(message string, level Level, duration time.Duration)

// Notify implements Notifier.
func (f Func) Notify(message string, level Level, duration time.Duration) {
	if f != nil {
		f(message, level, duration)
	}
}

// Nop discards notifications.
type Nop struct{}

// Notify implements Notifier.
func (Nop) Notify(string, Level, time.Duration) {}

// Logger writes notifications to a zap logger. Errors log at error level,
// warnings at warn and everything else at info.
type Logger struct {
	log *zap.Logger
}

// NewLogger wraps log. A nil logger discards output.
func NewLogger(log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{log: log.Named("notify")}
}

// Notify implements Notifier.
func (l *Logger) Notify(message string, level Level, duration time.Duration) {
	fields := []zap.Field{zap.String("level", string(level)), zap.Duration("duration", duration)}
	switch level {
	case LevelError:
		l.log.Error(message, fields...)
	case LevelWarning:
		l.log.Warn(message, fields...)
	default:
		l.log.Info(message, fields...)
	}
}

// Notification is a recorded message.
type Notification struct {
	Message  string
	Level    Level
	Duration time.Duration
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(message string, level Level, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{Message: message, Level: level, Duration: duration})
}

// All returns a copy of every recorded notification.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// ByLevel returns the recorded notifications of one level.
func (r *Recorder) ByLevel(level Level) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, item := range r.items {
		if item.Level == level {
			out = append(out, item)
		}
	}
	return out
}

// Reset drops recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

// Multi fans out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(message string, level Level, duration time.Duration) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, level, duration)
		}
	}
}
