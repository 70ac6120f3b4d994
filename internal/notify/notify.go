// Package notify delivers short-lived user-facing messages.
package notify

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// DefaultDuration is how long a notification stays visible.
const DefaultDuration = 3 * time.Second

type Notification struct {
	Level    Level
	Message  string
	Duration time.Duration
}

type Notifier interface {
	Notify(n Notification)
}

// LogNotifier writes notifications to a logrus logger.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(notification Notification) {
	entry := n.logger.WithFields(logrus.Fields{
		"kind":     notification.Level,
		"duration": notification.Duration.String(),
	})
	if notification.Level == LevelError {
		entry.Warn(notification.Message)
		return
	}
	entry.Info(notification.Message)
}

// Console prints notifications as single lines, e.g. for a terminal UI.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(notification Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := "✓"
	switch notification.Level {
	case LevelError:
		prefix = "✗"
	case LevelInfo:
		prefix = "i"
	}
	fmt.Fprintf(c.w, "%s %s\n", prefix, notification.Message)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(notification Notification) {
	for _, n := range m {
		n.Notify(notification)
	}
}
