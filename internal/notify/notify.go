// Package notify reports style operations to the user through a
// charmbracelet logger.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/styles/pkg/types"
)

// NewLogger returns a logger writing to w with short timestamps.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ParseLevel maps a configured level name to a log level. Unknown names
// fall back to info.
func ParseLevel(name string) log.Level {
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Logger implements types.Notifier. Messages are also kept in memory so a
// caller can print them after a command finishes.
type Logger struct {
	logger *log.Logger

	mu       sync.Mutex
	messages []string
}

var _ types.Notifier = (*Logger)(nil)

// New wraps l.
func New(l *log.Logger) *Logger {
	return &Logger{logger: l}
}

// Log reports an informational message.
func (n *Logger) Log(msg string) {
	n.record(msg)
	n.logger.Info(msg)
}

// Errorf reports a failure.
func (n *Logger) Errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	n.record(msg)
	n.logger.Error(msg)
}

// Messages returns every message reported so far, oldest first.
func (n *Logger) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func (n *Logger) record(msg string) {
	n.mu.Lock()
	n.messages = append(n.messages, msg)
	n.mu.Unlock()
}

// View implements types.Redrawer for a headless process: redraw requests
// are counted and logged at debug level.
type View struct {
	logger *log.Logger

	mu      sync.Mutex
	redraws int
}

var _ types.Redrawer = (*View)(nil)

// NewView returns a View logging to l.
func NewView(l *log.Logger) *View {
	return &View{logger: l}
}

// QueueRedraw records a redraw request.
func (v *View) QueueRedraw() {
	v.mu.Lock()
	v.redraws++
	v.mu.Unlock()
	v.logger.Debug("redraw queued")
}

// Redraws returns the number of redraw requests.
func (v *View) Redraws() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.redraws
}
