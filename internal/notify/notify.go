// Package notify is the user-visible notification surface of the engine:
// success, info and error messages that an embedding UI would render as
// toasts. The engine decides what to say and when; implementations decide
// how it looks.
package notify

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	// Color definitions
	green = color.New(color.FgGreen)
	cyan  = color.New(color.FgCyan)
	red   = color.New(color.FgRed, color.Bold)
)

// Notifier receives user-visible notifications in three severities.
// Implementations must be safe for concurrent use.
type Notifier interface {
	Success(format string, a ...any)
	Info(format string, a ...any)
	Error(format string, a ...any)
}

// Console prints notifications to the terminal with color, one per line.
type Console struct{}

// NewConsole creates a terminal-backed notifier.
func NewConsole() *Console {
	return &Console{}
}

// Success prints a success message in green with a checkmark prefix.
func (c *Console) Success(format string, a ...any) {
	green.Printf("✓ %s\n", fmt.Sprintf(format, a...))
}

// Info prints an informational message in cyan.
func (c *Console) Info(format string, a ...any) {
	cyan.Printf("%s\n", fmt.Sprintf(format, a...))
}

// Error prints an error message in red to stderr with a cross prefix.
func (c *Console) Error(format string, a ...any) {
	red.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, a...))
}

// CommandError creates a formatted error message with title, explanation, and
// suggestions. Prints the formatted error to stderr with colors and returns a
// simple error for Cobra (which won't re-print it due to SilenceErrors).
func CommandError(title string, explanation string, suggestions []string) error {
	red.Fprintf(os.Stderr, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(os.Stderr, "%s\n", explanation)
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(os.Stderr, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(os.Stderr, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(os.Stderr, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(os.Stderr, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	return fmt.Errorf("%s", title)
}

// Notification is one recorded message, used by Recorder.
type Notification struct {
	Severity string // "success", "info" or "error"
	Message  string
}

// Recorder captures notifications in memory for assertions in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Notification
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Success records a success notification.
func (r *Recorder) Success(format string, a ...any) { r.record("success", format, a...) }

// Info records an info notification.
func (r *Recorder) Info(format string, a ...any) { r.record("info", format, a...) }

// Error records an error notification.
func (r *Recorder) Error(format string, a ...any) { r.record("error", format, a...) }

func (r *Recorder) record(severity, format string, a ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Notification{
		Severity: severity,
		Message:  fmt.Sprintf(format, a...),
	})
}

// All returns a copy of every recorded notification in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.entries))
	copy(out, r.entries)
	return out
}

// BySeverity returns the messages recorded with the given severity.
func (r *Recorder) BySeverity(severity string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.entries {
		if n.Severity == severity {
			out = append(out, n.Message)
		}
	}
	return out
}

// Contains reports whether any recorded message includes the substring.
func (r *Recorder) Contains(substring string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.entries {
		if strings.Contains(n.Message, substring) {
			return true
		}
	}
	return false
}
