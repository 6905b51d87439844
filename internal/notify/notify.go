// Package notify carries transient user-facing outcome signals.
package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Kind is the kind of a notification.
type Kind int

const (
	// Success reports a completed mutation.
	Success Kind = iota

	// Failure reports a failed fetch or mutation.
	Failure
)

func (k Kind) String() string {
	switch k {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Notification is a single transient signal.
type Notification struct {
	Kind    Kind
	Message string
	Err     error // set for failures
}

// Notifier receives notifications. Implementations must be safe for
// concurrent use: fetch failures are reported from effect goroutines.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Succeeded builds a success notification.
func Succeeded(msg string) Notification {
	return Notification{Kind: Success, Message: msg}
}

// Failed builds a failure notification.
func Failed(msg string, err error) Notification {
	return Notification{Kind: Failure, Message: msg, Err: err}
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// All returns a copy of the recorded notifications in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.all))
	copy(out, r.all)
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = nil
}

// WriterNotifier prints successes to out and failures to errOut.
type WriterNotifier struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer
	quiet   bool
	success lipgloss.Style
	failure lipgloss.Style
}

// NewWriterNotifier creates a notifier writing to the given streams.
// When quiet is set, successes are not printed. Failures always are.
func NewWriterNotifier(out, errOut io.Writer, quiet bool, success, failure lipgloss.Style) *WriterNotifier {
	return &WriterNotifier{
		out:     out,
		errOut:  errOut,
		quiet:   quiet,
		success: success,
		failure: failure,
	}
}

// Notify implements Notifier.
func (w *WriterNotifier) Notify(n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch n.Kind {
	case Success:
		if w.quiet {
			return
		}
		fmt.Fprintln(w.out, w.success.Render(n.Message))
	case Failure:
		line := "error: " + n.Message
		if n.Err != nil {
			line += ": " + n.Err.Error()
		}
		fmt.Fprintln(w.errOut, w.failure.Render(line))
	}
}
