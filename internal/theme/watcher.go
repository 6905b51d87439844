package theme

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Watcher reports the system-level dark-mode preference.
type Watcher interface {
	// Dark returns the current preference.
	Dark() bool

	// Subscribe calls fn whenever the preference changes.
	// The returned function removes the subscription.
	Subscribe(fn func(dark bool)) (cancel func())
}

// DefaultPollInterval is how often TerminalWatcher samples the terminal.
const DefaultPollInterval = 5 * time.Second

// subscribers is a set of change callbacks.
type subscribers struct {
	mu   sync.Mutex
	fns  map[int]func(bool)
	next int
}

func (s *subscribers) add(fn func(bool)) (id int, first bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = map[int]func(bool){}
	}
	id = s.next
	s.next++
	s.fns[id] = fn
	return id, len(s.fns) == 1
}

func (s *subscribers) remove(id int) (last bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fns, id)
	return len(s.fns) == 0
}

func (s *subscribers) emit(dark bool) {
	s.mu.Lock()
	fns := make([]func(bool), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(dark)
	}
}

// TerminalWatcher derives the preference from the terminal background.
// While anything is subscribed it polls on an interval and emits changes.
type TerminalWatcher struct {
	detect   func() bool
	interval time.Duration
	subs     subscribers

	mu   sync.Mutex
	dark bool
	stop chan struct{}
}

// RendererDetector returns a detect function that asks a new renderer on
// every call. A Renderer queries the terminal background only once.
func RendererDetector(newRenderer func() *lipgloss.Renderer) func() bool {
	return func() bool {
		return newRenderer().HasDarkBackground()
	}
}

// StdoutDetector samples the background of the terminal behind stdout.
func StdoutDetector() func() bool {
	return RendererDetector(func() *lipgloss.Renderer {
		return lipgloss.NewRenderer(os.Stdout)
	})
}

// NewTerminalWatcher creates a watcher. A nil detect uses StdoutDetector;
// a non-positive interval uses DefaultPollInterval.
func NewTerminalWatcher(detect func() bool, interval time.Duration) *TerminalWatcher {
	if detect == nil {
		detect = StdoutDetector()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &TerminalWatcher{
		detect:   detect,
		interval: interval,
		dark:     detect(),
	}
}

// Dark implements Watcher.
func (w *TerminalWatcher) Dark() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dark
}

// Subscribe implements Watcher.
func (w *TerminalWatcher) Subscribe(fn func(dark bool)) (cancel func()) {
	w.mu.Lock()
	id, first := w.subs.add(fn)
	if first {
		w.stop = make(chan struct{})
		go w.poll(w.stop)
	}
	w.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.subs.remove(id) && w.stop != nil {
				close(w.stop)
				w.stop = nil
			}
		})
	}
}

func (w *TerminalWatcher) poll(stop <-chan struct{}) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			dark := w.detect()
			w.mu.Lock()
			changed := dark != w.dark
			w.dark = dark
			w.mu.Unlock()
			if changed {
				w.subs.emit(dark)
			}
		}
	}
}

// StaticWatcher is a Watcher whose preference is changed by calling Set.
type StaticWatcher struct {
	mu   sync.Mutex
	dark bool
	subs subscribers
}

// NewStaticWatcher creates a watcher reporting dark.
func NewStaticWatcher(dark bool) *StaticWatcher {
	return &StaticWatcher{dark: dark}
}

// Dark implements Watcher.
func (w *StaticWatcher) Dark() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dark
}

// Set changes the preference, notifying subscribers if it differs.
func (w *StaticWatcher) Set(dark bool) {
	w.mu.Lock()
	changed := dark != w.dark
	w.dark = dark
	w.mu.Unlock()
	if changed {
		w.subs.emit(dark)
	}
}

// Subscribe implements Watcher.
func (w *StaticWatcher) Subscribe(fn func(dark bool)) (cancel func()) {
	id, _ := w.subs.add(fn)
	var once sync.Once
	return func() {
		once.Do(func() { w.subs.remove(id) })
	}
}
