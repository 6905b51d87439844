// Package theme keeps the dark-mode preference.
//
// An explicit choice is persisted and always wins. Until the user makes
// one, the preference follows the system signal, including live changes.
package theme

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
)

// KeyDarkMode is the storage key of the persisted preference.
const KeyDarkMode = "darkMode"

// Store holds the current dark-mode preference.
type Store struct {
	storage Storage
	logger  *log.Logger

	mu     sync.Mutex
	dark   bool
	cancel func()
}

// New reads the persisted preference, falling back to the watcher, and
// subscribes to the watcher until Close is called.
func New(storage Storage, watcher Watcher, logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Store{storage: storage, logger: logger}

	dark, ok, err := s.persisted()
	if err != nil {
		return nil, err
	}
	if !ok {
		dark = watcher.Dark()
	}
	s.dark = dark
	s.cancel = watcher.Subscribe(s.signal)
	return s, nil
}

// persisted returns the stored preference. A malformed value is treated
// as absent.
func (s *Store) persisted() (dark, ok bool, err error) {
	v, ok, err := s.storage.Get(KeyDarkMode)
	if err != nil {
		return false, false, fmt.Errorf("read theme preference: %w", err)
	}
	if !ok {
		return false, false, nil
	}
	dark, perr := strconv.ParseBool(v)
	if perr != nil {
		s.logger.Warn("ignoring malformed theme preference", "value", v)
		return false, false, nil
	}
	return dark, true, nil
}

// signal applies a system change unless an explicit choice is stored.
// The check and the write happen under s.mu so a concurrent SetDarkMode
// cannot be overwritten.
func (s *Store) signal(dark bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, explicit, err := s.persisted()
	if err != nil {
		s.logger.Warn("theme signal ignored", "err", err)
		return
	}
	if explicit {
		s.logger.Debug("theme signal ignored, preference is explicit", "dark", dark)
		return
	}

	s.dark = dark
	s.logger.Debug("theme follows system", "dark", dark)
}

// DarkMode reports whether dark mode is on.
func (s *Store) DarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark
}

// SetDarkMode records an explicit choice. It is persisted before it takes
// effect; on a storage error the preference is unchanged.
func (s *Store) SetDarkMode(dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set(dark)
}

// Toggle flips the preference and returns the new value.
func (s *Store) Toggle() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := !s.dark
	if err := s.set(next); err != nil {
		return s.dark, err
	}
	return next, nil
}

// set persists and applies dark. s.mu must be held.
func (s *Store) set(dark bool) error {
	if err := s.storage.Set(KeyDarkMode, strconv.FormatBool(dark)); err != nil {
		return fmt.Errorf("save theme preference: %w", err)
	}
	s.dark = dark
	return nil
}

// Close stops following the system signal.
func (s *Store) Close() {
	s.cancel()
}
