package service

import (
	"context"
	"log/slog"
	"strconv"
	"sync"

	"github.com/escolaweb/portal-core/internal/ports"
)

// keyDarkMode holds the device-local theme preference. It is persisted
// independently of the session and of the account-level dark-mode flag.
const keyDarkMode = "theme.dark_mode"

// ThemeStoreOptions groups dependencies for ThemeStore.
type ThemeStoreOptions struct {
	Storage ports.KeyValue
	Scheme  ports.SchemeDetector
	// Apply is invoked with the effective value after Initialize and after
	// every Toggle; styling consumes it as a global presentation flag.
	Apply  func(dark bool)
	Logger *slog.Logger
}

// ThemeStore owns the device-local light/dark preference. Purely local, no
// failure modes surface to the user.
type ThemeStore struct {
	storage ports.KeyValue
	scheme  ports.SchemeDetector
	apply   func(dark bool)
	logger  *slog.Logger

	mu   sync.Mutex
	dark bool
}

// NewThemeStore constructs a ThemeStore. Call Initialize before use.
func NewThemeStore(opts ThemeStoreOptions) *ThemeStore {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ThemeStore{
		storage: opts.Storage,
		scheme:  opts.Scheme,
		apply:   opts.Apply,
		logger:  logger,
	}
}

// Initialize reads the persisted preference, falling back to the platform's
// ambient color-scheme signal when none exists.
func (t *ThemeStore) Initialize(ctx context.Context) {
	dark := false
	raw, err := t.storage.Get(ctx, keyDarkMode)
	switch {
	case err == nil:
		parsed, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			t.logger.Warn("theme: persisted preference unreadable, using ambient", "value", raw)
			dark = t.ambient()
		} else {
			dark = parsed
		}
	case err == ports.ErrKeyNotFound:
		dark = t.ambient()
	default:
		t.logger.Warn("theme: reading preference failed, using ambient", "error", err)
		dark = t.ambient()
	}

	t.mu.Lock()
	t.dark = dark
	t.mu.Unlock()
	t.applyFlag(dark)
}

// Dark returns the current preference.
func (t *ThemeStore) Dark() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dark
}

// Toggle flips the preference, persists it, and re-applies the global flag.
func (t *ThemeStore) Toggle(ctx context.Context) {
	t.mu.Lock()
	t.dark = !t.dark
	dark := t.dark
	t.mu.Unlock()

	if err := t.storage.Set(ctx, keyDarkMode, strconv.FormatBool(dark)); err != nil {
		t.logger.Warn("theme: persisting preference failed", "error", err)
	}
	t.applyFlag(dark)
}

func (t *ThemeStore) ambient() bool {
	if t.scheme == nil {
		return false
	}
	return t.scheme.PrefersDark()
}

func (t *ThemeStore) applyFlag(dark bool) {
	if t.apply != nil {
		t.apply(dark)
	}
}
