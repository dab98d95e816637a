package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the active palette across restarts. It stands in for the
// durable storage on the client side.
type Store interface {
	Load() (Colors, bool, error)
	Save(Colors) error
}

// Engine holds the active palette and keeps the store in sync on every
// change. Single writer per client session; a mutex guards concurrent reads.
type Engine struct {
	mu      sync.RWMutex
	current Colors
	store   Store
	applied map[string]string
}

// NewEngine creates an engine starting from the stored palette, falling back
// to the default palette when nothing was persisted yet.
func NewEngine(store Store) (*Engine, error) {
	e := &Engine{store: store}
	current := Default
	if store != nil {
		stored, ok, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load stored theme: %w", err)
		}
		if ok {
			current = stored
		}
	}
	e.apply(current)
	return e, nil
}

// Set makes the palette active, persists it and reapplies the derived variants.
func (e *Engine) Set(c Colors) error {
	if err := c.Validate(); err != nil {
		return err
	}
	e.apply(c)
	return e.persist(c)
}

// SetPreset activates a named preset palette. Unknown names are a no-op.
func (e *Engine) SetPreset(name string) error {
	preset, ok := Presets[name]
	if !ok {
		return nil
	}
	e.apply(preset)
	return e.persist(preset)
}

// Reset reapplies the default palette.
func (e *Engine) Reset() error {
	e.apply(Default)
	return e.persist(Default)
}

// Current returns the active palette.
func (e *Engine) Current() Colors {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Variables returns the applied CSS custom properties, derived variants included.
func (e *Engine) Variables() map[string]string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	vars := make(map[string]string, len(e.applied))
	for k, v := range e.applied {
		vars[k] = v
	}
	return vars
}

func (e *Engine) apply(c Colors) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = c
	e.applied = Apply(c)
}

func (e *Engine) persist(c Colors) error {
	if e.store == nil {
		return nil
	}
	if err := e.store.Save(c); err != nil {
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	return nil
}

// MemoryStore is an in-process Store, used in tests.
type MemoryStore struct {
	mu     sync.Mutex
	colors Colors
	saved  bool
}

// Load returns the stored palette, if any.
func (s *MemoryStore) Load() (Colors, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colors, s.saved, nil
}

// Save stores the palette.
func (s *MemoryStore) Save(c Colors) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colors = c
	s.saved = true
	return nil
}

// FileStore persists the palette as JSON on disk.
type FileStore struct {
	Path string
}

// Load reads the stored palette. A missing file is not an error.
func (s *FileStore) Load() (Colors, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Colors{}, false, nil
		}
		return Colors{}, false, fmt.Errorf("failed to read theme file: %w", err)
	}

	var c Colors
	if err := json.Unmarshal(data, &c); err != nil {
		return Colors{}, false, fmt.Errorf("failed to decode theme file: %w", err)
	}
	return c, true, nil
}

// Save writes the palette, creating the parent directory if needed.
func (s *FileStore) Save(c Colors) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("failed to create theme directory: %w", err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode theme: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("failed to write theme file: %w", err)
	}
	return nil
}
