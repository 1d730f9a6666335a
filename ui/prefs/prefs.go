// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	appDir    = "pdf-annotator"
	prefsFile = "preferences.json"
)

// Well-known keys.
const (
	KeyLastZoom     = "last_zoom"
	KeyLastDir      = "last_dir"
	KeyLastDocument = "last_document"
	KeyLastMode     = "last_mode"
)

// Prefs is a key-value map persisted as JSON. Numbers always come back as
// float64, the only number type JSON decoding produces.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]any
	path   string
}

// Load reads preferences from ~/.config/pdf-annotator/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	p, _ := Open(filepath.Join(configDir, appDir))
	return p
}

// Open reads preferences stored in dir. A missing file is not an error; a
// corrupt one yields empty preferences and the decode error.
func Open(dir string) (*Prefs, error) {
	p := &Prefs{
		values: make(map[string]any),
		path:   filepath.Join(dir, prefsFile),
	}
	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		p.values = make(map[string]any)
		return p, fmt.Errorf("decode %s: %w", p.path, err)
	}
	return p, nil
}

// Path returns the preferences file location.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk, replacing the previous file in one step.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p.path)
}

// FloatWithFallback returns a numeric preference, or fallback if the key
// is unset or holds something else.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if n, ok := p.values[key].(float64); ok {
		return n
	}
	return fallback
}

// SetFloat stores a float64 preference.
func (p *Prefs) SetFloat(key string, val float64) {
	p.set(key, val)
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, _ := p.values[key].(string)
	return s
}

// SetString stores a string preference. An empty value removes the key.
func (p *Prefs) SetString(key string, val string) {
	if val == "" {
		p.Delete(key)
		return
	}
	p.set(key, val)
}

// Delete removes a preference.
func (p *Prefs) Delete(key string) {
	p.mu.Lock()
	delete(p.values, key)
	p.mu.Unlock()
}

func (p *Prefs) set(key string, val any) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}
