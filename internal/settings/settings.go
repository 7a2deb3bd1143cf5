// Package settings holds the business preferences of the shop: the display
// currency and the list of service styles offered in forms. They are kept in a
// small YAML file next to the database.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

const maxStyles = 100

var (
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrNoStyles        = errors.New("at least one service style is required")
)

// Settings are the user-editable business preferences.
type Settings struct {
	Currency      string   `yaml:"currency" json:"currency"`
	DefaultStyles []string `yaml:"default_styles" json:"defaultStyles"`
}

// Currencies offered in the settings form.
var Currencies = []string{"USD", "EUR", "GBP", "CAD", "AUD", "JPY", "ZAR", "INR", "BRL", "CNY"}

// Default returns the settings used before the user saves any.
func Default() Settings {
	return Settings{
		Currency: "USD",
		DefaultStyles: []string{
			"Haircut", "Fade", "Line-up", "Buzz Cut", "Scissor Cut", "Beard Trim",
			"Shave", "Blowout", "Hair Wash", "Color", "Highlights", "Perm",
			"Straightening", "Braiding", "Styling", "Deep Conditioning",
		},
	}
}

// Normalize upper-cases the currency, trims styles and drops empty or
// duplicate (case-insensitive) styles.
func (s Settings) Normalize() Settings {
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	seen := make(map[string]bool, len(s.DefaultStyles))
	styles := make([]string, 0, len(s.DefaultStyles))
	for _, st := range s.DefaultStyles {
		st = strings.TrimSpace(st)
		key := strings.ToLower(st)
		if st == "" || seen[key] {
			continue
		}
		seen[key] = true
		styles = append(styles, st)
	}
	s.DefaultStyles = styles
	return s
}

func (s Settings) Validate() error {
	if _, err := currency.ParseISO(s.Currency); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCurrency, s.Currency)
	}
	if len(s.DefaultStyles) == 0 {
		return ErrNoStyles
	}
	if len(s.DefaultStyles) > maxStyles {
		return fmt.Errorf("too many service styles (max %d)", maxStyles)
	}
	for _, st := range s.DefaultStyles {
		if len(st) > 100 {
			return fmt.Errorf("style %q too long (max 100 characters)", st[:20]+"...")
		}
	}
	return nil
}

// Load reads settings from path. A missing file yields Default(); fields
// absent from the file keep their defaults.
func Load(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings file: %w", err)
	}

	var raw Settings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Settings{}, fmt.Errorf("parsing settings file: %w", err)
	}
	if raw.Currency != "" {
		s.Currency = raw.Currency
	}
	if len(raw.DefaultStyles) > 0 {
		s.DefaultStyles = raw.DefaultStyles
	}

	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings file %s: %w", path, err)
	}
	return s, nil
}

// Save writes settings to path through a temp file and rename.
func Save(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating settings directory: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing settings file: %w", err)
	}
	return nil
}

// Store is a concurrency-safe settings holder. With an empty path it keeps
// settings in memory only.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  Settings
}

// Open loads the settings at path (or defaults) into a Store.
func Open(path string) (*Store, error) {
	s := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		s = loaded
	}
	return &Store{path: path, cur: s}, nil
}

func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := st.cur
	out.DefaultStyles = append([]string(nil), st.cur.DefaultStyles...)
	return out
}

// Update normalizes, validates and persists s.
func (st *Store) Update(s Settings) (Settings, error) {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.path != "" {
		if err := Save(st.path, s); err != nil {
			return Settings{}, err
		}
	}
	st.cur = s
	return s, nil
}
