// Package settings is the preference store read by the adapters, the pager
// and the factory. Preferences live in a YAML file keyed by kebab-case names.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// Preference keys.
const (
	MaxItemsPerSection          = "max-items-per-section"
	SystemdSectionEnabled       = "systemd-section-enabled"
	SystemdFilterLoaded         = "systemd-section-filter-loaded-services"
	SystemdFilterSystemServices = "systemd-section-filter-system-services"
	SystemdFilterUserServices   = "systemd-section-filter-user-services"
	SystemdFilterPriorityList   = "systemd-section-filter-priority-list"
	SystemdPriorityList         = "systemd-section-items-priority-list"
	CronSectionEnabled          = "cron-section-enabled"
	DockerSectionEnabled        = "docker-section-enabled"
	DockerShowImages            = "docker-section-show-images"
	PodmanSectionEnabled        = "podman-section-enabled"
	PodmanShowImages            = "podman-section-show-images"
)

// Settings exposes typed, live reads of the preference store.
type Settings interface {
	Int(key string) int
	Bool(key string) bool
	String(key string) string
}

// Type is the value type of a preference.
type Type string

const (
	TypeInt    Type = "int"
	TypeBool   Type = "bool"
	TypeString Type = "string"
)

type definition struct {
	typ Type
	def any
}

var definitions = map[string]definition{
	MaxItemsPerSection:          {TypeInt, 10},
	SystemdSectionEnabled:       {TypeBool, true},
	SystemdFilterLoaded:         {TypeBool, false},
	SystemdFilterSystemServices: {TypeBool, true},
	SystemdFilterUserServices:   {TypeBool, false},
	SystemdFilterPriorityList:   {TypeBool, false},
	SystemdPriorityList:         {TypeString, ""},
	CronSectionEnabled:          {TypeBool, true},
	DockerSectionEnabled:        {TypeBool, true},
	DockerShowImages:            {TypeBool, true},
	PodmanSectionEnabled:        {TypeBool, false},
	PodmanShowImages:            {TypeBool, true},
}

// Keys returns every known preference key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(definitions))
	for k := range definitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TypeOf returns the value type of key.
func TypeOf(key string) (Type, bool) {
	d, ok := definitions[key]
	return d.typ, ok
}

// DefaultPath returns $XDG_CONFIG_HOME/svcpanel/settings.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine user config directory: %w", err)
	}
	return filepath.Join(dir, "svcpanel", "settings.yaml"), nil
}

// Store is a YAML-backed Settings implementation. Reads always see the
// most recently loaded or written values.
type Store struct {
	path   string
	mu     sync.RWMutex
	values map[string]any
	logger *slog.Logger
}

// Load reads the settings file at path. A missing file yields a store
// holding only defaults.
func Load(path string, logger *slog.Logger) (*Store, error) {
	s := &Store{path: path, values: map[string]any{}, logger: logger}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory returns a store that is never backed by a file.
func NewMemory(values map[string]any) *Store {
	s := &Store{values: map[string]any{}, logger: slog.New(slog.DiscardHandler)}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

// Path returns the backing file path ("" for memory stores).
func (s *Store) Path() string { return s.path }

// Parse decodes a settings document.
func Parse(data []byte) (map[string]any, error) {
	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return values, nil
}

// Reload re-reads the backing file.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.mu.Lock()
		s.values = map[string]any{}
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	values, err := Parse(data)
	if err != nil {
		return err
	}
	for _, e := range Validate(values) {
		s.logger.Warn("settings validation", "path", s.path, "err", e)
	}
	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

func (s *Store) lookup(key string) (any, definition) {
	d, known := definitions[key]
	if !known {
		s.logger.Warn("unknown settings key", "key", key)
	}
	s.mu.RLock()
	v, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return d.def, d
	}
	return v, d
}

// Int returns the integer value of key, or its default when unset or mistyped.
func (s *Store) Int(key string) int {
	v, d := s.lookup(key)
	if i, ok := v.(int); ok {
		return i
	}
	s.logger.Warn("settings type mismatch", "key", key, "want", TypeInt)
	i, _ := d.def.(int)
	return i
}

// Bool returns the boolean value of key, or its default when unset or mistyped.
func (s *Store) Bool(key string) bool {
	v, d := s.lookup(key)
	if b, ok := v.(bool); ok {
		return b
	}
	s.logger.Warn("settings type mismatch", "key", key, "want", TypeBool)
	b, _ := d.def.(bool)
	return b
}

// String returns the string value of key, or its default when unset or mistyped.
func (s *Store) String(key string) string {
	v, d := s.lookup(key)
	if str, ok := v.(string); ok {
		return str
	}
	s.logger.Warn("settings type mismatch", "key", key, "want", TypeString)
	str, _ := d.def.(string)
	return str
}

// Get returns the value of key formatted for display.
func (s *Store) Get(key string) (string, error) {
	typ, ok := TypeOf(key)
	if !ok {
		return "", fmt.Errorf("unknown settings key %q", key)
	}
	switch typ {
	case TypeInt:
		return strconv.Itoa(s.Int(key)), nil
	case TypeBool:
		return strconv.FormatBool(s.Bool(key)), nil
	default:
		return s.String(key), nil
	}
}

// Set parses raw according to the type of key, validates the result and
// persists the store.
func (s *Store) Set(key, raw string) error {
	typ, ok := TypeOf(key)
	if !ok {
		return fmt.Errorf("unknown settings key %q", key)
	}
	var value any
	switch typ {
	case TypeInt:
		i, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s: expected an integer, got %q", key, raw)
		}
		value = i
	case TypeBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s: expected true or false, got %q", key, raw)
		}
		value = b
	default:
		value = raw
	}

	s.mu.Lock()
	old, had := s.values[key]
	s.values[key] = value
	if errs := Validate(s.values); len(errs) > 0 {
		if had {
			s.values[key] = old
		} else {
			delete(s.values, key)
		}
		s.mu.Unlock()
		return errs[0]
	}
	s.mu.Unlock()

	return s.Save()
}

// Save writes the store atomically to its backing file.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	s.mu.RLock()
	data, err := yaml.Marshal(s.values)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("cannot create settings directory: %w", err)
	}
	if err := renameio.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Validate checks the stored preferences.
func (s *Store) Validate() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Validate(s.values)
}
