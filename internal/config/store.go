package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store resolves settings from flags, environment, file and defaults.
type Store struct {
	v    *viper.Viper
	path string
}

// Entry is one resolved setting as shown by "config list".
type Entry struct {
	Key    string
	Value  string
	Source string
}

// Open loads the config file at path, or DefaultPath() when path is empty.
// A missing file is not an error.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	path = ExpandPath(path)

	v := newViper(path)
	for k, val := range defaults() {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readFile(v); err != nil {
		return nil, err
	}
	return &Store{v: v, path: path}, nil
}

// newViper returns a viper bound to one YAML file.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	return v
}

// readFile reads the bound file, treating absence as empty.
func readFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("failed to read config %s: %w", v.ConfigFileUsed(), err)
}

// Path returns the config file location, whether or not it exists.
func (s *Store) Path() string {
	return s.path
}

// BindFlag makes a changed command flag override key.
func (s *Store) BindFlag(key string, flag *pflag.Flag) error {
	if !IsValidKey(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if flag == nil {
		return fmt.Errorf("bind %s: nil flag", key)
	}
	if err := s.v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind %s: %w", key, err)
	}
	return nil
}

// BindFlags binds flags by name. Names missing from fs are skipped so
// commands can share one binding table.
func (s *Store) BindFlags(fs *pflag.FlagSet, keysByFlag map[string]string) error {
	for name, key := range keysByFlag {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := s.BindFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Config decodes and validates the resolved settings.
func (s *Store) Config() (Config, error) {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.OutputDir = ExpandPath(cfg.OutputDir)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Get returns the resolved value of key as text.
func (s *Store) Get(key string) (string, error) {
	if !IsValidKey(key) {
		return "", fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return cast.ToString(s.v.Get(key)), nil
}

// List returns every key with its resolved value and where it came from.
func (s *Store) List() []Entry {
	keys := Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{
			Key:    k,
			Value:  cast.ToString(s.v.Get(k)),
			Source: s.source(k),
		})
	}
	return entries
}

// source names the layer that supplied key. Flags are not reported because
// List runs outside any generating command.
func (s *Store) source(key string) string {
	env := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	if _, ok := os.LookupEnv(env); ok {
		return "env " + env
	}
	if s.v.InConfig(key) {
		return "file"
	}
	return "default"
}

// Set validates value and writes it to the config file, creating the file
// and its directory as needed. Only keys already in the file and key itself
// are written; defaults and environment values stay out of the file.
func (s *Store) Set(key, value string) error {
	if !IsValidKey(key) {
		return fmt.Errorf("%w: %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}

	parsed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	// Reject values that would make every later run fail.
	candidate := newViper(s.path)
	for k, val := range defaults() {
		candidate.SetDefault(k, val)
	}
	if err := readFile(candidate); err != nil {
		return err
	}
	candidate.Set(key, parsed)
	var cfg Config
	if err := candidate.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	file := newViper(s.path)
	if err := readFile(file); err != nil {
		return err
	}
	file.Set(key, parsed)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	if err := file.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}

	s.v.Set(key, parsed)
	return nil
}

// parseValue converts command-line text to the type stored under key.
func parseValue(key, value string) (any, error) {
	if !isNumericKey(key) {
		if key == KeyOutputDir {
			return ExpandPath(value), nil
		}
		return value, nil
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(value))
	if err != nil {
		return nil, fmt.Errorf("%w: %s expects a number, got %q", ErrInvalid, key, value)
	}
	return f, nil
}
