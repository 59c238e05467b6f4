// Package config loads the shell's optional rc file: prompt text, history
// capacity, and the argument-mangling compatibility toggle.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the shell's on-disk configuration record. Every field has a
// default (see Default) and the file, or any field within it, may be
// absent.
type Config struct {
	Prompt            string `yaml:"prompt"`
	HistoryLimit      int    `yaml:"history_limit"`
	EnableArgMangling bool   `yaml:"enable_arg_mangling"`
}

// Default returns the configuration a shell starts with when no rc file is
// present or readable.
func Default() Config {
	return Config{
		Prompt:            "$ ",
		HistoryLimit:      0,
		EnableArgMangling: true,
	}
}

// Path resolves the rc file location: the POSHRC environment variable if
// set, else $HOME/.poshrc.yaml.
func Path() string {
	if p := os.Getenv("POSHRC"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".poshrc.yaml")
}

// Load reads the rc file at Path(). A missing file yields Default() with a
// nil error. A malformed file yields Default() and a non-nil error — the
// caller is expected to report it and continue with defaults rather than
// refuse to start the shell.
func Load() (Config, error) {
	cfg := Default()

	path := Path()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Default(), err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Default(), fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}
