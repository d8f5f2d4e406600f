package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/MegaGrindStone/ollamachat/internal/chat"
	"gopkg.in/yaml.v3"
)

type config struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Model   string `yaml:"model"`
	Timeout int    `yaml:"timeout"`

	HistoryDB string `yaml:"historyDB"`
}

// loadConfig reads the YAML config at path, or the default location under the
// user config dir when path is empty. A missing file is not an error; the
// zero config falls back to package defaults and the OLLAMA_HOST environment
// variable.
func loadConfig(path string) (config, error) {
	var cfg config

	if path == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return config{}, fmt.Errorf("error getting user config dir: %w", err)
		}
		path = filepath.Join(cfgDir, "ollamachat", "config.yaml")
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return config{}, fmt.Errorf("error opening config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return config{}, fmt.Errorf("error decoding config file: %w", err)
	}

	return cfg, nil
}

func (c config) chatOptions() chat.Options {
	host := c.Host
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}

	return chat.Options{
		Host:    host,
		Port:    c.Port,
		Model:   c.Model,
		Timeout: time.Duration(c.Timeout) * time.Second,
	}
}

// historyDBPath returns the configured history database path, defaulting to a
// file next to the config.
func (c config) historyDBPath() (string, error) {
	if c.HistoryDB != "" {
		return c.HistoryDB, nil
	}

	cfgDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting user config dir: %w", err)
	}
	dir := filepath.Join(cfgDir, "ollamachat")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating config directory: %w", err)
	}
	return filepath.Join(dir, "history.db"), nil
}
