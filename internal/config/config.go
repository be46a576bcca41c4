package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App    AppConfig    `yaml:"app"`
	Corpus CorpusConfig `yaml:"corpus"`
	Store  StoreConfig  `yaml:"store"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type AppConfig struct {
	Name      string `yaml:"name"`
	Workspace string `yaml:"workspace"`
}

type CorpusConfig struct {
	Texts     []string `yaml:"texts"`
	Questions string   `yaml:"questions"`
	Workers   int      `yaml:"workers"`
}

type StoreConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SQLitePath string `yaml:"sqlite_path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	File string `yaml:"file"`
}

// Default returns the settings used when no config file is given.
func Default() *Config {
	cfg := defaults()
	cfg.expandWorkspaceRefs()
	return cfg
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:      "synonyms",
			Workspace: "./runtime",
		},
		Corpus: CorpusConfig{
			Questions: "test.txt",
		},
		Store: StoreConfig{
			Enabled:    false,
			SQLitePath: "${app.workspace}/sqlite/synonyms.db",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads a YAML config over the defaults. A .env file next to the config
// is loaded first so "env:" values can resolve from it; variables already set
// in the environment win.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	cfg := defaults()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.expandEnv()
	cfg.expandWorkspaceRefs()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) expandEnv() {
	c.App.Workspace = expandEnvValue(c.App.Workspace)
	c.Corpus.Questions = expandEnvValue(c.Corpus.Questions)
	for i := range c.Corpus.Texts {
		c.Corpus.Texts[i] = expandEnvValue(c.Corpus.Texts[i])
	}
	c.Store.SQLitePath = expandEnvValue(c.Store.SQLitePath)
	c.Server.Addr = expandEnvValue(c.Server.Addr)
	c.Log.File = expandEnvValue(c.Log.File)
}

func expandEnvValue(value string) string {
	const prefix = "env:"
	if !strings.HasPrefix(value, prefix) {
		return value
	}
	key := strings.TrimSpace(strings.TrimPrefix(value, prefix))
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}

func (c *Config) expandWorkspaceRefs() {
	workspace := c.App.Workspace
	if workspace == "" {
		return
	}
	c.Corpus.Questions = expandWorkspace(c.Corpus.Questions, workspace)
	for i := range c.Corpus.Texts {
		c.Corpus.Texts[i] = expandWorkspace(c.Corpus.Texts[i], workspace)
	}
	c.Store.SQLitePath = expandWorkspace(c.Store.SQLitePath, workspace)
	c.Log.File = expandWorkspace(c.Log.File, workspace)
}

func expandWorkspace(value, workspace string) string {
	const token = "${app.workspace}"
	return strings.ReplaceAll(value, token, workspace)
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return errors.New("config: app.name is required")
	}
	if c.Corpus.Workers < 0 {
		return fmt.Errorf("config: corpus.workers must not be negative, got %d", c.Corpus.Workers)
	}
	for i, text := range c.Corpus.Texts {
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("config: corpus.texts[%d] is empty", i)
		}
	}
	if c.Store.Enabled && c.Store.SQLitePath == "" {
		return errors.New("config: store.sqlite_path is required when store is enabled")
	}
	return nil
}

// RequireCorpus checks the settings needed to build descriptors.
func (c *Config) RequireCorpus() error {
	if len(c.Corpus.Texts) == 0 {
		return errors.New("config: corpus.texts must include at least one reference text")
	}
	return nil
}

func (c *Config) EnsureRuntimeDirs() error {
	dirs := []string{c.App.Workspace}
	if c.Store.Enabled {
		dirs = append(dirs, filepath.Dir(c.Store.SQLitePath))
	}
	if c.Log.File != "" {
		dirs = append(dirs, filepath.Dir(c.Log.File))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}
	return nil
}
