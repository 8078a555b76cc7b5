package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the file.
// A relative DISTPRUNE_BASE_DIR resolves against the working directory.
const (
	EnvBaseDir         = "DISTPRUNE_BASE_DIR"
	EnvDatabasePath    = "DISTPRUNE_DATABASE_PATH"
	EnvMetricsTextfile = "DISTPRUNE_METRICS_TEXTFILE"
)

type MethodTarget struct {
	FileName   string   `yaml:"file_name" json:"file_name"`   // Path relative to base_dir
	Signatures []string `yaml:"signatures" json:"signatures"` // Fragments applied in order
}

type MetricsCfg struct {
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"` // node_exporter textfile output, empty disables
}

type LoggingCfg struct {
	Dir          string `yaml:"dir" json:"dir"`                     // Directory for distprune.log, empty logs to stdout only
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type Config struct {
	BaseDir         string         `yaml:"base_dir" json:"base_dir"`
	FilesToRemove   []string       `yaml:"files_to_remove" json:"files_to_remove"`
	MethodsToDelete []MethodTarget `yaml:"methods_to_delete" json:"methods_to_delete"`
	DatabasePath    string         `yaml:"database_path" json:"database_path"` // SQLite run history, empty disables
	Metrics         MetricsCfg     `yaml:"metrics" json:"metrics"`
	Logging         LoggingCfg     `yaml:"logging" json:"logging"`
}

var (
	errNoBaseDir      = errors.New("base_dir is required")
	errEmptyPath      = errors.New("path must not be empty")
	errAbsolutePath   = errors.New("path must be relative to base_dir")
	errTraversalPath  = errors.New("path must not contain '..'")
	errNoSignatures   = errors.New("signatures must not be empty")
	errEmptySignature = errors.New("signature must not be empty")
)

// Load reads, overrides from the environment, validates and defaults the config at path.
// A relative base_dir in the file resolves against the directory holding the config file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if cfg.BaseDir != "" && !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(filepath.Dir(path), cfg.BaseDir)
	}
	cfg.applyEnv()
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaseDir)); v != "" {
		if abs, err := filepath.Abs(v); err == nil {
			v = abs
		}
		c.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDatabasePath)); v != "" {
		c.DatabasePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMetricsTextfile)); v != "" {
		c.Metrics.TextfilePath = v
	}
}

func (c *Config) validateAndDefault() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return errNoBaseDir
	}
	c.BaseDir = filepath.Clean(c.BaseDir)

	for i, p := range c.FilesToRemove {
		if err := checkRelative(p); err != nil {
			return fmt.Errorf("files_to_remove[%d] %q: %w", i, p, err)
		}
	}

	for i, m := range c.MethodsToDelete {
		if err := checkRelative(m.FileName); err != nil {
			return fmt.Errorf("methods_to_delete[%d] %q: %w", i, m.FileName, err)
		}
		if len(m.Signatures) == 0 {
			return fmt.Errorf("methods_to_delete[%d] %q: %w", i, m.FileName, errNoSignatures)
		}
		for j, s := range m.Signatures {
			if s == "" {
				return fmt.Errorf("methods_to_delete[%d] %q signature %d: %w", i, m.FileName, j, errEmptySignature)
			}
		}
	}

	// Set defaults for logging
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	return nil
}

func checkRelative(p string) error {
	if strings.TrimSpace(p) == "" {
		return errEmptyPath
	}
	if filepath.IsAbs(p) {
		return errAbsolutePath
	}
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return errTraversalPath
		}
	}
	return nil
}

// Spec returns the prune table as an immutable value.
func (c *Config) Spec() PruneSpec {
	return NewPruneSpec(c.FilesToRemove, c.MethodsToDelete)
}
