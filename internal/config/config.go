// Package config loads the optional .actionrun YAML file that sits next
// to an action's action.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file in the action root.
const FileName = ".actionrun"

// Default values used when the file leaves a field unset.
const (
	DefaultShell       = "bash"
	DefaultScript      = "entrypoint.sh"
	DefaultMaxOutput   = 1 << 20 // 1 MB
	DefaultHistorySize = 16
)

// Environment variables that override values from the file.
const (
	EnvShell  = "ACTIONRUN_SHELL"
	EnvScript = "ACTIONRUN_SCRIPT"
)

// Config holds the parsed .actionrun configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version        int               `yaml:"version"`
	RawShell       string            `yaml:"shell"`  // interpreter, e.g. bash or sh
	RawScript      string            `yaml:"script"` // relative to the action root
	Args           []string          `yaml:"args"`   // appended after the script path
	Dir            string            `yaml:"dir"`    // working directory; empty inherits
	Env            map[string]string `yaml:"env"`
	RawMaxOutput   int               `yaml:"max_output"` // bytes captured per run by the MCP server
	History        string            `yaml:"history"`    // directory for run records
	RawHistorySize int               `yaml:"history_size"`
}

// Shell returns the configured interpreter or the default.
func (c *Config) Shell() string {
	if c.RawShell != "" {
		return c.RawShell
	}
	return DefaultShell
}

// Script returns the configured script path or the default.
func (c *Config) Script() string {
	if c.RawScript != "" {
		return c.RawScript
	}
	return DefaultScript
}

// MaxOutputBytes returns the configured capture cap or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// HistorySize returns the number of run records kept in memory.
func (c *Config) HistorySize() int {
	if c.RawHistorySize > 0 {
		return c.RawHistorySize
	}
	return DefaultHistorySize
}

// Argv builds the command line for the action script: the shell, the
// script resolved against root, the configured args, then extra.
func (c *Config) Argv(root string, extra ...string) []string {
	script := c.Script()
	if !filepath.IsAbs(script) {
		script = filepath.Join(root, script)
	}
	argv := make([]string, 0, 2+len(c.Args)+len(extra))
	argv = append(argv, c.Shell(), script)
	argv = append(argv, c.Args...)
	return append(argv, extra...)
}

// Environ returns Env as sorted KEY=VALUE entries.
func (c *Config) Environ() []string {
	if len(c.Env) == 0 {
		return nil
	}
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// WorkDir returns Dir resolved against root. An empty Dir stays empty so
// the child inherits the caller's working directory.
func (c *Config) WorkDir(root string) string {
	if c.Dir == "" || filepath.IsAbs(c.Dir) {
		return c.Dir
	}
	return filepath.Join(root, c.Dir)
}

// LoadResult holds the parsed config and the discovered action root.
type LoadResult struct {
	Config     *Config
	ActionRoot string // directory containing action.yml; falls back to the start dir
}

// Load reads the .actionrun file from the action root. The action root is
// discovered by walking upward from dir looking for action.yml or
// action.yaml. If no .actionrun file exists, a default Config is returned.
// getenv supplies the override variables; nil means os.Getenv.
func Load(dir string, getenv func(string) string) (*LoadResult, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	root, err := findActionRoot(dir)
	if err != nil {
		// No action.yml found; use dir as root.
		root, err = filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", dir, err)
		}
	}

	cfg := &Config{}
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if v := getenv(EnvShell); v != "" {
		cfg.RawShell = v
	}
	if v := getenv(EnvScript); v != "" {
		cfg.RawScript = v
	}
	return &LoadResult{Config: cfg, ActionRoot: root}, nil
}

// findActionRoot walks upward from dir looking for an action metadata file.
func findActionRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range []string{"action.yml", "action.yaml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("action.yml not found")
		}
		dir = parent
	}
}
