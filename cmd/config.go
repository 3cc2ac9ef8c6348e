package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"RootGrep/internal"
)

// Config is the file form of the command line. Flags given explicitly
// win over file values.
type Config struct {
	// Patterns are registered before the pattern file
	Patterns    []string      `yaml:"patterns"`
	PatternFile string        `yaml:"pattern_file"`
	Threads     int           `yaml:"threads"`
	Timeout     time.Duration `yaml:"-"`
	Depth       int           `yaml:"depth"`

	Archives        bool `yaml:"archives"`
	SkipHidden      bool `yaml:"skip_hidden"`
	NoIgnore        bool `yaml:"no_ignore"`
	NoIgnoreParent  bool `yaml:"no_ignore_parent"`
	NoIgnoreGlobal  bool `yaml:"no_ignore_global"`
	NoIgnoreExclude bool `yaml:"no_ignore_exclude"`
	RequireGit      bool `yaml:"require_git"`
	Follow          bool `yaml:"follow"`
	FailFast        bool `yaml:"fail_fast"`
	Sort            bool `yaml:"sort"`

	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"logfile"`
	// Color is auto, always or never
	Color string `yaml:"color"`
}

func DefaultConfig() *Config {
	return &Config{
		Threads:  runtime.NumCPU(),
		LogLevel: "warn",
		Color:    "auto",
	}
}

// LoadConfig reads a YAML config over the defaults. An empty path or a
// missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// timeout is read as a duration string
	type yamlConfig struct {
		Config  `yaml:",inline"`
		Timeout string `yaml:"timeout"`
	}
	raw := yamlConfig{Config: *cfg}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	*cfg = raw.Config
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", raw.Timeout, err)
		}
		cfg.Timeout = d
	}
	return cfg, nil
}

// MergeFlags copies every flag set on the command line into c.
func (c *Config) MergeFlags(ctx *cli.Context) {
	if ctx.IsSet("regexp") {
		c.Patterns = append(c.Patterns, ctx.StringSlice("regexp")...)
	}
	if ctx.IsSet("pattern-file") {
		c.PatternFile = ctx.String("pattern-file")
	}
	if ctx.IsSet("threads") {
		c.Threads = ctx.Int("threads")
	}
	if ctx.IsSet("timeout") {
		c.Timeout = ctx.Duration("timeout")
	}
	if ctx.IsSet("depth") {
		c.Depth = ctx.Int("depth")
	}
	bools := map[string]*bool{
		"archives":          &c.Archives,
		"skip-hidden":       &c.SkipHidden,
		"no-ignore":         &c.NoIgnore,
		"no-ignore-parent":  &c.NoIgnoreParent,
		"no-ignore-global":  &c.NoIgnoreGlobal,
		"no-ignore-exclude": &c.NoIgnoreExclude,
		"require-git":       &c.RequireGit,
		"follow":            &c.Follow,
		"fail-fast":         &c.FailFast,
		"sort":              &c.Sort,
	}
	for name, dst := range bools {
		if ctx.IsSet(name) {
			*dst = ctx.Bool(name)
		}
	}
	if ctx.IsSet("log-level") {
		c.LogLevel = ctx.String("log-level")
	}
	if ctx.IsSet("logfile") {
		c.LogFile = ctx.String("logfile")
	}
	if ctx.IsSet("color") {
		c.Color = ctx.String("color")
	}
}

func (c *Config) Validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.Threads)
	}
	if c.Depth < 0 {
		return fmt.Errorf("depth must be >= 0, got %d", c.Depth)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q, must be one of: auto, always, never", c.Color)
	}
	return nil
}

// Options maps the config onto engine options.
func (c *Config) Options() internal.Options {
	policy := internal.SkipOnError
	if c.FailFast {
		policy = internal.AbortOnError
	}
	return internal.Options{
		Threads:        c.Threads,
		MaxDepth:       c.Depth,
		SkipHidden:     c.SkipHidden,
		FollowSymlinks: c.Follow,
		Archives:       c.Archives,
		Sorted:         c.Sort,
		NoIgnore:       c.NoIgnore,
		NoParents:      c.NoIgnoreParent,
		NoGlobal:       c.NoIgnoreGlobal,
		NoExclude:      c.NoIgnoreExclude,
		RequireGit:     c.RequireGit,
		ErrorPolicy:    policy,
	}
}
