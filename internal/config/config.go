// Package config loads splitshift settings from defaults, an optional YAML
// file and SPLITSHIFT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/splitshift/internal/verify"
	"github.com/danielpatrickdp/splitshift/internal/workspace"
)

// Config holds every tunable of the CLI and the gRPC service.
type Config struct {
	Workspace string `yaml:"workspace" env:"SPLITSHIFT_WORKSPACE"`
	RawFile   string `yaml:"raw_file" env:"SPLITSHIFT_RAW_FILE"`
	EncFile   string `yaml:"enc_file" env:"SPLITSHIFT_ENC_FILE"`
	MetaFile  string `yaml:"meta_file" env:"SPLITSHIFT_META_FILE"`
	DecFile   string `yaml:"dec_file" env:"SPLITSHIFT_DEC_FILE"`

	// DBPath enables run history when non-empty.
	DBPath string `yaml:"db_path" env:"SPLITSHIFT_DB"`
	Addr   string `yaml:"addr" env:"SPLITSHIFT_ADDR"`

	DiffContext      int `yaml:"diff_context" env:"SPLITSHIFT_DIFF_CONTEXT"`
	DiffMaxLines     int `yaml:"diff_max_lines" env:"SPLITSHIFT_DIFF_MAX_LINES"`
	DiffMaxBytes     int `yaml:"diff_max_bytes" env:"SPLITSHIFT_DIFF_MAX_BYTES"`
	AmbiguityPreview int `yaml:"ambiguity_preview" env:"SPLITSHIFT_AMBIGUITY_PREVIEW"`

	Verbose bool `yaml:"verbose" env:"SPLITSHIFT_VERBOSE"`
}

// Default returns the stock settings: artifacts in the
// current directory, no history.
func Default() Config {
	opts := verify.DefaultOptions()
	return Config{
		Workspace:        ".",
		RawFile:          workspace.DefaultRawFile,
		EncFile:          workspace.DefaultEncFile,
		MetaFile:         workspace.DefaultMetaFile,
		DecFile:          workspace.DefaultDecFile,
		Addr:             "localhost:50061",
		DiffContext:      opts.Context,
		DiffMaxLines:     opts.MaxLines,
		DiffMaxBytes:     opts.MaxBytes,
		AmbiguityPreview: 20,
	}
}

// Load builds a Config. An empty path skips the file; a named file that does
// not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("config file %s: %w", path, err)
			}
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	switch {
	case c.RawFile == "" || c.EncFile == "" || c.MetaFile == "" || c.DecFile == "":
		return errors.New("config: artifact file names must not be empty")
	case c.DiffContext < 0:
		return fmt.Errorf("config: diff_context %d is negative", c.DiffContext)
	case c.DiffMaxLines <= 0:
		return fmt.Errorf("config: diff_max_lines %d must be positive", c.DiffMaxLines)
	case c.DiffMaxBytes <= 0:
		return fmt.Errorf("config: diff_max_bytes %d must be positive", c.DiffMaxBytes)
	case c.AmbiguityPreview < 0:
		return fmt.Errorf("config: ambiguity_preview %d is negative", c.AmbiguityPreview)
	}
	return nil
}

// WorkspaceFiles returns the workspace described by c.
func (c Config) WorkspaceFiles() workspace.Workspace {
	return workspace.Workspace{
		Dir:      c.Workspace,
		RawFile:  c.RawFile,
		EncFile:  c.EncFile,
		MetaFile: c.MetaFile,
		DecFile:  c.DecFile,
	}
}

// VerifyOptions returns the diff bounds described by c.
func (c Config) VerifyOptions() verify.Options {
	opts := verify.DefaultOptions()
	opts.FromName = c.RawFile
	opts.ToName = c.DecFile
	opts.Context = c.DiffContext
	opts.MaxLines = c.DiffMaxLines
	opts.MaxBytes = c.DiffMaxBytes
	return opts
}
