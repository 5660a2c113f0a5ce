// Package config loads the CLI configuration from a YAML file, a .env file
// and ANTIMONY_ environment variables, in that order of increasing
// precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ANTIMONY_"

var validate = validator.New()

type Config struct {
	Search struct {
		// Directories are searched, in order, for imported files.
		Directories []string `yaml:"directories" validate:"dive,required"`
	} `yaml:"search"`
	Output struct {
		Format  string `yaml:"format" validate:"oneof=antimony sbml cellml"`
		Flatten bool   `yaml:"flatten"`
		Dir     string `yaml:"dir"`
	} `yaml:"output"`
	// BareNumbersDimensionless applies to every load.
	BareNumbersDimensionless bool `yaml:"bare_numbers_dimensionless"`
	Snapshots                struct {
		Path string `yaml:"path" validate:"required"`
	} `yaml:"snapshots"`
	Log struct {
		Level string `yaml:"level" validate:"oneof=debug info warn error"`
	} `yaml:"log"`
	Parallelism int `yaml:"parallelism" validate:"min=1,max=256"`
}

func Default() *Config {
	var cfg Config
	cfg.Output.Format = "sbml"
	cfg.Snapshots.Path = filepath.Join(".antimony", "snapshots.db")
	cfg.Log.Level = "info"
	cfg.Parallelism = 4
	return &cfg
}

// LoadConfig reads path on top of the defaults, then applies environment
// overrides and validates the result. A missing file at path is not an
// error; an empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	cfg := Default()

	// 2. Load YAML config
	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// 3. Override with Environment Variables if present
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	if v, ok := get("SEARCH_DIRS"); ok {
		c.Search.Directories = filepath.SplitList(v)
	}
	if v, ok := get("FORMAT"); ok {
		c.Output.Format = strings.ToLower(v)
	}
	if v, ok := get("OUTPUT_DIR"); ok {
		c.Output.Dir = v
	}
	if v, ok := get("SNAPSHOT_DB"); ok {
		c.Snapshots.Path = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	for key, dst := range map[string]*bool{
		"FLATTEN":                    &c.Output.Flatten,
		"BARE_NUMBERS_DIMENSIONLESS": &c.BareNumbersDimensionless,
	} {
		v, ok := get(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}
	if v, ok := get("PARALLELISM"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sPARALLELISM: %w", EnvPrefix, err)
		}
		c.Parallelism = n
	}
	return nil
}

// Validate checks the struct tags and reports the first failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return fmt.Errorf("invalid config: %w", err)
}

// LogLevel maps the configured level onto slog.
func (c *Config) LogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
