// Package config loads hostsync settings from a YAML file and turns them
// into system.Options and a process logger.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/hostsync/errors"
	"github.com/wippyai/hostsync/host"
	"github.com/wippyai/hostsync/system"
)

// SchemaMajor is the configuration schema major version this build reads.
const SchemaMajor = "v1"

// Config is the on-disk configuration.
type Config struct {
	Version       string            `yaml:"version"`
	Reentrant     bool              `yaml:"reentrant"`
	MaxThreads    int               `yaml:"max_threads"`
	HeapLimit     int64             `yaml:"heap_limit"`
	ConstantClock bool              `yaml:"constant_clock"`
	CheckQueues   *bool             `yaml:"check_queues"`
	LogLevel      string            `yaml:"log_level"`
	Embedded      map[string]string `yaml:"embedded"`

	// dir resolves relative embedded paths. Set by Load.
	dir string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version:  "1.0.0",
		LogLevel: "info",
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, fmt.Sprintf("read %s", path))
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(path)
	return c, nil
}

// Parse decodes and validates YAML. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "yaml decode")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field ranges and the schema version.
func (c *Config) Validate() error {
	v := c.Version
	if len(v) > 0 && v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Value(c.Version).
			Detail("version %q is not a semantic version", c.Version).
			Build()
	}
	if semver.Major(v) != SchemaMajor {
		return errors.New(errors.PhaseConfig, errors.KindUnsupported).
			Value(c.Version).
			Detail("schema %s not supported, want %s.x", semver.Major(v), SchemaMajor).
			Build()
	}
	if c.MaxThreads < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "max_threads must not be negative")
	}
	if c.HeapLimit < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "heap_limit must not be negative")
	}
	if _, err := c.level(); err != nil {
		return err
	}
	for name, path := range c.Embedded {
		if path == "" {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("embedded %q has no path", name))
		}
	}
	return nil
}

// Options builds system options, reading embedded files from disk.
func (c *Config) Options() (system.Options, error) {
	opts := system.DefaultOptions()
	opts.Reentrant = c.Reentrant
	opts.HeapLimit = c.HeapLimit
	if c.CheckQueues != nil {
		opts.CheckQueues = *c.CheckQueues
	}

	hostOpts := host.LocalOptions{MaxThreads: c.MaxThreads}
	if c.ConstantClock {
		hostOpts.Clock = host.ConstantClock(0)
	}
	opts.Host = host.NewLocal(hostOpts)

	if len(c.Embedded) > 0 {
		opts.Embedded = make(map[string][]byte, len(c.Embedded))
		for name, path := range c.Embedded {
			if !filepath.IsAbs(path) && c.dir != "" {
				path = filepath.Join(c.dir, path)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return system.Options{}, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err,
					fmt.Sprintf("embedded %q", name))
			}
			opts.Embedded[name] = data
		}
	}
	return opts, nil
}

// Logger builds a console logger at the configured level.
func (c *Config) Logger() (*zap.Logger, error) {
	lvl, err := c.level()
	if err != nil {
		return nil, err
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "build logger")
	}
	return l, nil
}

func (c *Config) level() (zapcore.Level, error) {
	if c.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log_level")
	}
	return lvl, nil
}
