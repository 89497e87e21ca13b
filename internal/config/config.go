// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads the portal server configuration from an optional YAML
file, then applies the BACKEND_URL environment variable on top.
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/thediveo/spaportal"
	"gopkg.in/yaml.v3"
)

// BackendURLEnv names the environment variable specifying the backend base
// URL.
const BackendURLEnv = "BACKEND_URL"

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the portal server configuration.
type Config struct {
	Listen      string        // address to listen on, such as ":8080".
	BackendURL  string        // backend base URL; the health endpoint is below it.
	PublicDir   string        // directory with the static admin panel files.
	PingTimeout time.Duration // bounds a single health ping.
}

// yamlConfig is the on-disk representation of Config.
type yamlConfig struct {
	Listen      string `yaml:"listen"`
	BackendURL  string `yaml:"backend_url"`
	PublicDir   string `yaml:"public_dir"`
	PingTimeout string `yaml:"ping_timeout"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Listen:      ":8080",
		PublicDir:   "public",
		PingTimeout: spaportal.DefaultPingTimeout,
	}
}

// Load returns the configuration from the YAML file at path, if path isn't
// empty, with the environment applied on top. The result is validated.
func Load(path string) (Config, error) {
	return load(path, os.LookupEnv)
}

// Read returns the configuration like Load, but without validating it. This
// allows callers to apply further overrides, such as CLI flags, before
// validating the final configuration.
func Read(path string) (Config, error) {
	return read(path, os.LookupEnv)
}

func load(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg, err := read(path, lookupEnv)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func read(path string, lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("cannot read configuration %q: %w", path, err)
		}
		if cfg, err = parse(cfg, b); err != nil {
			return Config{}, fmt.Errorf("cannot parse configuration %q: %w", path, err)
		}
	}
	if backend, ok := lookupEnv(BackendURLEnv); ok {
		cfg.BackendURL = backend
	}
	return cfg, nil
}

// parse applies the YAML configuration in b on top of cfg. Unknown keys are
// rejected to catch typos early.
func parse(cfg Config, b []byte) (Config, error) {
	var dto yamlConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&dto); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	if dto.Listen != "" {
		cfg.Listen = dto.Listen
	}
	if dto.BackendURL != "" {
		cfg.BackendURL = dto.BackendURL
	}
	if dto.PublicDir != "" {
		cfg.PublicDir = dto.PublicDir
	}
	if dto.PingTimeout != "" {
		d, err := time.ParseDuration(dto.PingTimeout)
		if err != nil {
			return Config{}, fmt.Errorf("ping_timeout: %w", err)
		}
		cfg.PingTimeout = d
	}
	return cfg, nil
}

// Validate checks the configuration. An empty backend URL is accepted, as the
// health ping is diagnostic only and simply fails.
func (c Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("%w: empty listen address", ErrInvalidConfig)
	}
	if c.PingTimeout <= 0 {
		return fmt.Errorf("%w: ping timeout must be positive, got %s",
			ErrInvalidConfig, c.PingTimeout)
	}
	if c.BackendURL == "" {
		return nil
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("%w: backend URL: %w", ErrInvalidConfig, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: backend URL %q must be an absolute http(s) URL",
			ErrInvalidConfig, c.BackendURL)
	}
	return nil
}
