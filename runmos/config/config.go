// Copyright 2024 The Minos Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the configuration for runmos workloads.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the configuration for a runmos workload run. Every field can be
// set from a TOML file; command line flags override the file.
type Config struct {
	// Debug enables debug logging.
	Debug bool `toml:"debug"`

	// LogFormat is the log format: "text" or "json".
	LogFormat string `toml:"log-format"`

	// DeadlockDetect enables the deadlock detector in the workload
	// process.
	DeadlockDetect bool `toml:"deadlock-detect"`

	// Threads is the number of worker threads a workload spawns.
	Threads int `toml:"threads"`

	// Rounds is the number of iterations each worker runs.
	Rounds int `toml:"rounds"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LogFormat:      "text",
		DeadlockDetect: true,
		Threads:        5,
		Rounds:         10,
	}
}

// Load reads a TOML file on top of the default configuration. Unknown keys
// are rejected so that typos do not silently fall back to defaults.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("decoding config %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in config %q: %v", path, undecoded)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return c, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q, must be 'text' or 'json'", c.LogFormat)
	}
	if c.Threads < 2 {
		return fmt.Errorf("threads is %d, must be at least 2", c.Threads)
	}
	if c.Rounds < 1 {
		return fmt.Errorf("rounds is %d, must be at least 1", c.Rounds)
	}
	return nil
}
