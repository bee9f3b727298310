// Copyright 2024 PakFS Authors
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

// Package config loads the pakfs YAML configuration describing search
// paths, archives to mount, and manager limits.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SearchPath is one virtual directory entry.
type SearchPath struct {
	Path    string `yaml:"path"`
	Monitor bool   `yaml:"monitor"` // watch this root for external changes
}

// Config represents the pakfs configuration file.
type Config struct {
	Logging      string       `yaml:"logging"`        // logging level: none, debug, info, trace (case insensitive)
	SearchPaths  []SearchPath `yaml:"search_paths"`   // virtual directories, searched in order
	Archives     []string     `yaml:"archives"`       // pak files to mount, in order
	Ignores      []string     `yaml:"ignores"`        // gitignore-style patterns filtered from monitoring
	MaxDiskFiles int          `yaml:"max_disk_files"` // disk handle pool cap, 0 = unbounded
	MaxMemFiles  int          `yaml:"max_mem_files"`  // memory handle pool cap, 0 = unbounded
}

// ApplyDefaults fills zero-value fields with their defaults.
func (cfg *Config) ApplyDefaults() {
	if cfg.Ignores == nil {
		cfg.Ignores = []string{"*.swp", "*.tmp", "*~", ".DS_Store"}
	}
}

// LoggingEnabled returns whether logging is enabled (any level other than "none" or empty).
func (cfg *Config) LoggingEnabled() bool {
	level := strings.ToLower(cfg.Logging)
	return level != "" && level != "none"
}

// LogLevel returns the normalized (lowercase) logging level.
func (cfg *Config) LogLevel() string {
	return strings.ToLower(cfg.Logging)
}

// Monitoring reports whether any search path asks for monitoring.
func (cfg *Config) Monitoring() bool {
	for _, sp := range cfg.SearchPaths {
		if sp.Monitor {
			return true
		}
	}
	return false
}

// DefaultPath returns the config file path: the PAKFS_CONFIG env var when
// set, otherwise pakfs.yaml in the working directory.
func DefaultPath() string {
	if p := os.Getenv("PAKFS_CONFIG"); p != "" {
		return p
	}
	return "pakfs.yaml"
}

// Load reads a config file. A missing file is not an error; it yields nil so
// callers can tell "no config" from "bad config".
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}
