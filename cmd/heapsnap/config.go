// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/heapsnap/pkg/errs"
)

const configVersion = "1"

// Config is the optional .heapsnap.yaml project configuration. It only
// supplies defaults for flags every subcommand shares; a missing file is
// not an error — DefaultConfig covers that case.
type Config struct {
	Version string      `yaml:"version"`
	Top     int         `yaml:"top"`
	Format  string      `yaml:"format"`
	Serve   ServeConfig `yaml:"serve"`
}

// ServeConfig configures the loopback inspection server's defaults.
type ServeConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

// DefaultConfig is used when no .heapsnap.yaml is found.
func DefaultConfig() *Config {
	return &Config{
		Version: configVersion,
		Top:     20,
		Format:  "markdown",
		Serve:   ServeConfig{Bind: "127.0.0.1", Port: 8787},
	}
}

// LoadConfig resolves a .heapsnap.yaml: an explicit --config path
// first, then ./.heapsnap.yaml, then $HOME/.heapsnap.yaml. No file
// found is not an error — DefaultConfig's values are used instead.
func LoadConfig(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		var err error
		path, err = findConfigFile()
		if err != nil {
			return nil, err
		}
	}
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewIO("Cannot read configuration file",
			fmt.Sprintf("failed to read %s: %v", path, err), err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errs.NewInvalidData("Invalid configuration format",
			fmt.Sprintf("%s is not valid YAML: %v", path, err), err)
	}
	if cfg.Version != configVersion {
		return nil, errs.NewInvalidData("Unsupported configuration version",
			fmt.Sprintf("config version %q is not supported (expected %q)", cfg.Version, configVersion), nil)
	}
	return cfg, nil
}

func findConfigFile() (string, error) {
	if _, err := os.Stat("./.heapsnap.yaml"); err == nil {
		return "./.heapsnap.yaml", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	candidate := filepath.Join(home, ".heapsnap.yaml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", nil
}
