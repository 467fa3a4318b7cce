// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/afero"
)

var (
	// ErrReadConfig is returned when the configuration file cannot be read.
	ErrReadConfig = errors.New("failed to read config file")
	// ErrParseConfig is returned when the configuration file cannot be parsed.
	ErrParseConfig = errors.New("failed to parse config file")
	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid config value")
)

const (
	// EnvConfig overrides the configuration file path.
	EnvConfig = "GATEKIT_CONFIG"
	// DefaultPath is the configuration file looked up in the working directory.
	DefaultPath = "gatekit.yaml"
)

// Config is the tool configuration. Every field has a usable default; a
// missing config file is not an error.
type Config struct {
	Gateway   Gateway    `yaml:"gateway"`
	Push      Push       `yaml:"push"`
	Artifacts []Artifact `yaml:"artifacts"`
	UserSetup UserSetup  `yaml:"user_setup"`
}

// Gateway describes the local provisioning services and the paths they serve.
type Gateway struct {
	// MatchboxImage is the container image for the PXE/ignition server.
	MatchboxImage string `yaml:"matchbox_image"`
	// DnsmasqImage is the container image for the DHCP/DNS/TFTP server.
	DnsmasqImage string `yaml:"dnsmasq_image"`
	// HTTPPort serves rendered configs (read side of the ignition action).
	HTTPPort int `yaml:"http_port"`
	// APIPort is the matchbox gRPC API port.
	APIPort int `yaml:"api_port"`
	// DataDir holds matchbox groups/profiles.
	DataDir string `yaml:"data_dir"`
	// AssetsDir holds downloaded boot artifacts, served over HTTP.
	AssetsDir string `yaml:"assets_dir"`
}

// Push describes the remote target of the push action.
type Push struct {
	// User is the ssh/rsync login user.
	User string `yaml:"user"`
	// Dir is the remote directory receiving the working tree.
	Dir string `yaml:"dir"`
	// ReadyMarker is the file name touched after a completed push.
	ReadyMarker string `yaml:"ready_marker"`
	// ResyncSeconds is the delay between continuous resync iterations.
	ResyncSeconds int `yaml:"resync_seconds"`
}

// Artifact is one fixed external download of the fetch-deps action.
type Artifact struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// UserSetup describes the per-user environment installation.
type UserSetup struct {
	// HomeRoot is the directory whose subdirectories are the target users.
	HomeRoot string `yaml:"home_root"`
	// ToolingURL is the shared tooling archive, downloaded once per run.
	ToolingURL string `yaml:"tooling_url"`
	// ToolingDir is the local cache for the shared tooling.
	ToolingDir string `yaml:"tooling_dir"`
	// ProfileName is the shell profile file replaced in each user's home.
	ProfileName string `yaml:"profile_name"`
	// ToolsDirName is the per-user tool directory replaced in each home.
	ToolsDirName string `yaml:"tools_dir_name"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Gateway: Gateway{
			MatchboxImage: "quay.io/poseidon/matchbox:latest",
			DnsmasqImage:  "quay.io/poseidon/dnsmasq:latest",
			HTTPPort:      8080,
			APIPort:       8081,
			DataDir:       "/var/lib/matchbox",
			AssetsDir:     "/var/lib/matchbox/assets",
		},
		Push: Push{
			User:          "core",
			Dir:           "/opt/gatekit",
			ReadyMarker:   "ready",
			ResyncSeconds: 10,
		},
		UserSetup: UserSetup{
			HomeRoot:     "/home",
			ToolingDir:   "/opt/gatekit/tooling",
			ProfileName:  ".bash_profile",
			ToolsDirName: ".local/tools",
		},
	}
}

// Load reads the configuration from path. An empty path falls back to the
// GATEKIT_CONFIG environment variable and then to gatekit.yaml. A missing
// file yields the defaults; a present but unreadable or invalid file is an
// error.
func Load(fs afero.Fs, path string) (*Config, error) {
	explicit := path != ""

	if path == "" {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}

	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}

		return nil, fmt.Errorf("%w: %s: %v", ErrReadConfig, path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseConfig, path, err)
	}

	if cfg.Push.ResyncSeconds <= 0 {
		return nil, fmt.Errorf("%w: push.resync_seconds must be positive, got %d",
			ErrInvalidConfig, cfg.Push.ResyncSeconds)
	}

	return cfg, nil
}
