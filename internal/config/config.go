// Package config loads the CLI's HCL configuration file and supplies
// defaults when none exists.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// EnvConfigPath overrides the default config file location.
const EnvConfigPath = "WEFT_CONFIG"

// Config is the decoded weft.hcl file.
type Config struct {
	// ProjectsRoot is where project repositories live by default.
	ProjectsRoot string `hcl:"projects_root,optional"`
	// Registry is the path of the SQLite project catalog.
	Registry string `hcl:"registry,optional"`

	Author *Author `hcl:"author,block"`
	Log    *Log    `hcl:"log,block"`
}

// Author is the commit identity used for recorded mutations.
type Author struct {
	Name  string `hcl:"name,optional"`
	Email string `hcl:"email,optional"`
}

// Log tunes the CLI logger.
type Log struct {
	Level string `hcl:"level,optional"`
	JSON  bool   `hcl:"json,optional"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}

// Load reads the config file. Resolution order: the explicit path (from
// --config), the WEFT_CONFIG environment variable, then
// ~/.weft/weft.hcl. A missing file yields defaults; a malformed one is
// an error.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = filepath.Join(homeDir(), ".weft", "weft.hcl")
	}
	path = ExpandHome(path)

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := hclsimple.DecodeFile(path, nil, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize fills zero fields with defaults and expands leading tildes.
func (c *Config) normalize() {
	if c.ProjectsRoot == "" {
		c.ProjectsRoot = filepath.Join(homeDir(), ".weft", "projects")
	}
	if c.Registry == "" {
		c.Registry = filepath.Join(homeDir(), ".weft", "registry.db")
	}
	c.ProjectsRoot = ExpandHome(c.ProjectsRoot)
	c.Registry = ExpandHome(c.Registry)

	if c.Author == nil {
		c.Author = &Author{}
	}
	if c.Author.Name == "" {
		c.Author.Name = "weft"
	}
	if c.Author.Email == "" {
		c.Author.Email = "weft@localhost"
	}

	if c.Log == nil {
		c.Log = &Log{}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ExpandHome resolves a leading ~ against the user's home directory.
func ExpandHome(p string) string {
	if p == "~" {
		return homeDir()
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(homeDir(), p[2:])
	}
	return p
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
