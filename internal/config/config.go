// Package config loads the optional .rs-respec.yaml file at the root of the
// analyzed project.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/serializer"
)

// FileName is the name of the config file looked up in the project root.
const FileName = ".rs-respec.yaml"

// Server is one entry of the document's servers list.
type Server struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description,omitempty"`
}

// Config holds the settings of one generation run. Command-line flags are
// applied on top of it by the caller.
type Config struct {
	Info    *openapi3.Info `yaml:"info"`
	Servers []Server       `yaml:"servers"`
	// Framework forces a routing style. Empty means auto-detect.
	Framework string `yaml:"framework"`
	// Format is the output format, yaml or json.
	Format string `yaml:"format"`
	// Exclude names directories the scanner never enters.
	Exclude []string `yaml:"exclude"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Info: &openapi3.Info{
			Title:       "Generated API",
			Version:     "1.0.0",
			Description: "API documentation generated from Rust code",
		},
		Format:  string(serializer.FormatYAML),
		Exclude: []string{"target"},
	}
}

// Load returns the defaults overlaid with projectPath/.rs-respec.yaml. A
// missing file is not an error.
func Load(projectPath string) (*Config, error) {
	cfg := Default()

	configPath := filepath.Join(projectPath, FileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", configPath, err)
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// fillDefaults restores required values that the file left blank.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Info == nil {
		c.Info = def.Info
	}
	if c.Info.Title == "" {
		c.Info.Title = def.Info.Title
	}
	if c.Info.Version == "" {
		c.Info.Version = def.Info.Version
	}
	if c.Format == "" {
		c.Format = def.Format
	}
}

// Validate checks the framework and format names.
func (c *Config) Validate() error {
	if c.Framework != "" {
		if _, err := model.ParseFramework(c.Framework); err != nil {
			return err
		}
	}
	if _, err := serializer.ParseFormat(c.Format); err != nil {
		return err
	}
	for _, s := range c.Servers {
		if s.URL == "" {
			return errors.New("server entry without a url")
		}
	}
	return nil
}

// ForcedFramework returns the configured framework, if any.
func (c *Config) ForcedFramework() (model.Framework, bool) {
	if c.Framework == "" {
		return "", false
	}
	fw, err := model.ParseFramework(c.Framework)
	if err != nil {
		return "", false
	}
	return fw, true
}

// OpenAPIServers converts the servers list for the document.
func (c *Config) OpenAPIServers() openapi3.Servers {
	if len(c.Servers) == 0 {
		return nil
	}
	out := make(openapi3.Servers, len(c.Servers))
	for i, s := range c.Servers {
		out[i] = &openapi3.Server{URL: s.URL, Description: s.Description}
	}
	return out
}
