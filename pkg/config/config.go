package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for client generation
type Config struct {
	Spec    string   `yaml:"spec"`
	Name    string   `yaml:"name"`
	Clients []Client `yaml:"clients"`
}

// Client represents configuration for a single generated client
type Client struct {
	// Type selects the emitter: typescript, react-query, swr or go
	Type        string `yaml:"type"`
	OutDir      string `yaml:"outDir"`
	PackageName string `yaml:"packageName"`
	ModuleName  string `yaml:"moduleName"`
	Name        string `yaml:"name"`
	// Version is the semantic version written into package manifests. Defaults to 0.1.0.
	Version     string   `yaml:"version"`
	IncludeTags []string `yaml:"includeTags"`
	ExcludeTags []string `yaml:"excludeTags"`
	// PreCommand is an optional command to run before SDK generation starts.
	// Uses Docker Compose array format: ["goimports", "-w", "."]
	// The command will be executed in the output directory.
	PreCommand []string `yaml:"preCommand"`
	// PostCommand is an optional command to run after SDK generation completes.
	// Uses Docker Compose array format: ["goimports", "-w", "."]
	// The command will be executed in the output directory.
	PostCommand []string `yaml:"postCommand"`
	// DefaultBaseURL is the default base URL that will be used if no base URL is provided when creating a client
	DefaultBaseURL string `yaml:"defaultBaseURL"`
	// ExcludeFiles is a list of file paths (relative to outDir) that should not be generated
	// Example: ["package.json", "src/client.ts"]
	ExcludeFiles []string `yaml:"exclude"`
}

// DefaultVersion is used when a client sets no version.
const DefaultVersion = "0.1.0"

// GetPreCommand returns the pre-generation command to execute.
func (c *Client) GetPreCommand() []string {
	return c.PreCommand
}

// GetPostCommand returns the post-generation command to execute.
func (c *Client) GetPostCommand() []string {
	return c.PostCommand
}

// ResolvedVersion returns the client version, or DefaultVersion when unset.
func (c *Client) ResolvedVersion() string {
	if c.Version == "" {
		return DefaultVersion
	}
	return c.Version
}

// Validate checks the required fields and the version format.
func (c *Client) Validate() error {
	if c.Type == "" || c.OutDir == "" || c.PackageName == "" || c.Name == "" {
		return errors.New("missing required fields (type, outDir, packageName, name)")
	}
	if c.Version != "" {
		v, err := semver.StrictNewVersion(c.Version)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", c.Version, err)
		}
		c.Version = v.String()
	}
	return nil
}

// ShouldExcludeFile checks if a file path should be excluded based on the ExcludeFiles list.
// targetPath should be an absolute path, and the comparison is done relative to OutDir.
func (c *Client) ShouldExcludeFile(targetPath string) bool {
	if len(c.ExcludeFiles) == 0 {
		return false
	}

	// Get relative path from OutDir to targetPath
	relPath, err := filepath.Rel(c.OutDir, targetPath)
	if err != nil {
		// If we can't get a relative path, the file is not under OutDir, so don't exclude
		return false
	}

	// Normalize the path (use forward slashes for consistency, handle . and ..)
	relPath = filepath.ToSlash(relPath)
	if relPath == "." {
		relPath = ""
	}

	// Check if the relative path matches any exclude pattern
	for _, excludePattern := range c.ExcludeFiles {
		// Normalize exclude pattern
		normalizedExclude := filepath.ToSlash(excludePattern)

		// Exact match
		if relPath == normalizedExclude {
			return true
		}

		// Check if the file is in a directory that matches the exclude pattern
		// For example, if exclude is "src/", then "src/client.ts" should match
		if normalizedExclude != "" && strings.HasPrefix(relPath, normalizedExclude+"/") {
			return true
		}
	}

	return false
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.Spec == "" {
		return nil, errors.New("config.spec is required")
	}
	for i := range cfg.Clients {
		c := &cfg.Clients[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("clients[%d]: %w", i, err)
		}
		if !filepath.IsAbs(c.OutDir) {
			abs, _ := filepath.Abs(c.OutDir)
			c.OutDir = abs
		}
	}
	// Do not absolutize when spec is an HTTP(S) URL
	if u, err := url.Parse(cfg.Spec); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		// keep as-is
	} else if !filepath.IsAbs(cfg.Spec) {
		abs, _ := filepath.Abs(cfg.Spec)
		cfg.Spec = abs
	}
	return &cfg, nil
}
