// Package config loads css-audit settings from rc files or package.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bennypowers.dev/cssaudit/internal/audit"
	"bennypowers.dev/cssaudit/internal/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// PackageJSONKey is the package.json field holding css-audit settings
const PackageJSONKey = "cssAudit"

// rcFiles are searched in order in the working directory
var rcFiles = []string{
	".cssauditrc.json",
	".cssauditrc.jsonc",
	".cssauditrc.yaml",
	".cssauditrc.yml",
}

// Config holds the settings of a run
type Config struct {
	// Format is terminal, json, html or none. Unknown values mean terminal.
	Format string `json:"format" yaml:"format"`
	// Nesting is shallow or deep
	Nesting string `json:"nesting" yaml:"nesting"`
	// IgnorePrefixes are custom property prefixes left out of the report
	IgnorePrefixes []string `json:"ignorePrefixes" yaml:"ignorePrefixes"`
	// Include selects files when a directory is given
	Include []string `json:"include" yaml:"include"`
	// Exclude drops files found in directories or by globs
	Exclude []string `json:"exclude" yaml:"exclude"`
	// LogLevel is debug, info, warn or error
	LogLevel string `json:"logLevel" yaml:"logLevel"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Format:   "terminal",
		Nesting:  "shallow",
		Include:  []string{"**/*.css"},
		LogLevel: "info",
	}
}

// Load reads settings on top of Default. An explicit path must exist.
// Otherwise the first rc file found in dir is used, then the cssAudit key
// of dir/package.json. Load returns the path the settings came from, or ""
// when none was found.
func Load(dir, explicit string) (*Config, string, error) {
	cfg := Default()

	if explicit != "" {
		if err := cfg.readFile(explicit); err != nil {
			return nil, "", err
		}
		return cfg, explicit, nil
	}

	for _, name := range rcFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := cfg.readFile(path); err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}

	path := filepath.Join(dir, "package.json")
	found, err := cfg.readPackageJSON(path)
	if err != nil {
		return nil, "", err
	}
	if found {
		return cfg, path, nil
	}
	return cfg, "", nil
}

// readFile decodes a YAML or JSON(C) settings file, chosen by extension
func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: config path comes from the user or the working directory
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(jsonc.ToJSON(data), c)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	log.Debug("loaded config from %s", path)
	return nil
}

// readPackageJSON decodes the cssAudit key of package.json. It reports
// false when the file or the key is missing.
func (c *Config) readPackageJSON(path string) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Reading workspace package.json - local trusted environment
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &pkg); err != nil {
		return false, fmt.Errorf("failed to parse package.json: %w", err)
	}

	raw, ok := pkg[PackageJSONKey]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return false, fmt.Errorf("%s in package.json must be an object: %w", PackageJSONKey, err)
	}
	log.Debug("loaded config from %s", path)
	return true, nil
}

// Validate reports every invalid setting. Format is not checked because an
// unknown format falls back to terminal output.
func (c *Config) Validate() error {
	var errs []error
	if _, err := audit.ParseNesting(c.Nesting); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	for _, p := range c.IgnorePrefixes {
		if !strings.HasPrefix(p, "--") {
			errs = append(errs, fmt.Errorf("ignore prefix %q must start with --", p))
		}
	}
	return errors.Join(errs...)
}

// AuditOptions converts the settings used by the audit itself
func (c *Config) AuditOptions() (audit.Options, error) {
	nesting, err := audit.ParseNesting(c.Nesting)
	if err != nil {
		return audit.Options{}, err
	}
	return audit.Options{
		Nesting:        nesting,
		IgnorePrefixes: c.IgnorePrefixes,
	}, nil
}
