package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"bennypowers.dev/cssaudit/internal/audit"
	"bennypowers.dev/cssaudit/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, path, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, config.Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadJSONC(t *testing.T) {
	dir := t.TempDir()
	want := write(t, dir, ".cssauditrc.json", `{
  // comments are allowed
  "format": "json",
  "nesting": "deep",
  "ignorePrefixes": ["--rh-"],
}`)

	cfg, path, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, want, path)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "deep", cfg.Nesting)
	assert.Equal(t, []string{"--rh-"}, cfg.IgnorePrefixes)
	assert.Equal(t, []string{"**/*.css"}, cfg.Include, "Unset keys keep their defaults")
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".cssauditrc.yaml", `
format: html
include:
  - "**/*.css"
  - "**/*.html"
exclude:
  - "**/dist/**"
logLevel: debug
`)

	cfg, _, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "html", cfg.Format)
	assert.Equal(t, []string{"**/*.css", "**/*.html"}, cfg.Include)
	assert.Equal(t, []string{"**/dist/**"}, cfg.Exclude)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRCFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".cssauditrc.yml", `format: html`)
	write(t, dir, ".cssauditrc.json", `{"format": "json"}`)
	write(t, dir, "package.json", `{"cssAudit": {"format": "none"}}`)

	cfg, path, err := config.Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".cssauditrc.json"), path)
	assert.Equal(t, "json", cfg.Format)
}

func TestLoadPackageJSON(t *testing.T) {
	t.Run("with key", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "package.json", `{
  "name": "my-elements",
  "cssAudit": { "nesting": "deep" }
}`)

		cfg, path, err := config.Load(dir, "")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "package.json"), path)
		assert.Equal(t, "deep", cfg.Nesting)
	})

	t.Run("without key", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "package.json", `{"name": "my-elements"}`)

		cfg, path, err := config.Load(dir, "")
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("key is not an object", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "package.json", `{"cssAudit": "deep"}`)

		_, _, err := config.Load(dir, "")
		assert.Error(t, err)
	})
}

func TestLoadExplicit(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "audit.yml", `nesting: deep`)

	cfg, got, err := config.Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Equal(t, "deep", cfg.Nesting)

	_, _, err = config.Load(dir, filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, ".cssauditrc.json", `{"format": `)

	_, _, err := config.Load(dir, "")
	assert.ErrorContains(t, err, "failed to parse config")
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	cfg.Format = "yaml"
	assert.NoError(t, cfg.Validate(), "Unknown formats fall back to terminal")

	cfg.Nesting = "recursive"
	cfg.LogLevel = "loud"
	cfg.IgnorePrefixes = []string{"rh-"}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown nesting mode "recursive"`)
	assert.ErrorContains(t, err, `unknown log level "loud"`)
	assert.ErrorContains(t, err, `ignore prefix "rh-" must start with --`)
}

func TestAuditOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Nesting = "deep"
	cfg.IgnorePrefixes = []string{"--rh-"}

	opts, err := cfg.AuditOptions()
	require.NoError(t, err)
	assert.Equal(t, audit.Options{Nesting: audit.Deep, IgnorePrefixes: []string{"--rh-"}}, opts)
}
