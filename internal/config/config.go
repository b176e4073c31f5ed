// Package config loads the vault CLI configuration from layered JSONC files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/calvinalkan/campaign-vault/pkg/backlinks"
	"github.com/calvinalkan/campaign-vault/pkg/entity"
	"github.com/calvinalkan/campaign-vault/pkg/vault"
)

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrVaultDirEmpty      = errors.New("vault-dir cannot be empty")
	ErrInvalidFormat      = errors.New("invalid default_format")
	ErrInvalidLogLevel    = errors.New("invalid log_level")
	ErrInvalidMaxAge      = errors.New("invalid index_max_age")
	ErrInvalidTypeAlias   = errors.New("invalid type_aliases entry")
	ErrInvalidBacklinks   = errors.New("invalid backlink_fields entry")
)

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	VaultDir       string              `json:"vault_dir"`
	DefaultFormat  string              `json:"default_format"`
	LogLevel       string              `json:"log_level"`
	IndexMaxAge    string              `json:"index_max_age"`
	TypeAliases    map[string]string   `json:"type_aliases,omitempty"`
	BacklinkFields map[string][]string `json:"backlink_fields,omitempty"`

	// Resolved values (computed, not serialized)
	EffectiveCwd string        `json:"-"`
	VaultDirAbs  string        `json:"-"`
	MaxAge       time.Duration `json:"-"`
	Format       vault.Format  `json:"-"`
	Level        slog.Level    `json:"-"`

	// Sources tracks which config files were loaded (for diagnostics)
	Sources Sources `json:"-"`
}

// Sources tracks which config files were loaded.
type Sources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		VaultDir:      ".",
		DefaultFormat: string(vault.FormatMarkdown),
		LogLevel:      "warn",
		IndexMaxAge:   "2s",
	}
}

// FileName is the default project config file name.
const FileName = ".vault.json"

// globalPath returns $XDG_CONFIG_HOME/vault/config.json, falling back to
// ~/.config/vault/config.json. Empty when neither variable is set.
func globalPath(env map[string]string) string {
	if xdg := env["XDG_CONFIG_HOME"]; xdg != "" {
		return filepath.Join(xdg, "vault", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "vault", "config.json")
	}

	return ""
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	WorkDirOverride  string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config flag value
	VaultDirOverride *string           // --vault-dir flag value; nil means no override
	LogLevelOverride string            // --log-level flag value
	Env              map[string]string // environment variables
}

// Load reads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config ($XDG_CONFIG_HOME/vault/config.json)
// 3. Project config file (.vault.json) or the explicit --config file
// 4. CLI overrides.
//
// Paths in the returned Config are absolute.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	global, err := loadOptional(globalPath(input.Env))
	if err != nil {
		return Config{}, err
	}

	if global.loaded {
		cfg.Sources.Global = global.path
		cfg = merge(cfg, global.cfg)
	}

	project, err := loadProject(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	if project.loaded {
		cfg.Sources.Project = project.path
		cfg = merge(cfg, project.cfg)
	}

	if input.VaultDirOverride != nil {
		if *input.VaultDirOverride == "" {
			return Config{}, ErrVaultDirEmpty
		}

		cfg.VaultDir = *input.VaultDirOverride
	}

	if input.LogLevelOverride != "" {
		cfg.LogLevel = input.LogLevelOverride
	}

	err = cfg.resolve(workDir)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

type loadedFile struct {
	cfg    Config
	path   string
	loaded bool
}

func loadOptional(path string) (loadedFile, error) {
	if path == "" {
		return loadedFile{}, nil
	}

	return loadFile(path, false)
}

// loadProject loads .vault.json from workDir or the explicit config file,
// which must exist.
func loadProject(workDir, configPath string) (loadedFile, error) {
	if configPath == "" {
		return loadFile(filepath.Join(workDir, FileName), false)
	}

	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	_, err := os.Stat(path)
	if err != nil {
		return loadedFile{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
	}

	return loadFile(path, true)
}

func loadFile(path string, mustExist bool) (loadedFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return loadedFile{}, nil
		}

		return loadedFile{}, fmt.Errorf("%w: %s: %w", ErrConfigFileRead, path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return loadedFile{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return loadedFile{cfg: cfg, path: path, loaded: true}, nil
}

// Parse decodes one JSONC config document. Unknown keys are rejected and an
// explicitly empty vault_dir is an error.
func Parse(data []byte) (Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSONC: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(standardized))
	dec.DisallowUnknownFields()

	var cfg Config

	err = dec.Decode(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("invalid JSON: %w", err)
	}

	var raw map[string]any

	_ = json.Unmarshal(standardized, &raw)

	if val, ok := raw["vault_dir"].(string); ok && val == "" {
		return Config{}, ErrVaultDirEmpty
	}

	return cfg, nil
}

// merge overlays the non-empty fields of overlay onto base. Maps are merged
// key by key.
func merge(base, overlay Config) Config {
	if overlay.VaultDir != "" {
		base.VaultDir = overlay.VaultDir
	}

	if overlay.DefaultFormat != "" {
		base.DefaultFormat = overlay.DefaultFormat
	}

	if overlay.LogLevel != "" {
		base.LogLevel = overlay.LogLevel
	}

	if overlay.IndexMaxAge != "" {
		base.IndexMaxAge = overlay.IndexMaxAge
	}

	if len(overlay.TypeAliases) > 0 {
		aliases := make(map[string]string, len(base.TypeAliases)+len(overlay.TypeAliases))
		for k, v := range base.TypeAliases {
			aliases[k] = v
		}

		for k, v := range overlay.TypeAliases {
			aliases[k] = v
		}

		base.TypeAliases = aliases
	}

	if len(overlay.BacklinkFields) > 0 {
		fields := make(map[string][]string, len(base.BacklinkFields)+len(overlay.BacklinkFields))
		for k, v := range base.BacklinkFields {
			fields[k] = v
		}

		for k, v := range overlay.BacklinkFields {
			fields[k] = v
		}

		base.BacklinkFields = fields
	}

	return base
}

// resolve validates cfg and fills the computed fields.
func (c *Config) resolve(workDir string) error {
	if c.VaultDir == "" {
		return ErrVaultDirEmpty
	}

	format, err := vault.ParseFormat(c.DefaultFormat)
	if err != nil || format == "" {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.DefaultFormat)
	}

	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}

	maxAge, err := time.ParseDuration(c.IndexMaxAge)
	if err != nil || maxAge < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidMaxAge, c.IndexMaxAge)
	}

	for alias, t := range c.TypeAliases {
		if strings.TrimSpace(alias) == "" || !entity.Type(t).IsValid() {
			return fmt.Errorf("%w: %q: %q", ErrInvalidTypeAlias, alias, t)
		}
	}

	for t, fields := range c.BacklinkFields {
		if !entity.Type(t).IsValid() || len(fields) == 0 {
			return fmt.Errorf("%w: %q", ErrInvalidBacklinks, t)
		}
	}

	c.EffectiveCwd = workDir
	c.Format = format
	c.Level = level
	c.MaxAge = maxAge

	if filepath.IsAbs(c.VaultDir) {
		c.VaultDirAbs = filepath.Clean(c.VaultDir)
	} else {
		c.VaultDirAbs = filepath.Join(workDir, c.VaultDir)
	}

	return nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
	}

	return level, nil
}

// Registry returns the default registry extended with the configured type
// aliases.
func (c Config) Registry() *entity.Registry {
	reg := entity.DefaultRegistry()

	for alias, t := range c.TypeAliases {
		reg.RegisterAlias(alias, entity.Type(t))
	}

	return reg
}

// BacklinkOptions returns the per-type candidate fields of reg with the
// configured overrides applied.
func (c Config) BacklinkOptions(reg *entity.Registry) backlinks.Options {
	byType := reg.BacklinkFields()

	for t, fields := range c.BacklinkFields {
		byType[entity.Type(t)] = append([]string(nil), fields...)
	}

	return backlinks.Options{FieldsByType: byType}
}

// FormatConfig returns the config as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}

	return string(data), nil
}
