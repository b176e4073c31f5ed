package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/campaign-vault/internal/config"
	"github.com/calvinalkan/campaign-vault/pkg/entity"
	"github.com/calvinalkan/campaign-vault/pkg/vault"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	err = os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func load(t *testing.T, input config.LoadInput) config.Config {
	t.Helper()

	cfg, err := config.Load(input)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	return cfg
}

func Test_Load_Returns_Defaults_When_No_Files_Exist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := load(t, config.LoadInput{WorkDirOverride: dir, Env: map[string]string{}})

	if got, want := cfg.VaultDirAbs, dir; got != want {
		t.Errorf("VaultDirAbs=%q, want=%q", got, want)
	}

	if got, want := cfg.Format, vault.FormatMarkdown; got != want {
		t.Errorf("Format=%q, want=%q", got, want)
	}

	if got, want := cfg.Level, slog.LevelWarn; got != want {
		t.Errorf("Level=%v, want=%v", got, want)
	}

	if got, want := cfg.MaxAge, 2*time.Second; got != want {
		t.Errorf("MaxAge=%v, want=%v", got, want)
	}

	if diff := cmp.Diff(config.Sources{}, cfg.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}
}

func Test_Load_Layers_Project_Over_Global_When_Both_Exist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	xdg := t.TempDir()

	writeFile(t, filepath.Join(xdg, "vault", "config.json"), `{
		// global defaults
		"vault_dir": "global-vault",
		"log_level": "info",
		"type_aliases": {"hamlet": "location", "villain": "npc"},
	}`)
	writeFile(t, filepath.Join(dir, config.FileName), `{
		"vault_dir": "campaign",
		"default_format": "json",
		"type_aliases": {"villain": "faction"},
		"backlink_fields": {"quest": ["links", "giver"]}
	}`)

	cfg := load(t, config.LoadInput{WorkDirOverride: dir, Env: map[string]string{"XDG_CONFIG_HOME": xdg}})

	if got, want := cfg.VaultDirAbs, filepath.Join(dir, "campaign"); got != want {
		t.Errorf("VaultDirAbs=%q, want=%q", got, want)
	}

	if got, want := cfg.Format, vault.FormatJSON; got != want {
		t.Errorf("Format=%q, want=%q", got, want)
	}

	if got, want := cfg.Level, slog.LevelInfo; got != want {
		t.Errorf("Level=%v, want=%v", got, want)
	}

	wantAliases := map[string]string{"hamlet": "location", "villain": "faction"}
	if diff := cmp.Diff(wantAliases, cfg.TypeAliases); diff != "" {
		t.Errorf("aliases mismatch (-want +got):\n%s", diff)
	}

	wantSources := config.Sources{
		Global:  filepath.Join(xdg, "vault", "config.json"),
		Project: filepath.Join(dir, config.FileName),
	}
	if diff := cmp.Diff(wantSources, cfg.Sources); diff != "" {
		t.Errorf("sources mismatch (-want +got):\n%s", diff)
	}

	reg := cfg.Registry()
	if got, ok := reg.Lookup("Hamlet"); !ok || got != entity.Location {
		t.Errorf("Lookup(Hamlet)=%q,%v, want location", got, ok)
	}

	opts := cfg.BacklinkOptions(reg)
	if diff := cmp.Diff([]string{"links", "giver"}, opts.FieldsByType[entity.Quest]); diff != "" {
		t.Errorf("quest fields mismatch (-want +got):\n%s", diff)
	}

	if len(opts.FieldsByType[entity.NPC]) == 0 {
		t.Error("npc fields should keep the schema defaults")
	}
}

func Test_Load_Applies_Cli_Overrides_When_Given(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"vault_dir": "from-file", "log_level": "error"}`)

	override := "/srv/vault"
	cfg := load(t, config.LoadInput{
		WorkDirOverride:  dir,
		VaultDirOverride: &override,
		LogLevelOverride: "debug",
	})

	if got, want := cfg.VaultDirAbs, "/srv/vault"; got != want {
		t.Errorf("VaultDirAbs=%q, want=%q", got, want)
	}

	if got, want := cfg.Level, slog.LevelDebug; got != want {
		t.Errorf("Level=%v, want=%v", got, want)
	}
}

func Test_Load_Uses_Explicit_Config_File_When_Path_Given(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, config.FileName), `{"vault_dir": "ignored"}`)
	writeFile(t, filepath.Join(dir, "alt.json"), `{"vault_dir": "alt", "index_max_age": "1m"}`)

	cfg := load(t, config.LoadInput{WorkDirOverride: dir, ConfigPath: "alt.json"})

	if got, want := cfg.VaultDirAbs, filepath.Join(dir, "alt"); got != want {
		t.Errorf("VaultDirAbs=%q, want=%q", got, want)
	}

	if got, want := cfg.MaxAge, time.Minute; got != want {
		t.Errorf("MaxAge=%v, want=%v", got, want)
	}
}

func Test_Load_Returns_Sentinel_Errors_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	empty := ""

	tests := []struct {
		name    string
		file    string
		input   config.LoadInput
		wantErr error
	}{
		{name: "missing explicit file", input: config.LoadInput{ConfigPath: "nope.json"}, wantErr: config.ErrConfigFileNotFound},
		{name: "broken jsonc", file: `{"vault_dir": `, wantErr: config.ErrConfigInvalid},
		{name: "unknown key", file: `{"index_dir": "x"}`, wantErr: config.ErrConfigInvalid},
		{name: "empty vault dir in file", file: `{"vault_dir": ""}`, wantErr: config.ErrVaultDirEmpty},
		{name: "empty vault dir flag", input: config.LoadInput{VaultDirOverride: &empty}, wantErr: config.ErrVaultDirEmpty},
		{name: "bad format", file: `{"default_format": "yaml"}`, wantErr: config.ErrInvalidFormat},
		{name: "bad level", file: `{"log_level": "loud"}`, wantErr: config.ErrInvalidLogLevel},
		{name: "bad max age", file: `{"index_max_age": "soon"}`, wantErr: config.ErrInvalidMaxAge},
		{name: "alias to unknown type", file: `{"type_aliases": {"pub": "tavern"}}`, wantErr: config.ErrInvalidTypeAlias},
		{name: "backlinks for unknown type", file: `{"backlink_fields": {"tavern": ["links"]}}`, wantErr: config.ErrInvalidBacklinks},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			if tc.file != "" {
				writeFile(t, filepath.Join(dir, config.FileName), tc.file)
			}

			input := tc.input
			input.WorkDirOverride = dir

			_, err := config.Load(input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err=%v, want %v", err, tc.wantErr)
			}
		})
	}
}

func Test_FormatConfig_Omits_Computed_Fields(t *testing.T) {
	t.Parallel()

	cfg := load(t, config.LoadInput{WorkDirOverride: t.TempDir()})

	got, err := config.FormatConfig(cfg)
	if err != nil {
		t.Fatalf("FormatConfig: %v", err)
	}

	want := `{
  "vault_dir": ".",
  "default_format": "markdown",
  "log_level": "warn",
  "index_max_age": "2s"
}`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}
