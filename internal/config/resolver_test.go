package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOOM_VAULT", "LOOM_DB", "LOOM_DB_PATH",
		"LOOM_MIN_PERSON_MENTIONS", "LOOM_MIN_TERM_MENTIONS",
	} {
		t.Setenv(key, "")
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "does-not-exist.yaml"),
	})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if cfg.VaultRoot.Value != "." || cfg.VaultRoot.Source != SourceDefault {
		t.Errorf("vault root = %+v", cfg.VaultRoot)
	}
	if cfg.DBPath.Value != "" {
		t.Errorf("db path = %+v", cfg.DBPath)
	}
}

func TestResolveConfigFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
vault_root: /data/vault
db_path: /data/loom.db
thresholds:
  person_mentions: "3"
  term_mentions: "4"
`)
	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatalf("ResolveConfig: %v", err)
	}
	if cfg.VaultRoot.Value != "/data/vault" || cfg.VaultRoot.Source != SourceConfig {
		t.Errorf("vault root = %+v", cfg.VaultRoot)
	}
	if cfg.VaultRoot.From != path {
		t.Errorf("vault root from = %q", cfg.VaultRoot.From)
	}
	if cfg.DBPath.Value != "/data/loom.db" || cfg.DBPath.Source != SourceConfig {
		t.Errorf("db path = %+v", cfg.DBPath)
	}
	if got := cfg.PersonThreshold(2); got != 3 {
		t.Errorf("person threshold = %v", got)
	}
	if got := cfg.TermThreshold(2); got != 4 {
		t.Errorf("term threshold = %v", got)
	}
}

func TestResolveConfigEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "vault_root: /from/file\ndb_path: /from/file.db\n")
	t.Setenv("LOOM_VAULT", "/from/env")
	t.Setenv("LOOM_DB_PATH", "/from/env.db")

	cfg, err := ResolveConfig(ResolveOptions{ConfigPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VaultRoot.Value != "/from/env" || cfg.VaultRoot.Source != SourceEnv {
		t.Errorf("vault root = %+v", cfg.VaultRoot)
	}
	if cfg.VaultRoot.From != "LOOM_VAULT" {
		t.Errorf("vault root from = %q", cfg.VaultRoot.From)
	}
	if cfg.DBPath.Value != "/from/env.db" || cfg.DBPath.Source != SourceEnv {
		t.Errorf("db path = %+v", cfg.DBPath)
	}
}

func TestResolveConfigCLIWinsOverEverything(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "vault_root: /from/file\n")
	t.Setenv("LOOM_VAULT", "/from/env")

	cfg, err := ResolveConfig(ResolveOptions{
		ConfigPath: path,
		CLIVault:   "/from/cli",
		CLIDBPath:  "/from/cli.db",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VaultRoot.Value != "/from/cli" || cfg.VaultRoot.Source != SourceCLI || cfg.VaultRoot.From != "--vault" {
		t.Errorf("vault root = %+v", cfg.VaultRoot)
	}
	if cfg.DBPath.Value != "/from/cli.db" || cfg.DBPath.Source != SourceCLI {
		t.Errorf("db path = %+v", cfg.DBPath)
	}
}

func TestResolveConfigExpandsUserPaths(t *testing.T) {
	clearEnv(t)
	cfg, err := ResolveConfig(ResolveOptions{
		ConfigPath: filepath.Join(t.TempDir(), "none.yaml"),
		CLIVault:   "~/vault",
		CLIDBPath:  "~/loom.db",
	})
	if err != nil {
		t.Fatal(err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if want := filepath.Join(home, "vault"); cfg.VaultRoot.Value != want {
		t.Errorf("vault root = %q, want %q", cfg.VaultRoot.Value, want)
	}
	if want := filepath.Join(home, "loom.db"); cfg.DBPath.Value != want {
		t.Errorf("db path = %q, want %q", cfg.DBPath.Value, want)
	}
}

func TestResolveConfigMalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, "vault_root: [unclosed\n")
	if _, err := ResolveConfig(ResolveOptions{ConfigPath: path}); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestThresholdFallbacks(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  float64
	}{
		{"unset", "", 2},
		{"garbage", "lots", 2},
		{"zero", "0", 2},
		{"negative", "-3", 2},
		{"valid", "7", 7},
		{"fractional", "2.5", 2.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := ResolvedConfig{MinPersonMentions: ResolvedValue{Value: tc.value}}
			if got := cfg.PersonThreshold(2); got != tc.want {
				t.Errorf("PersonThreshold(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}
