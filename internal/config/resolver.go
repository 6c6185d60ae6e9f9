package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue carries a setting together with where it came from, so
// `loom config` can show users why a value is what it is.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

type ResolveOptions struct {
	ConfigPath string
	CLIVault   string
	CLIDBPath  string
}

type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	VaultRoot ResolvedValue `json:"vault_root"`
	DBPath    ResolvedValue `json:"db_path"`

	MinPersonMentions ResolvedValue `json:"min_person_mentions"`
	MinTermMentions   ResolvedValue `json:"min_term_mentions"`
}

type fileConfig struct {
	VaultRoot  string `yaml:"vault_root"`
	DBPath     string `yaml:"db_path"`
	Thresholds struct {
		PersonMentions string `yaml:"person_mentions"`
		TermMentions   string `yaml:"term_mentions"`
	} `yaml:"thresholds"`
}

func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".loom", "config.yaml")
}

// ResolveConfig layers settings: CLI flags over environment variables over
// the YAML config file over built-in defaults.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{ConfigPath: path}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.VaultRoot, cfg.VaultRoot, SourceConfig, path)
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.MinPersonMentions, cfg.Thresholds.PersonMentions, SourceConfig, path)
		apply(&out.MinTermMentions, cfg.Thresholds.TermMentions, SourceConfig, path)
	}

	applyEnv(&out.VaultRoot, "LOOM_VAULT")
	applyEnv(&out.DBPath, "LOOM_DB")
	applyEnv(&out.DBPath, "LOOM_DB_PATH")
	applyEnv(&out.MinPersonMentions, "LOOM_MIN_PERSON_MENTIONS")
	applyEnv(&out.MinTermMentions, "LOOM_MIN_TERM_MENTIONS")

	apply(&out.VaultRoot, opts.CLIVault, SourceCLI, "--vault")
	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")

	if out.VaultRoot.Value == "" {
		out.VaultRoot = ResolvedValue{Value: ".", Source: SourceDefault, From: "built-in default"}
	}
	out.VaultRoot.Value = expandUserPath(out.VaultRoot.Value)
	if out.DBPath.Value != "" {
		out.DBPath.Value = expandUserPath(out.DBPath.Value)
	}

	return out, nil
}

// PersonThreshold returns the per-document person mention floor, falling
// back to the built-in default when unset or unparseable.
func (r ResolvedConfig) PersonThreshold(fallback float64) float64 {
	return thresholdOr(r.MinPersonMentions, fallback)
}

// TermThreshold returns the per-document term mention floor.
func (r ResolvedConfig) TermThreshold(fallback float64) float64 {
	return thresholdOr(r.MinTermMentions, fallback)
}

func thresholdOr(v ResolvedValue, fallback float64) float64 {
	s := strings.TrimSpace(v.Value)
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return fallback
	}
	return f
}

func apply(dst *ResolvedValue, raw string, source ValueSource, from string) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return
	}
	*dst = ResolvedValue{Value: v, Source: source, From: from}
}

func applyEnv(dst *ResolvedValue, envKey string) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: envKey}
	}
}

func loadConfig(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

func expandUserPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
