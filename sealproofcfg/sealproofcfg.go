// Package sealproofcfg loads sus-tool's YAML configuration, following the
// load-from-file-with-env-override shape of the anchor configuration loader
// this module was adapted from.
package sealproofcfg

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is sus-tool's top-level configuration.
type Config struct {
	HashTags     HashTagSettings     `yaml:"hash_tags"`
	ScriptPolicy ScriptPolicySettings `yaml:"script_policy"`
	Telemetry    TelemetrySettings   `yaml:"telemetry"`
}

// HashTagSettings names a root UUID for seeding domain-separated hashing of
// a GuMap. It is parsed (and overridable via SEALPROOF_MAP_TAG), but no
// sus-tool subcommand reads it.
type HashTagSettings struct {
	MapTag string `yaml:"map_tag"`
}

// ScriptPolicySettings lists which of the three canonical closing-script
// templates are allowed. It is parsed, but mkclosetx and mkwitness do not
// consult it: mkclosetx emits whichever template its --template flag names.
type ScriptPolicySettings struct {
	AllowOpReturn bool `yaml:"allow_op_return"`
	AllowP2SH     bool `yaml:"allow_p2sh"`
	AllowP2PKH    bool `yaml:"allow_p2pkh"`
}

// TelemetrySettings toggles the stats subcommand's counters.
type TelemetrySettings struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns sus-tool's built-in defaults, used when no config file is
// given.
func Default() *Config {
	return &Config{
		ScriptPolicy: ScriptPolicySettings{
			AllowOpReturn: true,
			AllowP2SH:     true,
			AllowP2PKH:    true,
		},
		Telemetry: TelemetrySettings{Enabled: true},
	}
}

// Load reads and parses a YAML config file at path, applying
// SEALPROOF_ environment variable overrides on top.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sealproofcfg: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("sealproofcfg: parsing %s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v, ok := os.LookupEnv("SEALPROOF_MAP_TAG"); ok {
		cfg.HashTags.MapTag = v
	}
	if v, ok := os.LookupEnv("SEALPROOF_TELEMETRY_ENABLED"); ok {
		cfg.Telemetry.Enabled = strings.EqualFold(v, "true") || v == "1"
	}
}
