// Package config loads the YAML threshold schema into typed sub-configs
// for every detector plus the enrichment manager and the persistent store,
// falling back to documented defaults whenever the file is absent or a
// section is missing.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/BrizoSec/privesc-detector/internal/detect"
	"github.com/BrizoSec/privesc-detector/internal/enrichment"
)

// AppConfig is the fully-resolved, typed configuration for detectord.
type AppConfig struct {
	AuthBurst           detect.BurstConfig
	AuthChain           detect.ChainConfig
	PrivilegeEscalation detect.PrivilegeEscalationConfig
	KeytabSmuggling     detect.KeytabSmugglingConfig
	Enrichment          enrichment.Config
	StoreURI            string
	StoreDB             string
}

// rawConfig mirrors the on-disk YAML shape. Every field is a pointer so
// "absent from the file" is distinguishable from "explicitly zero".
type rawConfig struct {
	AuthBurst *struct {
		WindowSeconds            *int `yaml:"window_seconds"`
		DistinctAccountThreshold *int `yaml:"distinct_account_threshold"`
		MaxEventsTracked         *int `yaml:"max_events_tracked"`
	} `yaml:"auth_burst"`
	AuthChain *struct {
		MaxChainLength *int  `yaml:"max_chain_length"`
		MaxGraphNodes  *int  `yaml:"max_graph_nodes"`
		CycleDetection *bool `yaml:"cycle_detection"`
	} `yaml:"auth_chain"`
	PrivilegeEscalation *struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"privilege_escalation"`
	KeytabSmuggling *struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"keytab_smuggling"`
	Enrichment *struct {
		RefreshIntervalSeconds *int `yaml:"refresh_interval_seconds"`
	} `yaml:"enrichment"`
}

// Defaults, per the documented configuration schema.
const (
	defaultWindowSeconds            = 60
	defaultDistinctAccountThreshold = 5
	defaultMaxEventsTracked         = 1000
	defaultMaxChainLength           = 4
	defaultMaxGraphNodes            = 50_000
	defaultCycleDetection           = true
	defaultPrivEscEnabled           = true
	defaultKeytabEnabled            = true
	defaultRefreshIntervalSeconds   = 300
	defaultStoreURI                 = "postgres://localhost:5432/privesc_detector"
	defaultStoreDB                  = "privesc_detector"
)

func defaults() AppConfig {
	return AppConfig{
		AuthBurst: detect.BurstConfig{
			WindowSeconds:            defaultWindowSeconds,
			DistinctAccountThreshold: defaultDistinctAccountThreshold,
			MaxEventsTracked:         defaultMaxEventsTracked,
		},
		AuthChain: detect.ChainConfig{
			MaxChainLength: defaultMaxChainLength,
			MaxGraphNodes:  defaultMaxGraphNodes,
			CycleDetection: defaultCycleDetection,
		},
		PrivilegeEscalation: detect.PrivilegeEscalationConfig{Enabled: defaultPrivEscEnabled},
		KeytabSmuggling:     detect.KeytabSmugglingConfig{Enabled: defaultKeytabEnabled},
		Enrichment:          enrichment.Config{RefreshIntervalSeconds: defaultRefreshIntervalSeconds},
		StoreURI:            defaultStoreURI,
		StoreDB:             defaultStoreDB,
	}
}

// Load reads path (a YAML thresholds file) and returns a fully-resolved
// AppConfig. A missing or unparseable file silently falls back to defaults
// — config errors never abort startup. Environment variables STORE_URI/
// STORE_DB (and the MONGO_URI/MONGO_DB aliases, retained for operators
// following the originally documented names) always override whatever the
// file or defaults say.
func Load(path string) AppConfig {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return applyEnvOverrides(cfg)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return applyEnvOverrides(cfg)
	}

	if b := raw.AuthBurst; b != nil {
		if b.WindowSeconds != nil {
			cfg.AuthBurst.WindowSeconds = *b.WindowSeconds
		}
		if b.DistinctAccountThreshold != nil {
			cfg.AuthBurst.DistinctAccountThreshold = *b.DistinctAccountThreshold
		}
		if b.MaxEventsTracked != nil {
			cfg.AuthBurst.MaxEventsTracked = *b.MaxEventsTracked
		}
	}
	if c := raw.AuthChain; c != nil {
		if c.MaxChainLength != nil {
			cfg.AuthChain.MaxChainLength = *c.MaxChainLength
		}
		if c.MaxGraphNodes != nil {
			cfg.AuthChain.MaxGraphNodes = *c.MaxGraphNodes
		}
		if c.CycleDetection != nil {
			cfg.AuthChain.CycleDetection = *c.CycleDetection
		}
	}
	if p := raw.PrivilegeEscalation; p != nil && p.Enabled != nil {
		cfg.PrivilegeEscalation.Enabled = *p.Enabled
	}
	if k := raw.KeytabSmuggling; k != nil && k.Enabled != nil {
		cfg.KeytabSmuggling.Enabled = *k.Enabled
	}
	if e := raw.Enrichment; e != nil && e.RefreshIntervalSeconds != nil {
		cfg.Enrichment.RefreshIntervalSeconds = *e.RefreshIntervalSeconds
	}

	return applyEnvOverrides(cfg)
}

func applyEnvOverrides(cfg AppConfig) AppConfig {
	if v := firstNonEmpty(os.Getenv("STORE_URI"), os.Getenv("MONGO_URI")); v != "" {
		cfg.StoreURI = v
	}
	if v := firstNonEmpty(os.Getenv("STORE_DB"), os.Getenv("MONGO_DB")); v != "" {
		cfg.StoreDB = v
	}
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
