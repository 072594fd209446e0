package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type serviceConfig struct {
	ListenAddr  string
	Inventory   string
	APIToken    string
	CorsOrigins []string
	MaxParallel int
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		ListenAddr:  ":9300",
		Inventory:   "inventory.toml",
		MaxParallel: 4,
	}
}

type fileConfig struct {
	ListenAddr  string   `toml:"listen_addr"`
	Inventory   string   `toml:"inventory"`
	APIToken    string   `toml:"api_token"`
	APITokenEnv string   `toml:"api_token_env"`
	CorsOrigins []string `toml:"cors_origins"`
	MaxParallel int      `toml:"max_parallel"`
}

func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serviceConfig{}, fmt.Errorf("load sonicctl config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		if addr := strings.TrimSpace(raw.ListenAddr); addr != "" {
			cfg.ListenAddr = addr
		}
	}

	if meta.IsDefined("inventory") {
		cfg.Inventory = strings.TrimSpace(raw.Inventory)
	}

	if meta.IsDefined("api_token") {
		cfg.APIToken = strings.TrimSpace(raw.APIToken)
	}

	if meta.IsDefined("api_token_env") {
		env := strings.TrimSpace(raw.APITokenEnv)
		if env != "" {
			if v := strings.TrimSpace(os.Getenv(env)); v != "" {
				cfg.APIToken = v
			}
		}
	}

	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}

	if meta.IsDefined("max_parallel") {
		if raw.MaxParallel < 1 {
			return serviceConfig{}, fmt.Errorf("max_parallel must be at least 1")
		}
		cfg.MaxParallel = raw.MaxParallel
	}

	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
