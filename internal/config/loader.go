package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. BIDHUB_QUEUE_SIZE.
const EnvPrefix = "BIDHUB_"

// legacyEnv maps the conventional unprefixed variables onto config keys.
var legacyEnv = map[string]string{
	"PORT":        "addr",
	"MONGODB_URI": "mongo_uri",
	"DB_NAME":     "mongo_database",
	"CORS_ORIGIN": "cors_origins",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BIDHUB_CONFIG is set
//  3. legacy env (PORT, MONGODB_URI, DB_NAME, CORS_ORIGIN)
//  4. env (prefix BIDHUB_)
//
// A .env file in the working directory, if any, is merged into the process
// environment first without overriding variables that are already set.
func Load(_ context.Context) (*Config, error) {
	_ = godotenv.Load()

	base := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	legacy := env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		name, ok := legacyEnv[key]
		if !ok || value == "" {
			return "", nil
		}
		switch name {
		case "addr":
			if !strings.Contains(value, ":") {
				value = ":" + value
			}
		case "cors_origins":
			return name, splitList(value)
		}
		return name, value
	})
	if err := k.Load(legacy, nil); err != nil {
		return nil, fmt.Errorf("%w: legacy env: %v", ErrLoadConfig, err)
	}

	// BIDHUB_QUEUE_SIZE -> queue_size; list values are comma separated.
	prefixed := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if name == "config" {
			return "", nil
		}
		if name == "cors_origins" {
			return name, splitList(value)
		}
		return name, value
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
