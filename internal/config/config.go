package config

import (
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the server configuration, loaded from a TOML file at startup.
type Config struct {
	ListenAddr      string   `toml:"listen_addr"`
	ProviderBaseURL string   `toml:"provider_base_url"`
	ProviderTimeout duration `toml:"provider_timeout"`
	StorePath       string   `toml:"store_path"`
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		ProviderBaseURL: "",
		ProviderTimeout: duration{10 * time.Second},
		StorePath:       "draws.db",
	}
}

// Load reads a TOML config file, filling unset fields with defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.ProviderTimeout.Duration <= 0 {
		cfg.ProviderTimeout = duration{10 * time.Second}
	}
	if cfg.StorePath == "" {
		cfg.StorePath = "draws.db"
	}
	return cfg, nil
}

// Timeout returns the provider timeout as a plain duration.
func (c Config) Timeout() time.Duration {
	return c.ProviderTimeout.Duration
}
