// Package config holds the server configuration. Values come from an optional
// YAML file and are overridden by environment variables. The GitHub token is
// only ever read from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultAddr   = ":8080"
)

// Config is built once at process start and passed to the handler.
type Config struct {
	Token       string `yaml:"-"`
	Owner       string `yaml:"owner"`
	Repo        string `yaml:"repo"`
	APIURL      string `yaml:"api_url"`
	AllowOrigin string `yaml:"allow_origin"`
	Addr        string `yaml:"addr"`
}

// Load reads the YAML file at path (a missing file or empty path is not an
// error), then applies environment overrides and defaults.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// FromEnv builds a Config from environment variables only.
func FromEnv() Config {
	var cfg Config
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	c.Token = GetEnv("GITHUB_TOKEN", "")
	c.Owner = GetEnv("GITHUB_USER", GetEnv("GITHUB_OWNER", c.Owner))
	c.Repo = GetEnv("GITHUB_REPO", c.Repo)
	c.APIURL = GetEnv("GITHUB_API_URL", c.APIURL)
	c.AllowOrigin = GetEnv("CORS_ALLOW_ORIGIN", c.AllowOrigin)
	if v := GetEnv("ADDR", ""); v != "" {
		c.Addr = v
	} else if p := GetEnv("PORT", ""); p != "" {
		c.Addr = ":" + strings.TrimPrefix(p, ":")
	}

	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
}

// Missing lists the environment variables whose values are unset. Only the
// token is fatal for requests; the rest are reported so operators notice.
func (c Config) Missing() []string {
	var out []string
	if c.Token == "" {
		out = append(out, "GITHUB_TOKEN")
	}
	if c.Owner == "" {
		out = append(out, "GITHUB_USER")
	}
	if c.Repo == "" {
		out = append(out, "GITHUB_REPO")
	}
	return out
}

// GetEnv returns the trimmed value of an environment variable or a default when unset.
func GetEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}
