// Package config loads and scaffolds the tool's TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	AI     AIConfig     `toml:"ai"`
	Commit CommitConfig `toml:"commit"`
}

type AIConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKeyEnv string `toml:"api_key_env"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	MaxTokens int    `toml:"max_tokens"`
}

type CommitConfig struct {
	Format       string `toml:"format"`
	IncludeEmoji bool   `toml:"include_emoji"`
	MaxDiffSize  int    `toml:"max_diff_size"`
	AutoStage    bool   `toml:"auto_stage"`
}

func Default() Config {
	return Config{
		AI: AIConfig{
			Provider:  "openai",
			Model:     "gpt-4.1",
			APIKeyEnv: "OPENAI_API_KEY",
			MaxTokens: 2000,
		},
		Commit: CommitConfig{
			Format:      "conventional",
			MaxDiffSize: 10000,
		},
	}
}

const localConfigName = ".bicommit.toml"

func searchPaths() []string {
	paths := []string{localConfigName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "bicommit", "config.toml"),
			filepath.Join(home, localConfigName),
		)
	}
	return paths
}

// Load reads the first config file found on the search path, falling back to
// defaults when none exists. Missing fields take their default values.
func Load() (Config, error) {
	for _, path := range searchPaths() {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		cfg := Default()
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config from %s: %w", path, err)
		}
		return cfg, nil
	}
	return Default(), nil
}

// GetAPIKey resolves the API key: the config file value wins, then the
// configured environment variable, then the provider's conventional one.
func (c *Config) GetAPIKey() string {
	if c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	if c.AI.APIKeyEnv != "" {
		if key := os.Getenv(c.AI.APIKeyEnv); key != "" {
			return key
		}
	}
	switch c.AI.Provider {
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	default:
		return os.Getenv("OPENAI_API_KEY")
	}
}

const defaultConfigFile = `# bicommit configuration file

[ai]
# AI provider: "openai" or "anthropic"
provider = "openai"

# Model to use for generation
model = "gpt-4.1"

# Environment variable containing the API key
api_key_env = "OPENAI_API_KEY"

# Direct API key (not recommended for security reasons)
# api_key = "your-api-key-here"

# Custom API endpoint (optional, for proxies and compatible APIs)
# base_url = "https://api.openai.com/v1"

# Initial max_tokens for the AI response. A truncated response automatically
# doubles this up to 4000.
max_tokens = 2000

[commit]
# Commit message format
format = "conventional"

# Whether to include emoji in commit messages
include_emoji = false

# Maximum diff size in characters to send to the AI
max_diff_size = 4000

# Whether to automatically stage all changes before committing
auto_stage = false
`

// Init writes a commented default config file and returns its path. An
// existing file is only overwritten with force.
func Init(local, force bool) (string, error) {
	var path string
	if local {
		path = localConfigName
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "bicommit", "config.toml")
	}

	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("config file already exists at %s, use --force to overwrite", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// The file may hold an API key, keep it owner-only.
	if err := os.WriteFile(path, []byte(defaultConfigFile), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config to %s: %w", path, err)
	}

	return path, nil
}
