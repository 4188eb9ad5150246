// ABOUTME: Configuration management for postboard with YAML config loading.
// ABOUTME: Handles storage, web, and bot settings with .env and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file leaves a value empty.
const (
	DefaultDataFile  = "data.json"
	DefaultBackend   = "json"
	DefaultWebAddr   = "127.0.0.1:8501"
	DefaultBotListen = "127.0.0.1:8502"
	DefaultPrefix    = "!"
)

// Bot transports.
const (
	TransportDiscord = "discord"
	TransportWebhook = "webhook"
	TransportConsole = "console"
)

const (
	envDataFile     = "POSTBOARD_DATA_FILE"
	envBackend      = "POSTBOARD_BACKEND"
	envWebAddr      = "POSTBOARD_WEB_ADDR"
	envBotTransport = "POSTBOARD_BOT_TRANSPORT"
)

// EnvDiscordToken names the environment variable holding the Discord bot token.
const EnvDiscordToken = "DISCORD_TOKEN"

// Config stores postboard configuration loaded from ~/.config/postboard/config.yaml.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Web     WebConfig     `yaml:"web"`
	Bot     BotConfig     `yaml:"bot"`
}

// StorageConfig selects the post store backend and its file.
type StorageConfig struct {
	Backend  string `yaml:"backend"`
	DataFile string `yaml:"data_file"`
}

// WebConfig holds the web page settings.
type WebConfig struct {
	Addr string `yaml:"addr"`
}

// BotConfig holds chat bot settings.
type BotConfig struct {
	Transport string   `yaml:"transport"`
	Listen    string   `yaml:"listen"`
	Prefix    string   `yaml:"prefix"`
	Command   []string `yaml:"command,omitempty"`
	// Token is read from DISCORD_TOKEN and never written to the config file.
	Token string `yaml:"-"`
}

// HasDiscord returns true if a Discord bot token is available.
func (c *Config) HasDiscord() bool {
	return c.Bot.Token != ""
}

// GetDataFile returns the expanded data file path.
func (c *Config) GetDataFile() (string, error) {
	if c.Storage.DataFile == "" {
		return DefaultDataFile, nil
	}
	return ExpandPath(c.Storage.DataFile)
}

// GetBackend returns the storage backend name.
func (c *Config) GetBackend() string {
	if c.Storage.Backend == "" {
		return DefaultBackend
	}
	return c.Storage.Backend
}

// GetWebAddr returns the address the web page listens on.
func (c *Config) GetWebAddr() string {
	if c.Web.Addr == "" {
		return DefaultWebAddr
	}
	return c.Web.Addr
}

// GetBotTransport returns the configured transport, defaulting to Discord
// when a token is present and to the webhook listener otherwise.
func (c *Config) GetBotTransport() string {
	if c.Bot.Transport != "" {
		return c.Bot.Transport
	}
	if c.HasDiscord() {
		return TransportDiscord
	}
	return TransportWebhook
}

// GetBotListen returns the webhook listen address.
func (c *Config) GetBotListen() string {
	if c.Bot.Listen == "" {
		return DefaultBotListen
	}
	return c.Bot.Listen
}

// GetBotPrefix returns the chat command prefix.
func (c *Config) GetBotPrefix() string {
	if c.Bot.Prefix == "" {
		return DefaultPrefix
	}
	return c.Bot.Prefix
}

// GetBotCommand returns the command line the supervisor runs. It defaults to
// this executable's bot subcommand.
func (c *Config) GetBotCommand() ([]string, error) {
	if len(c.Bot.Command) > 0 {
		return c.Bot.Command, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable: %w", err)
	}
	return []string{exe, "bot"}, nil
}

// StorageEnv returns environment assignments that point a child process at
// the same post store as c.
func (c *Config) StorageEnv() ([]string, error) {
	dataFile, err := c.GetDataFile()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data file: %w", err)
	}
	return []string{
		envDataFile + "=" + abs,
		envBackend + "=" + c.GetBackend(),
	}, nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "postboard", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// LoadEnv loads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads config from disk and applies environment overrides. Returns
// default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	cfg.applyEnv()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envDataFile); v != "" {
		c.Storage.DataFile = v
	}
	if v := os.Getenv(envBackend); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv(envWebAddr); v != "" {
		c.Web.Addr = v
	}
	if v := os.Getenv(envBotTransport); v != "" {
		c.Bot.Transport = v
	}
	c.Bot.Token = os.Getenv(EnvDiscordToken)
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
