package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"trends-viewer/internal/models"
)

const envPrefix = "TRENDS"

type manager struct {
	mu     sync.RWMutex
	config *Config
	viper  *viper.Viper
}

func NewManager() Manager {
	return &manager{
		viper: viper.New(),
	}
}

// Load reads configPath when it is non-empty, then applies TRENDS_* environment
// overrides on top of the built-in defaults.
func (m *manager) Load(configPath string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setupViper()

	if configPath != "" {
		m.viper.SetConfigFile(configPath)
		if err := m.viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	m.config = &config
	return &config, nil
}

func (m *manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *manager) setupViper() {
	m.viper.SetDefault("query.topic", models.DefaultTopic)
	m.viper.SetDefault("query.timeframe", models.DefaultTimeframe)
	m.viper.SetDefault("query.category", 0)
	m.viper.SetDefault("query.geo", "")
	m.viper.SetDefault("query.property", "")
	m.viper.SetDefault("query.host_language", models.DefaultHostLanguage)
	m.viper.SetDefault("query.timezone", models.DefaultTimezone)
	m.viper.SetDefault("client.timeout", 30*time.Second)
	m.viper.SetDefault("client.min_interval", time.Second)
	m.viper.SetDefault("export.dir", "")
	m.viper.SetDefault("log.level", "info")
	m.viper.SetDefault("log.format", "console")

	m.viper.SetEnvPrefix(envPrefix)
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()
}

func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Query.Topic) == "" {
		return fmt.Errorf("query.topic cannot be empty")
	}

	if strings.TrimSpace(config.Query.Timeframe) == "" {
		return fmt.Errorf("query.timeframe cannot be empty")
	}

	if _, err := language.Parse(config.Query.HostLanguage); err != nil {
		return fmt.Errorf("query.host_language %q: %w", config.Query.HostLanguage, err)
	}

	if config.Client.Timeout <= 0 {
		return fmt.Errorf("client.timeout must be positive")
	}

	if config.Client.MinInterval < 0 {
		return fmt.Errorf("client.min_interval cannot be negative")
	}

	switch config.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", config.Log.Format)
	}

	return nil
}
