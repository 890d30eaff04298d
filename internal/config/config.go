package config

import (
	"time"

	"trends-viewer/internal/models"
)

type Config struct {
	Query  QueryConfig  `mapstructure:"query"`
	Client ClientConfig `mapstructure:"client"`
	Export ExportConfig `mapstructure:"export"`
	Log    LogConfig    `mapstructure:"log"`
}

type QueryConfig struct {
	Topic        string `mapstructure:"topic"`
	Timeframe    string `mapstructure:"timeframe"`
	Category     int    `mapstructure:"category"`
	Geo          string `mapstructure:"geo"`
	Property     string `mapstructure:"property"`
	HostLanguage string `mapstructure:"host_language"`
	Timezone     int    `mapstructure:"timezone"`
}

type ClientConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

type ExportConfig struct {
	// Dir receives interest_ot.csv. Empty means the executable's directory.
	Dir string `mapstructure:"dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Parameters freezes the query section into the value handed to the dispatcher.
func (q QueryConfig) Parameters() (models.QueryParameters, error) {
	return models.NewQueryParameters([]string{q.Topic}, q.Timeframe, models.QueryOptions{
		Category:     q.Category,
		Geo:          q.Geo,
		Property:     q.Property,
		HostLanguage: q.HostLanguage,
		Timezone:     q.Timezone,
	})
}

type Manager interface {
	Load(configPath string) (*Config, error)
	GetConfig() *Config
}
