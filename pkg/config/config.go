// Package config loads process configuration from an optional config file,
// a .env file and environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/andrew/juris-chat/pkg/models"
)

// Config is the full configuration surface of the application.
type Config struct {
	// APIKey is the static bearer credential for the assistant service.
	APIKey string `mapstructure:"api_key"`
	// StorePath is the path of the local conversation database.
	StorePath string `mapstructure:"store_path"`
	// ExportDir is where exported PDF documents are written.
	ExportDir string `mapstructure:"export_dir"`
	// Listen is the address of the HTTP API in serve mode.
	Listen string `mapstructure:"listen"`
	Poll   Poll   `mapstructure:"poll"`
	// Assistants overrides the built-in assistant list when non-empty.
	Assistants []Assistant `mapstructure:"assistants"`
}

// Poll configures the run poller.
type Poll struct {
	Interval time.Duration `mapstructure:"interval"`
	MaxWait  time.Duration `mapstructure:"max_wait"`
}

// Assistant is the config-file form of an assistant entry.
type Assistant struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Color       string `mapstructure:"color"`
}

// Load reads configuration. A juris-chat.yaml next to the binary or in the
// working directory is optional; environment variables always apply. The
// OPENAI_API_KEY variable (possibly from a .env file) carries the credential.
func Load() (*Config, error) {
	// A missing .env is fine, variables may come from the environment.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("juris-chat")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/juris-chat")
	v.SetEnvPrefix("JURIS")
	v.AutomaticEnv()
	_ = v.BindEnv("api_key", "OPENAI_API_KEY")

	v.SetDefault("store_path", "juris-chat.db")
	v.SetDefault("export_dir", ".")
	v.SetDefault("listen", ":8080")
	v.SetDefault("poll.interval", time.Second)
	v.SetDefault("poll.max_wait", 2*time.Minute)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}
	return &cfg, nil
}

// AssistantList returns the configured assistants as model records, or nil
// when the config carries no override.
func (c *Config) AssistantList() []models.Assistant {
	if len(c.Assistants) == 0 {
		return nil
	}
	out := make([]models.Assistant, 0, len(c.Assistants))
	for _, a := range c.Assistants {
		out = append(out, models.Assistant{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Color:       a.Color,
		})
	}
	return out
}
