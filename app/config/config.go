package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log    Log    `yaml:"log"`
	DB     DB     `yaml:"db"`
	Server Server `yaml:"server"`
	OpenAI OpenAI `yaml:"openai"`
	Agent  Agent  `yaml:"agent"`
	MCP    MCP    `yaml:"mcp"`
}

type OpenAI struct {
	Fallback ModelConfig `yaml:"fallback" validate:"required"`
}

type ModelConfig struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1" validate:"required"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// OpenAI model
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free" validate:"required"`
}

type Server struct {
	// Listen address of the HTTP API
	Addr string `yaml:"addr" example:":8080"`
}

type Agent struct {
	// Seconds after which cached task references are considered stale
	StaleWindowSeconds int `yaml:"stale_window_seconds" example:"3600"`
	// Optional fixed seed for personality wording, 0 picks a random one
	PersonalitySeed int64 `yaml:"personality_seed" example:"0"`
}

type MCP struct {
	// Additionally serve the task tools over MCP stdio
	Enabled bool `yaml:"enabled" example:"false"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

type DB struct {
	// Path to the sqlite database file
	Path string `yaml:"path" example:"data/taskchat.db"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.DB.Path == "" {
		result.DB.Path = "data/taskchat.db"
	}
	if result.Server.Addr == "" {
		result.Server.Addr = ":8080"
	}
	if result.Agent.StaleWindowSeconds == 0 {
		result.Agent.StaleWindowSeconds = 3600
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
