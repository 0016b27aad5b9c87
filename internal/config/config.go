package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	LLMAPIKey   string `env:"LLM_API_KEY"`
	LLMBaseURL  string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel    string `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`

	JWTSecret           string `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessTTLMinutes int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"1440"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LoginRateWindowMinutes int `env:"LOGIN_RATE_WINDOW_MINUTES" envDefault:"5"`
	LoginRateMax           int `env:"LOGIN_RATE_MAX" envDefault:"10"`
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func (c *Config) LoginRateWindow() time.Duration {
	return time.Duration(c.LoginRateWindowMinutes) * time.Minute
}

// ClientConfig configura el cliente de terminal.
type ClientConfig struct {
	BaseURL            string        `env:"CHAT_BASE_URL" envDefault:"http://localhost:8080"`
	TokenFile          string        `env:"CHAT_TOKEN_FILE"`
	EphemeralThreshold int64         `env:"CHAT_EPHEMERAL_THRESHOLD" envDefault:"1000"`
	TitleMax           int           `env:"CHAT_TITLE_MAX" envDefault:"20"`
	PlaceholderTitle   string        `env:"CHAT_PLACEHOLDER_TITLE" envDefault:"New Chat"`
	FAQs               []string      `env:"CHAT_FAQS" envSeparator:"," envDefault:"Graph,What can you do?,Tell me a fun fact"`
	HTTPTimeout        time.Duration `env:"CHAT_HTTP_TIMEOUT" envDefault:"0s"`
	LogFile            string        `env:"CHAT_LOG_FILE"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClientConfig carga la configuración del cliente desde variables de entorno.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
