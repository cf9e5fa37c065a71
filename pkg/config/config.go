package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config is read from the environment. The OpenAI key is not part of it: it is
// resolved on every request by the credentials package.
type Config struct {
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:"127.0.0.1:1420"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"tauri://localhost,http://localhost:1420,http://127.0.0.1:1420"`
	PaintingsDir       string        `env:"PAINTINGS_DIR" envDefault:"paintings"`
	SessionsDir        string        `env:"SESSIONS_DIR" envDefault:"sessions"`
	EnvFallbackFile    string        `env:"ENV_FALLBACK_FILE" envDefault:"../.env"`
	OpenAIBaseURL      string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAITimeout      time.Duration `env:"OPENAI_TIMEOUT" envDefault:"0s"`
	PersonasFile       string        `env:"PERSONAS_FILE"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFile            string        `env:"LOG_FILE"`
	TraceFile          string        `env:"TRACE_FILE"`
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	return cfg, nil
}
