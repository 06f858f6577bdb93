package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Debug         bool
	AllowedOrigin string

	// LLM
	OpenAIAPIKey  string
	Model         string
	STTModel      string
	AssistantSpec string
	// Timeouts for remote LLM calls
	StreamTimeout     time.Duration
	GenerateTimeout   time.Duration
	TranscribeTimeout time.Duration

	// Contact form
	SuccessHold    time.Duration
	ClearOnSuccess bool

	// Database (optional; file spool is used when unset)
	DatabaseURL    string
	LeadsSpoolFile string

	// GA4 Measurement Protocol (optional; telemetry is a no-op when unset)
	GA4MeasurementID string
	GA4APISecret     string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:              getEnvDefault("PORT", "8080"),
		Debug:             getEnvBoolDefault("DEBUG", false),
		AllowedOrigin:     getEnvDefault("ALLOWED_ORIGIN", "*"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		Model:             getEnvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		STTModel:          getEnvDefault("OPENAI_STT_MODEL", "whisper-1"),
		AssistantSpec:     getEnvDefault("ASSISTANT_SPEC", "./prompts/assistant.yaml"),
		StreamTimeout:     getEnvDurationDefault("CHAT_STREAM_TIMEOUT", 120*time.Second),
		GenerateTimeout:   getEnvDurationDefault("CHAT_GENERATE_TIMEOUT", 20*time.Second),
		TranscribeTimeout: getEnvDurationDefault("CHAT_TRANSCRIBE_TIMEOUT", 180*time.Second),
		SuccessHold:       getEnvDurationDefault("CONTACT_SUCCESS_HOLD", 5*time.Second),
		ClearOnSuccess:    getEnvBoolDefault("CONTACT_CLEAR_ON_SUCCESS", false),
		DatabaseURL:       os.Getenv("DB_URL"),
		LeadsSpoolFile:    getEnvDefault("LEADS_SPOOL_FILE", "data/leads.jsonl"),
		GA4MeasurementID:  os.Getenv("GA4_MEASUREMENT_ID"),
		GA4APISecret:      os.Getenv("GA4_API_SECRET"),
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("warning: OPENAI_API_KEY is not set; assistant calls will fail until provided")
	}
	return cfg
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getEnvDurationDefault(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
