package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server configuration
type Config struct {
	Port           int
	StaticDir      string
	RedisURL       string
	RedisPassword  string
	MaxSessions    int
	SessionTimeout time.Duration
	HistoryWindow  int // how many stored messages are handed to Gemini per turn
	AllowedOrigins []string
	MaxUploadSize  int64 // maximum audio upload size in bytes
	MaxBufferSize  int   // maximum buffered WebSocket audio per session in bytes

	// Default API keys. All optional: the config panel can supply keys
	// per request, and a request header always wins over these.
	AssemblyAIKey string
	GeminiKey     string
	MurfKey       string
	NewsAPIKey    string

	GeminiModel string
	MurfVoice   string
}

// LoadConfig loads configuration from environment variables with defaults
func LoadConfig() (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	config := &Config{
		Port:           8080,
		StaticDir:      "static",
		RedisURL:       "localhost:6379",
		RedisPassword:  "",
		MaxSessions:    100,
		SessionTimeout: 30 * time.Minute,
		HistoryWindow:  5,
		AllowedOrigins: []string{"*"},
		MaxUploadSize:  10 * 1024 * 1024, // 10MB default
		MaxBufferSize:  5 * 1024 * 1024,  // 5MB default
		GeminiModel:    "gemini-2.5-flash",
		MurfVoice:      "en-US-marcus",
	}

	// Optional API keys, overridable per request via headers
	config.AssemblyAIKey = os.Getenv("ASSEMBLYAI_API_KEY")
	config.GeminiKey = os.Getenv("GEMINI_API_KEY")
	config.MurfKey = os.Getenv("MURF_API_KEY")
	config.NewsAPIKey = os.Getenv("NEWSAPI_KEY")

	// Optional: PORT
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		config.Port = p
	}

	// Optional: STATIC_DIR
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		config.StaticDir = dir
	}

	// Optional: REDIS_URL
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		config.RedisURL = redisURL
	}

	// Optional: REDIS_PASSWORD
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		config.RedisPassword = redisPassword
	}

	// Optional: MAX_SESSIONS
	if maxSessions := os.Getenv("MAX_SESSIONS"); maxSessions != "" {
		m, err := strconv.Atoi(maxSessions)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_SESSIONS: %w", err)
		}
		config.MaxSessions = m
	}

	// Optional: SESSION_TIMEOUT (in minutes)
	if timeout := os.Getenv("SESSION_TIMEOUT"); timeout != "" {
		t, err := strconv.Atoi(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TIMEOUT: %w", err)
		}
		config.SessionTimeout = time.Duration(t) * time.Minute
	}

	// Optional: HISTORY_WINDOW (number of stored messages sent to the LLM)
	if window := os.Getenv("HISTORY_WINDOW"); window != "" {
		h, err := strconv.Atoi(window)
		if err != nil {
			return nil, fmt.Errorf("invalid HISTORY_WINDOW: %w", err)
		}
		if h < 1 {
			return nil, fmt.Errorf("invalid HISTORY_WINDOW: must be at least 1")
		}
		config.HistoryWindow = h
	}

	// Optional: ALLOWED_ORIGINS (comma-separated)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	// Optional: MAX_UPLOAD_SIZE (in bytes)
	if uploadSize := os.Getenv("MAX_UPLOAD_SIZE"); uploadSize != "" {
		u, err := strconv.ParseInt(uploadSize, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
		}
		config.MaxUploadSize = u
	}

	// Optional: MAX_BUFFER_SIZE (in bytes)
	if bufferSize := os.Getenv("MAX_BUFFER_SIZE"); bufferSize != "" {
		b, err := strconv.Atoi(bufferSize)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_BUFFER_SIZE: %w", err)
		}
		config.MaxBufferSize = b
	}

	// Optional: GEMINI_MODEL
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.GeminiModel = model
	}

	// Optional: MURF_VOICE
	if voice := os.Getenv("MURF_VOICE"); voice != "" {
		config.MurfVoice = voice
	}

	return config, nil
}
