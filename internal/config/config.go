package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// JWT
	JWTSecret string

	// Completion provider
	Provider       string // openai | groq | ollama | gemini
	OpenAIAPIKey   string
	GroqAPIKey     string
	GeminiAPIKey   string
	LLMBaseURL     string
	LLMModel       string
	LLMTemperature float64
	LLMMaxTokens   int
	SystemPrompt   string

	// Storage
	StoreBackend string // file | redis | postgres
	DataDir      string
	RedisURL     string
	DatabaseURL  string

	// HTTP surface
	StrictStatus bool
	FrontendURL  string
	StaticDir    string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		Env:            getEnvOrDefault("ENV", "development"),
		JWTSecret:      mustGetEnv("JWT_SECRET"),
		Provider:       getEnvOrDefault("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:   getEnvOrDefault("OPENAI_API_KEY", ""),
		GroqAPIKey:     getEnvOrDefault("GROQ_API_KEY", ""),
		GeminiAPIKey:   getEnvOrDefault("GEMINI_API_KEY", ""),
		LLMBaseURL:     getEnvOrDefault("LLM_BASE_URL", ""),
		LLMModel:       getEnvOrDefault("LLM_MODEL", ""),
		LLMTemperature: getEnvAsFloatOrDefault("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:   getEnvAsIntOrDefault("LLM_MAX_TOKENS", 500),
		SystemPrompt:   getEnvOrDefault("SYSTEM_PROMPT", "You are a helpful assistant. Answer concisely."),
		StoreBackend:   getEnvOrDefault("STORE_BACKEND", "file"),
		DataDir:        getEnvOrDefault("DATA_DIR", "./data"),
		RedisURL:       getEnvOrDefault("REDIS_URL", ""),
		DatabaseURL:    getEnvOrDefault("DATABASE_URL", ""),
		StrictStatus:   getEnvAsBoolOrDefault("STRICT_STATUS", false),
		FrontendURL:    getEnvOrDefault("FRONTEND_URL", "*"),
		StaticDir:      getEnvOrDefault("STATIC_DIR", "./web"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
