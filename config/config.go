package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// EPOL backend
	APIBaseURL string // REST backend base URL (e.g., https://api.epol.example/api)
	APIToken   string // Pre-issued bearer token; takes precedence over credentials
	AdminEmail string
	AdminPass  string
	APITimeout time.Duration

	// Dashboard
	HTTPAddr                string
	StatsDebounce           time.Duration
	PendingRequestsEndpoint string
	EmployeeRoles           []string

	// Attendance policy fallbacks (overridden by /work-hours when available)
	WorkStartTime  string
	GracePeriod    time.Duration
	EveningCutoff  string
	MinimumMinutes int

	// Telegram Bot
	TelegramBotToken string
	AuthorizedChatID string

	// Logging
	LogLevel string
	LogDev   bool
}

// LoadConfig reads .env (when present) and the process environment.
func LoadConfig() (*Config, error) {
	// best-effort: a missing .env falls back to the real environment
	_ = godotenv.Load()

	apiURL := os.Getenv("EPOL_API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8000/api"
	}
	if u, err := url.Parse(apiURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid EPOL_API_URL %q", apiURL)
	}

	return &Config{
		APIBaseURL: apiURL,
		APIToken:   os.Getenv("EPOL_API_TOKEN"),
		AdminEmail: os.Getenv("EPOL_ADMIN_EMAIL"),
		AdminPass:  os.Getenv("EPOL_ADMIN_PASSWORD"),
		APITimeout: getEnvDuration("EPOL_API_TIMEOUT", 10*time.Second),

		HTTPAddr:                getEnv("HTTP_ADDR", ":8080"),
		StatsDebounce:           getEnvDuration("STATS_DEBOUNCE", 300*time.Millisecond),
		PendingRequestsEndpoint: getEnv("PENDING_REQUESTS_ENDPOINT", "/work-hours/requests?status=pending"),
		EmployeeRoles:           getEnvList("EMPLOYEE_ROLES", []string{"EPOL", "Officer", "Team Leader"}),

		WorkStartTime:  getEnv("WORK_START_TIME", "08:00:00"),
		GracePeriod:    getEnvDuration("WORK_GRACE_PERIOD", 5*time.Minute),
		EveningCutoff:  getEnv("WORK_EVENING_CUTOFF", "17:00:00"),
		MinimumMinutes: getEnvInt("WORK_MINIMUM_MINUTES", 480),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AuthorizedChatID: os.Getenv("AUTHORIZED_CHAT_ID"),

		LogLevel: os.Getenv("LOG_LEVEL"),
		LogDev:   os.Getenv("LOG_DEV") == "1",
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getEnvList splits a comma separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
