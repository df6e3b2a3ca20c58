package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"numonce/internal/calendar"
)

type APIConfig struct {
	Addr            string
	DatabaseURL     string
	SupabaseURL     string
	SupabaseAnonKey string
	AdminSecret     string
	Timezone        string
	BoardLimit      int
}

type WorkerConfig struct {
	DatabaseURL string
	Timezone    string
	SettleCron  string

	DiscordToken     string
	DiscordChannelID string
	WhatsAppStoreDSN string
	WhatsAppGroupJID string
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	_ = godotenv.Load()

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("NUMONCE_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:            addr,
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SupabaseURL:     strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/"),
		SupabaseAnonKey: strings.TrimSpace(os.Getenv("SUPABASE_ANON_KEY")),
		AdminSecret:     strings.TrimSpace(os.Getenv("NUMONCE_ADMIN_SECRET")),
		Timezone:        envDefault("NUMONCE_TIMEZONE", calendar.DefaultZone),
		BoardLimit:      envIntDefault("NUMONCE_LEADERBOARD_LIMIT", 0),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SupabaseURL == "" {
		return cfg, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return cfg, fmt.Errorf("SUPABASE_ANON_KEY is required")
	}
	if cfg.AdminSecret == "" {
		return cfg, fmt.Errorf("NUMONCE_ADMIN_SECRET is required")
	}
	return cfg, nil
}

func LoadWorkerFromEnv() (WorkerConfig, error) {
	_ = godotenv.Load()

	cfg := WorkerConfig{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Timezone:    envDefault("NUMONCE_TIMEZONE", calendar.DefaultZone),
		// A few minutes past midnight absorbs clock skew between the scheduler
		// host and submissions landing right at the boundary.
		SettleCron: envDefault("NUMONCE_SETTLE_CRON", "5 0 * * *"),

		DiscordToken:     strings.TrimSpace(os.Getenv("NUMONCE_DISCORD_TOKEN")),
		DiscordChannelID: strings.TrimSpace(os.Getenv("NUMONCE_DISCORD_CHANNEL_ID")),
		WhatsAppStoreDSN: strings.TrimSpace(os.Getenv("NUMONCE_WA_STORE_DSN")),
		WhatsAppGroupJID: strings.TrimSpace(os.Getenv("NUMONCE_WA_GROUP_JID")),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("NMO_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
