package main

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/staffdesk/auth"
)

type config struct {
	Env           string
	Port          string
	DBDSN         string
	SigningKey    string
	Issuer        string
	Audience      []string
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
}

var _ auth.Config = (*config)(nil)

func loadConfig() *config {
	// missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	return &config{
		Env:           getEnv("ENV", "development"),
		Port:          getEnv("PORT", "8080"),
		DBDSN:         getEnv("DB_DSN", "file:staffdesk.db?cache=shared"),
		SigningKey:    mustGetEnv("SIGNING_KEY"),
		Issuer:        getEnv("TOKEN_ISSUER", "staffdesk"),
		Audience:      getEnvAsList("TOKEN_AUDIENCE", nil),
		TokenTTL:      getEnvAsDuration("TOKEN_TTL", time.Hour),
		ResetTokenTTL: getEnvAsDuration("RESET_TOKEN_TTL", auth.DefaultResetTokenTTL),
	}
}

func (c *config) GetSigningKey() string           { return c.SigningKey }
func (c *config) GetTokenTTL() time.Duration      { return c.TokenTTL }
func (c *config) GetIssuer() string               { return c.Issuer }
func (c *config) GetAudience() []string           { return c.Audience }
func (c *config) GetResetTokenTTL() time.Duration { return c.ResetTokenTTL }

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func mustGetEnv(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	log.Fatalf("Missing required environment variable: %s", key)
	return ""
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := time.ParseDuration(valStr)
	if err != nil {
		log.Printf("Invalid value for %s, using default %s", key, defaultVal)
		return defaultVal
	}
	return val
}

func getEnvAsList(key string, defaultVal []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	parts := strings.Split(valStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
