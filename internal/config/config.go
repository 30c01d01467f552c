// Package config reads server settings from the environment, with a .env
// file layered in for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr        string
	DatabaseURL string

	TimerSeconds    int
	SubTimerSeconds int

	KeepAliveEvery time.Duration
	IdleAfter      time.Duration
}

// Load pulls configuration from the environment. A missing .env file is not
// an error; deployed environments set variables directly.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:            envString("SCORECLOCK_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		TimerSeconds:    envInt("SCORECLOCK_TIMER_SECONDS", 900),
		SubTimerSeconds: envInt("SCORECLOCK_SUB_TIMER_SECONDS", 30),
		KeepAliveEvery:  time.Duration(envInt("SCORECLOCK_KEEPALIVE_SECONDS", 60)) * time.Second,
		IdleAfter:       time.Duration(envInt("SCORECLOCK_IDLE_EVICT_SECONDS", 300)) * time.Second,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
