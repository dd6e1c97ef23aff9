// Package config loads runtime configuration from environment
// variables.  Required variables stop the process at startup; optional
// ones fall back to documented defaults.
package config

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime settings.  Each field maps to one
// environment variable.
type Config struct {
	Env            string // APP_ENV: dev, test or prod
	Port           string // APP_PORT: HTTP listen port
	DBUser         string // DB_USER
	DBPass         string // DB_PASS (empty allowed)
	DBHost         string // DB_HOST
	DBPort         string // DB_PORT
	DBName         string // DB_NAME
	JWTSecret      string // JWT_SECRET: HS256 signing secret
	AccessTTLMin   int    // ACCESS_TOKEN_TTL_MIN: access token lifetime
	BcryptCost     int    // BCRYPT_COST: cost for password hashing
	AdminUser      string // ADMIN_USER: exam cell admin login
	AdminPassHash  string // ADMIN_PASS_HASH: bcrypt hash of the admin password
	ReaperInterval int    // REAPER_INTERVAL_MIN: minutes between expiry sweeps
}

// Load reads the configuration.  Missing required variables are fatal.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"),
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		AdminUser:      must("ADMIN_USER"),
		AdminPassHash:  must("ADMIN_PASS_HASH"),
		ReaperInterval: optInt("REAPER_INTERVAL_MIN", 60),
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is must() with integer conversion.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// optInt reads an optional integer variable with a default.
func optInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
