package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Env returns the trimmed value of key, or def when unset or blank.
func Env(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

// EnvInt parses key as a non-negative integer. Anything else yields def.
func EnvInt(key string, def int) int {
	if n, err := strconv.Atoi(Env(key, "")); err == nil && n >= 0 {
		return n
	}
	return def
}

// EnvDuration parses key with time.ParseDuration. Non-positive or malformed values yield def.
func EnvDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(Env(key, "")); err == nil && d > 0 {
		return d
	}
	return def
}
