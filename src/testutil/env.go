package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethaccount/dats/src/utils"
	"github.com/joho/godotenv"
)

// GetEnv reads key after loading the project .env, when there is one.
func GetEnv(key string) string {
	envFile := filepath.Join(utils.FindProjectRoot(), ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			panic("Error loading .env file")
		}
	}

	return os.Getenv(key)
}

// RequireEnv skips the test when key is not configured.
func RequireEnv(t *testing.T, key string) string {
	t.Helper()
	value := GetEnv(key)
	if value == "" {
		t.Skipf("%s is not set", key)
	}
	return value
}
