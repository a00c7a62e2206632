package env

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setupEnv(key, value string) func() {
	os.Setenv(key, value)
	return func() { os.Unsetenv(key) }
}

func TestGetEnv(t *testing.T) {
	unset := setupEnv("TEST_GETENV", "test-getenv")
	assert.Equal(t, "test-getenv", GetEnv("TEST_GETENV", "default"))
	unset()
	assert.Equal(t, "default", GetEnv("TEST_GETENV", "default"))
}

func TestGetEnvAsInt(t *testing.T) {
	unset := setupEnv("TEST_GETENVINT", "2")
	assert.Equal(t, 2, GetEnvAsInt("TEST_GETENVINT", 6))
	unset()
	assert.Equal(t, 6, GetEnvAsInt("TEST_GETENVINT", 6))
}

func TestGetEnvAsDuration(t *testing.T) {
	unset := setupEnv("TEST_GETENVDUR", "5s")
	assert.Equal(t, 5*time.Second, GetEnvAsDuration("TEST_GETENVDUR", time.Second))
	unset()
	assert.Equal(t, time.Second, GetEnvAsDuration("TEST_GETENVDUR", time.Second))
}
