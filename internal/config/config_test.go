package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kasyus/kasyus-go/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	c := config.New()
	require.Equal(t, "Kasyus", c.AppName)
	require.Equal(t, "http://localhost:8072", c.GatewayURL)
	require.Equal(t, "http://localhost:9000/kasyus-products", c.MediaBaseURL)
	require.Equal(t, 15*time.Second, c.HTTPTimeout)
	require.Equal(t, ".kasyus", c.DataDir)
	require.Empty(t, c.RedisAddr)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("KASYUS_GATEWAY_URL", "https://gateway.kasyus.com")
	t.Setenv("KASYUS_HTTP_TIMEOUT", "30s")
	t.Setenv("KASYUS_REDIS_ADDR", "localhost:6379")

	c := config.New()
	require.Equal(t, "https://gateway.kasyus.com", c.GatewayURL)
	require.Equal(t, 30*time.Second, c.HTTPTimeout)
	require.Equal(t, "localhost:6379", c.RedisAddr)
}

func TestNew_TimeoutAsPlainSeconds(t *testing.T) {
	t.Setenv("KASYUS_HTTP_TIMEOUT", "5")
	require.Equal(t, 5*time.Second, config.New().HTTPTimeout)
}

func TestNew_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("KASYUS_HTTP_TIMEOUT", "soon")
	require.Equal(t, 15*time.Second, config.New().HTTPTimeout)
}
