// Package config reads the client configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/kasyus/kasyus-go/gateway"
)

const (
	gatewayURLVar  = "KASYUS_GATEWAY_URL"
	mediaBaseVar   = "KASYUS_MEDIA_BASE_URL"
	httpTimeoutVar = "KASYUS_HTTP_TIMEOUT"
	dataDirVar     = "KASYUS_DATA_DIR"
	redisAddrVar   = "KASYUS_REDIS_ADDR"
	redisPassVar   = "KASYUS_REDIS_PASSWORD"
	appNameVar     = "KASYUS_APP_NAME"

	defaultTimeout = 15 * time.Second
	defaultDataDir = ".kasyus"
	defaultAppName = "Kasyus"
)

// Config holds everything the client needs to reach the platform.
type Config struct {
	AppName       string
	GatewayURL    string        // API gateway base URL
	MediaBaseURL  string        // public bucket serving product images
	HTTPTimeout   time.Duration // per-request deadline for gateway calls
	DataDir       string        // session file store location
	RedisAddr     string        // optional; enables the Redis session store
	RedisPassword string
}

// New reads the configuration from environment variables, applying local
// development defaults.
func New() Config {
	return Config{
		AppName:       GetEnv(appNameVar, defaultAppName),
		GatewayURL:    GetEnv(gatewayURLVar, gateway.DefaultBaseURL),
		MediaBaseURL:  GetEnv(mediaBaseVar, gateway.DefaultMediaBaseURL),
		HTTPTimeout:   getDuration(httpTimeoutVar, defaultTimeout),
		DataDir:       GetEnv(dataDirVar, defaultDataDir),
		RedisAddr:     GetEnv(redisAddrVar, ""),
		RedisPassword: GetEnv(redisPassVar, ""),
	}
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Plain numbers are taken as seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
