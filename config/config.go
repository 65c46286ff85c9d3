// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Broker kinds selectable via NANO_BROKER.
const (
	BrokerMemory = "memory"
	BrokerNoop   = "noop"
)

// Config is centralized process configuration. Keep infra values here and
// pass typed config into builders.
type Config struct {
	ServiceName      string
	Broker           string
	PostgresDSN      string
	SubscriberBuffer int

	// EventingEnabled gates the pipeline as a whole; when false the noop
	// broker is used regardless of Broker.
	EventingEnabled bool
}

func Load() (Config, error) {
	service := os.Getenv("NANO_SERVICE_NAME")
	if service == "" {
		service = "nano"
	}

	broker := strings.TrimSpace(strings.ToLower(os.Getenv("NANO_BROKER")))
	if broker == "" {
		broker = BrokerMemory
	}
	if broker != BrokerMemory && broker != BrokerNoop {
		return Config{}, fmt.Errorf("unknown broker kind %q", broker)
	}

	cfg := Config{
		ServiceName:      service,
		Broker:           broker,
		PostgresDSN:      os.Getenv("NANO_POSTGRES_DSN"),
		SubscriberBuffer: envInt("NANO_SUBSCRIBER_BUFFER", 128),
		EventingEnabled:  envBool("NANO_EVENTING_ENABLED", true),
	}
	if !cfg.EventingEnabled {
		cfg.Broker = BrokerNoop
	}
	return cfg, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envInt(name string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
