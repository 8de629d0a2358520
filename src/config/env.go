package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvConfigPath   = "ELEVATOR_CONFIG"
	EnvHTTPAddr     = "ELEVATOR_HTTP_ADDR"
	EnvLogLevel     = "ELEVATOR_LOG_LEVEL"
	EnvTickInterval = "ELEVATOR_TICK_INTERVAL"
	EnvMaxFloor     = "ELEVATOR_MAX_FLOOR"
)

// ReadEnv merges an optional .env file with the process environment.
// Variables set in the process win over the file. A missing file is not an error.
func ReadEnv(envFile string) (map[string]string, error) {
	env := map[string]string{}
	if envFile != "" {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read env file %s: %w", envFile, err)
		}
		for k, v := range fileEnv {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "ELEVATOR_") {
			env[k] = v
		}
	}
	return env, nil
}

// ApplyEnv overrides configuration fields from ELEVATOR_* variables.
func ApplyEnv(cfg *Config, env map[string]string) error {
	if v, ok := env[EnvHTTPAddr]; ok && v != "" {
		cfg.HTTPAddr = v
	}
	if v, ok := env[EnvLogLevel]; ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := env[EnvTickInterval]; ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTickInterval, err)
		}
		cfg.TickInterval = d
	}
	if v, ok := env[EnvMaxFloor]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxFloor, err)
		}
		cfg.Building.MaxFloor = n
	}
	return cfg.Validate()
}
