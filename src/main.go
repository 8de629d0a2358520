package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hkaab/elevator.manager/src/api"
	"github.com/hkaab/elevator.manager/src/config"
	"github.com/hkaab/elevator.manager/src/dispatcher"
	"github.com/hkaab/elevator.manager/src/features"
	"github.com/hkaab/elevator.manager/src/hardware"
	"github.com/hkaab/elevator.manager/src/utils"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML configuration")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *envPath)
	if err != nil {
		slog.Error("Invalid configuration", "err", err)
		os.Exit(1)
	}
	utils.InitLogger(utils.ParseLevel(cfg.LogLevel), cfg.LogFile)
	slog.Info("Configuration loaded",
		"maxFloor", cfg.Building.MaxFloor,
		"elevators", cfg.Building.Cabs(),
		"serviceHours", cfg.OperatingHours.Service,
		"upHours", cfg.OperatingHours.UpDirection)

	hw := hardware.NewSim(cfg.Hardware.FailureRate, cfg.Hardware.Delay)
	flags := features.NewSet(cfg.Features)
	engine := dispatcher.New(cfg.Building, cfg.OperatingHours, hw, flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiDone := make(chan struct{})
	go func() {
		defer close(apiDone)
		if err := api.NewServer(engine, flags).ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
			slog.Error("HTTP API failed", "err", err)
			stop()
		}
	}()
	engine.Run(ctx, cfg.TickInterval)
	<-apiDone
}

// loadConfig layers defaults, the YAML file and environment overrides.
// A missing config file falls back to the defaults.
func loadConfig(configPath, envPath string) (config.Config, error) {
	env, err := config.ReadEnv(envPath)
	if err != nil {
		return config.Config{}, err
	}
	if p, ok := env[config.EnvConfigPath]; ok && p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Config file not found, using defaults", "path", configPath)
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return config.Config{}, err
	}
	return cfg, config.ApplyEnv(&cfg, env)
}
