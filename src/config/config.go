package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hkaab/elevator.manager/src/features"
)

const (
	GroundFloor         = 0
	DefaultMaxFloor     = 10
	DefaultCapacity     = 8
	DefaultTickInterval = 1 * time.Second
	DefaultHTTPAddr     = ":8080"
	DefaultFailureRate  = 0.1
	DefaultHWDelay      = 100 * time.Millisecond
)

type Config struct {
	Building       Building        `yaml:"building"`
	OperatingHours OperatingHours  `yaml:"operating_hours"`
	Features       map[string]bool `yaml:"features"`
	TickInterval   time.Duration   `yaml:"tick_interval"`
	HTTPAddr       string          `yaml:"http_addr"`
	LogLevel       string          `yaml:"log_level"`
	LogFile        string          `yaml:"log_file"`
	Hardware       Hardware        `yaml:"hardware"`
}

type Building struct {
	MaxFloor int      `yaml:"max_floor"`
	Capacity int      `yaml:"capacity"`
	Public   CabGroup `yaml:"public"`
	Private  CabGroup `yaml:"private"`
	Service  CabGroup `yaml:"service"`
}

// CabGroup describes how many cabs of one type exist and what they are fitted with.
type CabGroup struct {
	Count   int  `yaml:"count"`
	Music   bool `yaml:"music"`
	Speaker bool `yaml:"speaker"`
}

type OperatingHours struct {
	Service     Window `yaml:"service"`
	UpDirection Window `yaml:"up_direction"`
}

type Hardware struct {
	FailureRate float64       `yaml:"failure_rate"`
	Delay       time.Duration `yaml:"delay"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Building: Building{
			MaxFloor: DefaultMaxFloor,
			Capacity: DefaultCapacity,
			Public:   CabGroup{Count: 1, Music: true, Speaker: true},
			Private:  CabGroup{Count: 1, Music: true, Speaker: true},
			Service:  CabGroup{Count: 1},
		},
		OperatingHours: OperatingHours{
			Service:     Window{Start: 8 * Hour, End: 18 * Hour},
			UpDirection: Window{Start: 8 * Hour, End: 12 * Hour},
		},
		Features: map[string]bool{
			features.PublicElevators:    true,
			features.PrivateElevators:   true,
			features.ServiceElevators:   true,
			features.AccessCardRequired: true,
			features.CameraSnapshot:     true,
		},
		TickInterval: DefaultTickInterval,
		HTTPAddr:     DefaultHTTPAddr,
		LogLevel:     "info",
		Hardware: Hardware{
			FailureRate: DefaultFailureRate,
			Delay:       DefaultHWDelay,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	file, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (cfg Config) Validate() error {
	b := cfg.Building
	var errs []error
	if b.MaxFloor < 1 {
		errs = append(errs, fmt.Errorf("max_floor must be at least 1, got %d", b.MaxFloor))
	}
	if b.Capacity < 1 {
		errs = append(errs, fmt.Errorf("capacity must be at least 1, got %d", b.Capacity))
	}
	if b.Public.Count < 0 || b.Private.Count < 0 || b.Service.Count < 0 {
		errs = append(errs, errors.New("elevator counts cannot be negative"))
	}
	if b.Cabs() == 0 {
		errs = append(errs, errors.New("building has no elevators"))
	}
	if cfg.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("tick_interval must be positive, got %v", cfg.TickInterval))
	}
	if cfg.Hardware.FailureRate < 0 || cfg.Hardware.FailureRate > 1 {
		errs = append(errs, fmt.Errorf("hardware.failure_rate must be within [0,1], got %v", cfg.Hardware.FailureRate))
	}
	return errors.Join(errs...)
}

func (b Building) Cabs() int {
	return b.Public.Count + b.Private.Count + b.Service.Count
}
