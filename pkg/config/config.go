// Package config loads simulation settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// Sim paces and sizes the simulation actors.
type Sim struct {
	MaxVehicles      int     `yaml:"max_vehicles"`
	MaxPassengers    int     `yaml:"max_passengers"`
	TickMS           int     `yaml:"tick_ms"`
	RenderMS         int     `yaml:"render_ms"`
	GenerateMS       int     `yaml:"generate_ms"`
	MatchMS          int     `yaml:"match_ms"`
	FailureLimit     int     `yaml:"failure_limit"`
	DistancePerCycle float64 `yaml:"distance_per_cycle"` // 0 derives from map bounds
}

// Map locates the road network input.
type Map struct {
	Path             string `yaml:"path"`              // .osm.pbf extract or .bin cache
	LargestComponent bool   `yaml:"largest_component"` // drop disconnected pockets
}

// API configures the snapshot HTTP server.
type API struct {
	Listen     string `yaml:"listen"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Seed uint64 `yaml:"seed"`
	Map  Map    `yaml:"map"`
	Sim  Sim    `yaml:"sim"`
	API  API    `yaml:"api"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Seed: 1,
		Map:  Map{Path: "map.bin"},
		Sim: Sim{
			MaxVehicles:   10,
			MaxPassengers: 10,
			TickMS:        10,
			RenderMS:      33,
			GenerateMS:    50,
			MatchMS:       50,
			FailureLimit:  10,
		},
		API: API{Listen: ":8090"},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	c := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.UnmarshalStrict(file, &c); err != nil {
			return c, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return c, err
	}
	return c, nil
}

// applyEnv overrides fields from RIDESIM_* environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("RIDESIM_MAP"); v != "" {
		c.Map.Path = v
	}
	if v := os.Getenv("RIDESIM_LISTEN"); v != "" {
		c.API.Listen = v
	}

	intVars := []struct {
		name string
		dst  *int
	}{
		{"RIDESIM_MAX_VEHICLES", &c.Sim.MaxVehicles},
		{"RIDESIM_MAX_PASSENGERS", &c.Sim.MaxPassengers},
		{"RIDESIM_TICK_MS", &c.Sim.TickMS},
		{"RIDESIM_RENDER_MS", &c.Sim.RenderMS},
		{"RIDESIM_FAILURE_LIMIT", &c.Sim.FailureLimit},
	}
	for _, iv := range intVars {
		v := os.Getenv(iv.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", iv.name, err)
		}
		*iv.dst = n
	}

	if v := os.Getenv("RIDESIM_DISTANCE_PER_CYCLE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RIDESIM_DISTANCE_PER_CYCLE: %w", err)
		}
		c.Sim.DistancePerCycle = f
	}
	if v := os.Getenv("RIDESIM_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("RIDESIM_SEED: %w", err)
		}
		c.Seed = n
	}

	return nil
}

// TickInterval returns the drive loop period.
func (s Sim) TickInterval() time.Duration { return time.Duration(s.TickMS) * time.Millisecond }

// RenderInterval returns the snapshot consumer period.
func (s Sim) RenderInterval() time.Duration { return time.Duration(s.RenderMS) * time.Millisecond }

// GenerateInterval returns the passenger generation period.
func (s Sim) GenerateInterval() time.Duration { return time.Duration(s.GenerateMS) * time.Millisecond }

// MatchInterval returns the matcher retry period.
func (s Sim) MatchInterval() time.Duration { return time.Duration(s.MatchMS) * time.Millisecond }
