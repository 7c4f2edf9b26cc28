package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding the config file path
const ConfigEnv = "ROUTE_PLANNER_CONFIG"

// Config is the full service configuration
type Config struct {
	Server struct {
		Addr                string  `yaml:"addr" validate:"required"`
		ReadTimeoutSeconds  int     `yaml:"read_timeout_seconds" validate:"gte=0"`
		WriteTimeoutSeconds int     `yaml:"write_timeout_seconds" validate:"gte=0"`
		IdleTimeoutSeconds  int     `yaml:"idle_timeout_seconds" validate:"gte=0"`
		RateLimitPerSecond  float64 `yaml:"rate_limit_per_second" validate:"gte=0"` // 0 disables
		RateLimitBurst      int     `yaml:"rate_limit_burst" validate:"gte=0"`
		CORSOrigin          string  `yaml:"cors_origin"`
		MaxBodyBytes        int64   `yaml:"max_body_bytes" validate:"gte=0"` // 0 disables
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Roadmap struct {
		File             string      `yaml:"file"`
		Samples          int         `yaml:"samples" validate:"gt=0,ltefield=MaxSamples"`
		MaxSamples       int         `yaml:"max_samples" validate:"gt=0"` // upper bound for requested samples
		ConnectionRadius float64     `yaml:"connection_radius" validate:"gt=0"`
		Bounds           BoundingBox `yaml:"bounds"`
		Seed             int64       `yaml:"seed"` // 0 seeds from the clock
		SaveOnBuild      bool        `yaml:"save_on_build"`
	} `yaml:"roadmap"`
	Search struct {
		Metric             string  `yaml:"metric" validate:"oneof=planar haversine"`
		MaxExpansions      int     `yaml:"max_expansions" validate:"gte=0"`
		MaxCost            float64 `yaml:"max_cost" validate:"gte=0"`
		TimeoutMillis      int     `yaml:"timeout_ms" validate:"gte=0"`
		BatchConcurrency   int     `yaml:"batch_concurrency" validate:"gt=0"`
		VisibilityMaxNodes int     `yaml:"visibility_max_nodes" validate:"gte=0"`
	} `yaml:"search"`
	Obstacles struct {
		Dir      string `yaml:"dir"`
		Simplify bool   `yaml:"simplify"`
	} `yaml:"obstacles"`
	Maze struct {
		ClimbPenalty float64 `yaml:"climb_penalty" validate:"gte=0"`
		Diagonal     bool    `yaml:"diagonal"`
	} `yaml:"maze"`
}

// Netherlands bounding box, the default sampling area
const (
	NetherlandsMinLat = 50.75
	NetherlandsMaxLat = 53.55
	NetherlandsMinLon = 3.36
	NetherlandsMaxLon = 7.23
)

func defaultConfig() Config {
	var c Config
	c.Server.Addr = ":8080"
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 30
	c.Server.IdleTimeoutSeconds = 60
	c.Server.RateLimitPerSecond = 50
	c.Server.RateLimitBurst = 100
	c.Server.CORSOrigin = "*"
	c.Server.MaxBodyBytes = 1 << 20
	c.Logging.Level = "info"
	c.Roadmap.File = "roadmap.json"
	c.Roadmap.Samples = 500
	c.Roadmap.MaxSamples = 20000
	c.Roadmap.ConnectionRadius = 0.1 // ~11 km
	c.Roadmap.Bounds = BoundingBox{
		MinX: NetherlandsMinLon, MinY: NetherlandsMinLat,
		MaxX: NetherlandsMaxLon, MaxY: NetherlandsMaxLat,
	}
	c.Search.Metric = string(MetricHaversine)
	c.Search.MaxExpansions = 200000
	c.Search.TimeoutMillis = 5000
	c.Search.BatchConcurrency = 4
	c.Search.VisibilityMaxNodes = 1000
	c.Obstacles.Dir = "nfz-polygons"
	c.Obstacles.Simplify = true
	c.Maze.ClimbPenalty = 1
	return c
}

// LoadConfig builds the config from defaults, the YAML file at path (or
// $ROUTE_PLANNER_CONFIG when path is empty) and environment overrides
func LoadConfig(path string) (Config, error) {
	c := defaultConfig()
	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&c); err != nil {
		return c, err
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("ROUTE_PLANNER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("ROUTE_PLANNER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ROUTE_PLANNER_LOG_PRETTY"); v != "" {
		c.Logging.Pretty = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("ROUTE_PLANNER_ROADMAP_FILE"); v != "" {
		c.Roadmap.File = v
	}
	if v := os.Getenv("ROUTE_PLANNER_OBSTACLE_DIR"); v != "" {
		c.Obstacles.Dir = v
	}
	if v := os.Getenv("ROUTE_PLANNER_METRIC"); v != "" {
		c.Search.Metric = v
	}
	if v := os.Getenv("ROUTE_PLANNER_MAX_EXPANSIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROUTE_PLANNER_MAX_EXPANSIONS: %w", err)
		}
		c.Search.MaxExpansions = n
	}
	if v := os.Getenv("ROUTE_PLANNER_TIMEOUT_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ROUTE_PLANNER_TIMEOUT_MS: %w", err)
		}
		c.Search.TimeoutMillis = n
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and the sampling bounds
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	b := c.Roadmap.Bounds
	if b.MaxX <= b.MinX || b.MaxY <= b.MinY {
		return fmt.Errorf("invalid config: roadmap bounds %+v are empty", b)
	}
	return nil
}
