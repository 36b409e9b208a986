// Package config holds typed configuration for the kdscan server: env
// var overlay (teacher style) plus optional YAML file loading.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Cluster ClusterConfig `yaml:"cluster"`
	Cache   CacheConfig   `yaml:"cache"`
	REST    RESTConfig    `yaml:"rest"`
}

// ServerConfig holds gRPC server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	MaxConnections  int           `yaml:"max_connections"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ClusterConfig holds default k-d tree / DBSCAN parameters.
type ClusterConfig struct {
	Epsilon    float64 `yaml:"epsilon"`    // default neighborhood radius
	MinItems   int     `yaml:"min_items"`  // default minimum core population
	Dimensions int     `yaml:"dimensions"` // expected point dimensionality
	Metric     string  `yaml:"metric"`     // euclidean | squared_euclidean | manhattan | chebyshev
}

// CacheConfig holds query-result cache configuration.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

// RESTConfig holds the REST gateway's own listener, auth, and
// rate-limit configuration.
type RESTConfig struct {
	Enabled     bool     `yaml:"enabled"`
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSEnabled bool     `yaml:"cors_enabled"`
	CORSOrigins []string `yaml:"cors_origins"`

	AuthEnabled bool     `yaml:"auth_enabled"`
	JWTSecret   string   `yaml:"jwt_secret"`
	PublicPaths []string `yaml:"public_paths"`
	AdminPaths  []string `yaml:"admin_paths"`

	RateLimitEnabled bool    `yaml:"rate_limit_enabled"`
	RateLimitPerSec  float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst   int     `yaml:"rate_limit_burst"`
	RateLimitPerIP   bool    `yaml:"rate_limit_per_ip"`
	RateLimitPerUser bool    `yaml:"rate_limit_per_user"`
	RateLimitGlobal  bool    `yaml:"rate_limit_global"`
}

// Default returns recommended default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            50051,
			MaxConnections:  1000,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cluster: ClusterConfig{
			Epsilon:    0.5,
			MinItems:   4,
			Dimensions: 2,
			Metric:     "euclidean",
		},
		Cache: CacheConfig{
			Enabled:  true,
			Capacity: 1000,
			TTL:      5 * time.Minute,
		},
		REST: RESTConfig{
			Enabled:          true,
			Host:             "0.0.0.0",
			Port:             8080,
			RateLimitEnabled: true,
			RateLimitPerSec:  50,
			RateLimitBurst:   100,
			RateLimitPerIP:   true,
			PublicPaths:      []string{"/v1/health"},
		},
	}
}

// LoadFromYAML reads a YAML configuration file over a Default(),
// supplementing the teacher's env-only configuration with the
// file-based loading convention used elsewhere in the example corpus.
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables, overlaid
// on Default().
func LoadFromEnv() *Config {
	cfg := Default()

	if host := os.Getenv("KDSCAN_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("KDSCAN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if maxConn := os.Getenv("KDSCAN_MAX_CONNECTIONS"); maxConn != "" {
		if mc, err := strconv.Atoi(maxConn); err == nil {
			cfg.Server.MaxConnections = mc
		}
	}
	if timeout := os.Getenv("KDSCAN_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := time.ParseDuration(timeout); err == nil {
			cfg.Server.RequestTimeout = t
		}
	}

	if eps := os.Getenv("KDSCAN_EPSILON"); eps != "" {
		if e, err := strconv.ParseFloat(eps, 64); err == nil {
			cfg.Cluster.Epsilon = e
		}
	}
	if min := os.Getenv("KDSCAN_MIN_ITEMS"); min != "" {
		if m, err := strconv.Atoi(min); err == nil {
			cfg.Cluster.MinItems = m
		}
	}
	if dims := os.Getenv("KDSCAN_DIMENSIONS"); dims != "" {
		if d, err := strconv.Atoi(dims); err == nil {
			cfg.Cluster.Dimensions = d
		}
	}
	if metric := os.Getenv("KDSCAN_METRIC"); metric != "" {
		cfg.Cluster.Metric = metric
	}

	if cacheEnabled := os.Getenv("KDSCAN_CACHE_ENABLED"); cacheEnabled == "false" {
		cfg.Cache.Enabled = false
	}
	if capacity := os.Getenv("KDSCAN_CACHE_CAPACITY"); capacity != "" {
		if c, err := strconv.Atoi(capacity); err == nil {
			cfg.Cache.Capacity = c
		}
	}
	if ttl := os.Getenv("KDSCAN_CACHE_TTL"); ttl != "" {
		if t, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = t
		}
	}

	if restEnabled := os.Getenv("KDSCAN_REST_ENABLED"); restEnabled == "false" {
		cfg.REST.Enabled = false
	}
	if secret := os.Getenv("KDSCAN_JWT_SECRET"); secret != "" {
		cfg.REST.AuthEnabled = true
		cfg.REST.JWTSecret = secret
	}

	return cfg
}

// Validate checks the configuration for boundary violations; per
// spec.md's error-handling design, this is where min_items/epsilon get
// rejected before ever reaching the DBSCAN driver.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxConnections < 1 {
		return fmt.Errorf("invalid max connections: %d (must be > 0)", c.Server.MaxConnections)
	}

	if c.Cluster.MinItems < 1 {
		return fmt.Errorf("invalid min_items: %d (must be >= 1)", c.Cluster.MinItems)
	}
	if c.Cluster.Epsilon < 0 {
		return fmt.Errorf("invalid epsilon: %v (must be >= 0)", c.Cluster.Epsilon)
	}
	if c.Cluster.Dimensions < 1 {
		return fmt.Errorf("invalid dimensions: %d (must be > 0)", c.Cluster.Dimensions)
	}

	if c.Cache.Enabled && c.Cache.Capacity < 1 {
		return fmt.Errorf("invalid cache capacity: %d (must be > 0)", c.Cache.Capacity)
	}

	if c.REST.Enabled && (c.REST.Port < 1 || c.REST.Port > 65535) {
		return fmt.Errorf("invalid REST port: %d (must be 1-65535)", c.REST.Port)
	}
	if c.REST.AuthEnabled && c.REST.JWTSecret == "" {
		return fmt.Errorf("REST auth enabled but no JWT secret configured")
	}

	return nil
}

// Address returns the server address (host:port).
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the REST gateway's address (host:port).
func (c *RESTConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
