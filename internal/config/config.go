// Package config handles application configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig    `yaml:"server"`
	Database   DatabaseConfig  `yaml:"database"`
	Backend    BackendConfig   `yaml:"backend"`
	RateLimits RateLimitConfig `yaml:"rate_limits"`
	Logging    LoggingConfig   `yaml:"logging"`
	Theme      ThemeConfig     `yaml:"theme"`
	Demo       DemoConfig      `yaml:"demo"`
	Deploy     DeployConfig    `yaml:"deploy"`
}

type ServerConfig struct {
	Port     int  `yaml:"port"`
	EnableUI bool `yaml:"enable_ui"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite
	Path   string `yaml:"path"`
}

// BackendConfig points at the two analysis endpoint families.
type BackendConfig struct {
	StructuredURL  string `yaml:"structured_url"`
	LegacyURL      string `yaml:"legacy_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"default_requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// ThemeConfig carries the ambient display default used before any
// preference is persisted.
type ThemeConfig struct {
	Default string `yaml:"default"` // light, dark
}

// DemoConfig tunes the sample-result activation.
type DemoConfig struct {
	DelayMs int `yaml:"delay_ms"`
}

// DeployConfig describes the remote host the deploy and diagnose commands
// operate on.
type DeployConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	User         string   `yaml:"user"`
	KeyPath      string   `yaml:"key_path"`
	ServiceName  string   `yaml:"service_name"`
	RemoteDir    string   `yaml:"remote_dir"`
	Owner        string   `yaml:"owner"`
	BackendFiles []string `yaml:"backend_files"`
	EnvFile      string   `yaml:"env_file"`
	HealthURL    string   `yaml:"health_url"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8080,
			EnableUI: true,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/extractreq.db",
		},
		Backend: BackendConfig{
			StructuredURL:  "http://localhost:8000",
			LegacyURL:      "http://localhost:8000/legacy",
			TimeoutSeconds: 120,
		},
		RateLimits: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Theme: ThemeConfig{
			Default: "light",
		},
		Demo: DemoConfig{
			DelayMs: 300,
		},
		Deploy: DeployConfig{
			Port:        22,
			ServiceName: "extractreq-backend",
			RemoteDir:   "/opt/extractreq",
			EnvFile:     "/opt/extractreq/.env",
			BackendFiles: []string{
				"app/services/pdf_service.py",
				"app/services/cache_service.py",
			},
		},
	}
}

// Load reads configuration from a YAML file. A .env file next to the working
// directory is loaded first so ${VAR} interpolation can see it.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s (run generate-config to create one)", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Interpolate environment variables
	content := interpolateEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// GenerateSample creates a sample configuration file.
func GenerateSample(path string) error {
	sample := `# ExtractReq Configuration
# See documentation for all options

server:
  port: 8080
  enable_ui: true

database:
  driver: sqlite
  path: ./data/extractreq.db

backend:
  structured_url: http://localhost:8000
  legacy_url: http://localhost:8000/legacy
  timeout_seconds: 120

rate_limits:
  default_requests_per_minute: 60

logging:
  level: info  # debug, info, warn, error
  format: json # json or text

theme:
  default: light # light or dark

demo:
  delay_ms: 300

# Remote host for the deploy and diagnose commands
deploy:
  host: ${DEPLOY_HOST}
  port: 22
  user: ${DEPLOY_USER}
  key_path: ~/.ssh/id_rsa
  service_name: extractreq-backend
  remote_dir: /opt/extractreq
  owner: extractreq:extractreq
  env_file: /opt/extractreq/.env
  health_url: http://localhost:8000/health
  backend_files:
    - app/services/pdf_service.py
    - app/services/cache_service.py
`
	return os.WriteFile(path, []byte(sample), 0644)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Backend.StructuredURL == "" {
		return fmt.Errorf("backend structured_url is required")
	}
	if c.Backend.LegacyURL == "" {
		return fmt.Errorf("backend legacy_url is required")
	}
	if c.Backend.TimeoutSeconds <= 0 {
		return fmt.Errorf("backend timeout_seconds must be positive")
	}

	if c.Theme.Default != "light" && c.Theme.Default != "dark" {
		return fmt.Errorf("unsupported theme default: %s", c.Theme.Default)
	}

	if c.Demo.DelayMs < 0 {
		return fmt.Errorf("demo delay_ms must not be negative")
	}

	return nil
}

// interpolateEnvVars replaces ${VAR_NAME} with environment variable values.
func interpolateEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match // Keep original if not set
	})
}
