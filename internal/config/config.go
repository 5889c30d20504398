package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its config file.
const DefaultPath = ".nrfu/config.yaml"

// Test case store backends.
const (
	BackendDir  = "dir"
	BackendBolt = "bolt"
)

// Config represents the runtime configuration from .nrfu/config.yaml.
type Config struct {
	Device    string          `yaml:"device"`
	LogLevel  string          `yaml:"log_level"`
	TestCases TestCasesConfig `yaml:"testcases"`
	Capture   CaptureConfig   `yaml:"capture"`
	Verify    VerifyConfig    `yaml:"verify"`
	Report    ReportConfig    `yaml:"report"`
}

// TestCasesConfig selects where test case documents are kept.
type TestCasesConfig struct {
	Backend string `yaml:"backend"` // "dir" or "bolt"
	Dir     string `yaml:"dir"`
	DBPath  string `yaml:"db_path"`
}

// CaptureConfig defines where captured show outputs are read from.
type CaptureConfig struct {
	Dir         string `yaml:"dir"`
	MaxFileSize string `yaml:"max_file_size"`
}

// VerifyConfig defines verification defaults.
type VerifyConfig struct {
	FailFast    bool     `yaml:"fail_fast"`
	Concurrency int      `yaml:"concurrency"`
	Domains     []string `yaml:"domains"`
}

// ReportConfig holds report sinks.
type ReportConfig struct {
	GitHub GitHubConfig `yaml:"github"`
}

// GitHubConfig holds settings for filing failure issues.
type GitHubConfig struct {
	Token  string   `yaml:"token"`
	Repo   string   `yaml:"repo"` // owner/name
	Labels []string `yaml:"labels"`
}

// Enabled reports whether enough is configured to file issues.
func (g GitHubConfig) Enabled() bool {
	return g.Token != "" && g.Repo != ""
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		TestCases: TestCasesConfig{
			Backend: BackendDir,
			Dir:     "testcases",
			DBPath:  ".nrfu/baselines.db",
		},
		Capture: CaptureConfig{
			Dir:         "captures",
			MaxFileSize: "10MB",
		},
		Verify: VerifyConfig{
			Concurrency: 4,
		},
		Report: ReportConfig{
			GitHub: GitHubConfig{
				Labels: []string{"nrfu"},
			},
		},
	}
}

// Validate checks values the YAML decoder cannot.
func (c Config) Validate() error {
	switch c.TestCases.Backend {
	case BackendDir:
		if c.TestCases.Dir == "" {
			return fmt.Errorf("testcases.dir is required for the %s backend", BackendDir)
		}
	case BackendBolt:
		if c.TestCases.DBPath == "" {
			return fmt.Errorf("testcases.db_path is required for the %s backend", BackendBolt)
		}
	default:
		return fmt.Errorf("unknown testcases.backend %q", c.TestCases.Backend)
	}
	if c.Verify.Concurrency < 1 {
		return fmt.Errorf("verify.concurrency must be at least 1, got %d", c.Verify.Concurrency)
	}
	return nil
}

// LoadConfig reads and parses a runtime config YAML file, performing
// environment variable interpolation on its text first.
// Returns default config if the file doesn't exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	interpolated := interpolateEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match // Leave unresolved if not set.
	})
}
