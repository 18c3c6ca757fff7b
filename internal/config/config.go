package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const DefaultWorkers = 4

type ProjectConfig struct {
	Project string       `mapstructure:"project"`
	Version int          `mapstructure:"version"`
	Assets  AssetsConfig `mapstructure:"assets"`
	Output  OutputConfig `mapstructure:"output"`
	Neo4j   Neo4jConfig  `mapstructure:"neo4j"`
	Log     LogConfig    `mapstructure:"log"`
	Workers int          `mapstructure:"workers"`
}

type AssetsConfig struct {
	Paths     []string `mapstructure:"paths"`
	Include   []string `mapstructure:"include"`
	Exclude   []string `mapstructure:"exclude"`
	CacheSize int      `mapstructure:"cache_size"`
}

type OutputConfig struct {
	DSN    string `mapstructure:"dsn"`
	CSVDir string `mapstructure:"csv_dir"`
}

type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// LoadProjectConfig reads the project file. SOULMINER_* environment variables
// override file values (SOULMINER_OUTPUT_DSN, SOULMINER_NEO4J_PASSWORD, ...).
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SOULMINER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("log.mode", "dev")
	v.SetDefault("output.dsn", "")
	v.SetDefault("output.csv_dir", "")
	v.SetDefault("neo4j.uri", "")
	v.SetDefault("neo4j.username", "")
	v.SetDefault("neo4j.password", "")
	v.SetDefault("neo4j.database", "neo4j")
	v.SetDefault("assets.cache_size", 0)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if len(cfg.Assets.Paths) == 0 {
		return fmt.Errorf("at least one asset path is required")
	}
	for i, path := range cfg.Assets.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("asset path %d is empty", i)
		}
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if dsn := strings.TrimSpace(cfg.Output.DSN); dsn != "" {
		if !strings.HasPrefix(dsn, "sqlite://") && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
			return fmt.Errorf("unsupported output dsn scheme: %s", dsn)
		}
	}
	if cfg.Output.DSN == "" && cfg.Output.CSVDir == "" {
		return fmt.Errorf("output needs a dsn or a csv_dir")
	}
	return nil
}
