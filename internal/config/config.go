package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Release ReleaseConfig `yaml:"release"`
	Journal JournalConfig `yaml:"journal"`
}

type StorageConfig struct {
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Bucket   string `yaml:"bucket"`
	UseSSL   bool   `yaml:"useSSL"`

	// Credentials come from the environment, never from the config file.
	KeyID     string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

type ReleaseConfig struct {
	RepoPath     string `yaml:"repoPath"`
	DistDir      string `yaml:"distDir"`
	BinaryMarker string `yaml:"binaryMarker"`
}

type JournalConfig struct {
	StateDir string `yaml:"stateDir"`
}

// Load builds the configuration for a run: defaults, overlaid by the YAML
// config file if present, overlaid by the environment file and process
// environment. The result is an explicit value handed to constructors;
// nothing else reads the environment.
func Load(configPath, envPath string) (*Config, error) {
	cfg := &Config{
		Storage: StorageConfig{
			Endpoint: "s3.amazonaws.com",
			Region:   "us-east-1",
			UseSSL:   true,
		},
		Release: ReleaseConfig{
			RepoPath:     ".",
			DistDir:      "dist",
			BinaryMarker: "shipit",
		},
		Journal: JournalConfig{
			StateDir: ".shipit",
		},
	}

	data, err := os.ReadFile(configPath)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// The env file seeds the process environment; a missing file is fine.
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	}

	if v := os.Getenv("AWS_KEY_ID"); v != "" {
		cfg.Storage.KeyID = v
	}
	if v := os.Getenv("AWS_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("AWS_BUCKET_NAME"); v != "" {
		cfg.Storage.Bucket = v
	}

	return cfg, nil
}

// ValidateStorage checks that everything the storage gateway needs is set.
// Called on the publish path only; journal-only commands skip it.
func (c *Config) ValidateStorage() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("no bucket configured (set AWS_BUCKET_NAME or storage.bucket)")
	}
	if c.Storage.KeyID == "" || c.Storage.SecretKey == "" {
		return fmt.Errorf("missing storage credentials (set AWS_KEY_ID and AWS_SECRET_KEY)")
	}
	return nil
}
