// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AdminKeySalt string

	DataDriver string
	DataDir    string
	HouseKey   string
	SenateKey  string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	EnvFile string
}

// defaultEnvFile is loaded when present and no -env flag is given.
const defaultEnvFile = ".env"

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("my-vote", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")

	// Datasets
	fs.StringVar(&cfg.DataDriver, "data", "", "Dataset driver (fs, s3 or db)")
	fs.StringVar(&cfg.DataDir, "data-dir", "", "Dataset directory for the fs driver")
	fs.StringVar(&cfg.HouseKey, "house-key", "", "House dataset file or object key")
	fs.StringVar(&cfg.SenateKey, "senate-key", "", "Senate dataset file or object key")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", "", "S3 bucket")
	fs.StringVar(&cfg.S3Region, "s3-region", "", "S3 region")
	fs.StringVar(&cfg.S3Endpoint, "s3-endpoint", "", "S3 endpoint override")
	fs.BoolVar(&cfg.S3PathStyle, "s3-path-style", false, "Use path-style S3 addressing")

	fs.StringVar(&cfg.EnvFile, "env", "", "Env file to load (default .env when present)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	setFromEnv(&cfg.DatabaseURL, "DATABASE_URL", "")
	setFromEnv(&cfg.DatabaseType, "DATABASE_TYPE", "sqlite")
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	setFromEnv(&cfg.DataDriver, "DATA_DRIVER", "fs")
	setFromEnv(&cfg.DataDir, "DATA_DIR", "./data")
	setFromEnv(&cfg.HouseKey, "HOUSE_KEY", "house.json")
	setFromEnv(&cfg.SenateKey, "SENATE_KEY", "senate.json")
	setFromEnv(&cfg.S3Bucket, "S3_BUCKET", "")
	setFromEnv(&cfg.S3Region, "S3_REGION", "")
	setFromEnv(&cfg.S3Endpoint, "S3_ENDPOINT", "")
	if !cfg.S3PathStyle {
		if v := os.Getenv("S3_PATH_STYLE"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid S3_PATH_STYLE env variable")
			}
			cfg.S3PathStyle = b
		}
	}

	switch cfg.DataDriver {
	case "fs":
	case "s3":
		if cfg.S3Bucket == "" {
			return Config{}, errors.New("S3_BUCKET required for the s3 data driver")
		}
	case "db":
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required for the db data driver (use -d or DATABASE_URL env)")
		}
	default:
		return Config{}, fmt.Errorf("unsupported data driver %q", cfg.DataDriver)
	}

	// Imports need a salt to check admin keys against
	setFromEnv(&cfg.AdminKeySalt, "ADMIN_KEY_SALT", "")
	if cfg.DatabaseURL != "" && cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required when a database is configured")
	}

	return cfg, nil
}

// loadEnvFile loads path into the environment without overriding values
// already set. An empty path loads .env if it exists.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err != nil {
			return nil
		}
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func setFromEnv(v *string, key, fallback string) {
	if *v != "" {
		return
	}
	*v = os.Getenv(key)
	if *v == "" {
		*v = fallback
	}
}
