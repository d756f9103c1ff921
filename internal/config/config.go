// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the application.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// Config is the path to the Config file.
	Config string

	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	LogLevel string

	// SessionTTLHours is the fixed session lifetime in hours.
	SessionTTLHours int

	// BcryptCost is the password hashing cost; 0 uses the bcrypt default.
	BcryptCost int

	// S3 connection settings for image storage (AWS S3 or MinIO).
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.IntVar(&options.SessionTTLHours, "session-ttl", 168, "session lifetime in hours")
	flag.IntVar(&options.BcryptCost, "bcrypt-cost", 0, "bcrypt cost (0 = library default)")
	flag.StringVar(&options.S3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	flag.StringVar(&options.S3Region, "s3-region", "eu-central-1", "S3 region")
	flag.StringVar(&options.S3Bucket, "s3-bucket", "objekt-images", "S3 bucket for images")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		options.S3Endpoint = endpoint
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		options.S3Region = region
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		options.S3Bucket = bucket
	}
	// Credentials are env-only so they never end up in process listings.
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		options.S3AccessKey = key
	}
	if secret := os.Getenv("S3_SECRET_KEY"); secret != "" {
		options.S3SecretKey = secret
	}

	return options
}
