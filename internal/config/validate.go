package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

func (c *Config) Validate() error {
	if c.Version == 0 {
		return fmt.Errorf("config.version must be > 0")
	}

	switch c.Provider {
	case "s3", "minio":
		if c.Bucket == "" {
			return fmt.Errorf("bucket is required for provider %q", c.Provider)
		}
	case "local":
		if c.LocalPath == "" {
			return fmt.Errorf("local_path is required for provider local")
		}
	case "":
		return fmt.Errorf("provider is required")
	default:
		return fmt.Errorf("unknown provider %q (want s3, minio or local)", c.Provider)
	}

	if c.Provider == "minio" && c.Endpoint == "" {
		return fmt.Errorf("endpoint is required for provider minio")
	}

	if c.Threads < 1 {
		return fmt.Errorf("threads must be >= 1, got %d", c.Threads)
	}

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level %q", c.LogLevel)
		}
	}

	for i, n := range c.Notifications {
		if n.Type == "" {
			return fmt.Errorf("notifications[%d].type is required", i)
		}
	}

	return nil
}
