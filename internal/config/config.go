package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Version       int                  `mapstructure:"version"`
	Provider      string               `mapstructure:"provider"`
	Bucket        string               `mapstructure:"bucket"`
	Region        string               `mapstructure:"region"`
	Endpoint      string               `mapstructure:"endpoint"`
	UseSSL        bool                 `mapstructure:"use_ssl"`
	AccessKey     string               `mapstructure:"access_key"`
	SecretKey     string               `mapstructure:"secret_key"`
	LocalPath     string               `mapstructure:"local_path"`
	Prefixes      []string             `mapstructure:"prefixes"`
	Patterns      []string             `mapstructure:"patterns"`
	Threads       int                  `mapstructure:"threads"`
	MultiRead     bool                 `mapstructure:"multi_read"`
	DryRun        bool                 `mapstructure:"dry_run"`
	LogLevel      string               `mapstructure:"log_level"`
	Schedule      string               `mapstructure:"schedule"`
	Notifications []NotificationConfig `mapstructure:"notifications"`
}

type NotificationConfig struct {
	Type   string              `mapstructure:"type"`
	On     []string            `mapstructure:"on"`
	Config NotificationDetails `mapstructure:"config"`
}

type NotificationDetails struct {
	SMTPHost string            `mapstructure:"smtp_host"`
	SMTPPort int               `mapstructure:"smtp_port"`
	From     string            `mapstructure:"from"`
	To       string            `mapstructure:"to"`
	Username string            `mapstructure:"username"`
	Password string            `mapstructure:"password"`
	URL      string            `mapstructure:"url"`
	Headers  map[string]string `mapstructure:"headers"`
}

// Default returns the config used when no file is given; flags fill in the
// rest.
func Default() *Config {
	return &Config{
		Version:  1,
		Provider: "s3",
		Threads:  4,
		LogLevel: "info",
	}
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("version", 1)
	v.SetDefault("provider", "s3")
	v.SetDefault("threads", 4)
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ExpandEnv(&cfg)

	return &cfg, nil
}

// ExpandEnv resolves ${VAR} references so secrets can stay out of the file.
func ExpandEnv(cfg *Config) {
	cfg.Provider = os.ExpandEnv(cfg.Provider)
	cfg.Bucket = os.ExpandEnv(cfg.Bucket)
	cfg.Region = os.ExpandEnv(cfg.Region)
	cfg.Endpoint = os.ExpandEnv(cfg.Endpoint)
	cfg.AccessKey = os.ExpandEnv(cfg.AccessKey)
	cfg.SecretKey = os.ExpandEnv(cfg.SecretKey)
	cfg.LocalPath = os.ExpandEnv(cfg.LocalPath)
	cfg.Schedule = os.ExpandEnv(cfg.Schedule)

	for i := range cfg.Prefixes {
		cfg.Prefixes[i] = os.ExpandEnv(cfg.Prefixes[i])
	}

	for i := range cfg.Notifications {
		nt := &cfg.Notifications[i]
		nt.Type = os.ExpandEnv(nt.Type)
		nt.Config.SMTPHost = os.ExpandEnv(nt.Config.SMTPHost)
		nt.Config.From = os.ExpandEnv(nt.Config.From)
		nt.Config.To = os.ExpandEnv(nt.Config.To)
		nt.Config.Username = os.ExpandEnv(nt.Config.Username)
		nt.Config.Password = os.ExpandEnv(nt.Config.Password)
		nt.Config.URL = os.ExpandEnv(nt.Config.URL)
		for k, hv := range nt.Config.Headers {
			nt.Config.Headers[k] = os.ExpandEnv(hv)
		}
	}
}
