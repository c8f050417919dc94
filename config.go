package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"lcanotice/internal/lca"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

const (
	defaultConfigFile = "lca.yaml"
	envPrefix         = "LCA"
)

type FilerConfig struct {
	PublicAccessAddress string `yaml:"publicAccessAddress" split_words:"true"`
	PostingDays         int    `yaml:"postingDays" split_words:"true"`
}

type PDFConfig struct {
	Paper    string `yaml:"paper"`
	Font     string `yaml:"font"`
	FontFile string `yaml:"fontFile" split_words:"true"` // UTF-8 TrueType font
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"pass"`
}

type EmailConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type ServerConfig struct {
	Port            uint `yaml:"port"`
	ReadTimeoutSec  uint `yaml:"readTimeoutSec" split_words:"true"`
	WriteTimeoutSec uint `yaml:"writeTimeoutSec" split_words:"true"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type Config struct {
	Filer  FilerConfig  `yaml:"filer"`
	PDF    PDFConfig    `yaml:"pdf"`
	Output OutputConfig `yaml:"output"`
	S3     S3Config     `yaml:"s3"`
	SMTP   SMTPConfig   `yaml:"smtp"`
	Email  EmailConfig  `yaml:"email"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// loadConfig reads the YAML configuration file and applies LCA_* environment
// overrides. The default file may be absent; an explicitly named one may not.
func loadConfig(defaultPath, path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultPath
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Filer.PostingDays == 0 {
		c.Filer.PostingDays = lca.DefaultPostingDays
	}
	if c.PDF.Paper == "" {
		c.PDF.Paper = lca.PaperLetter.Name
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeoutSec == 0 {
		c.Server.ReadTimeoutSec = 10
	}
	if c.Server.WriteTimeoutSec == 0 {
		c.Server.WriteTimeoutSec = 15
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// lcaOptions translates the configuration into generation options.
func (c *Config) lcaOptions(logger logrus.FieldLogger) []lca.Option {
	return []lca.Option{
		lca.WithLogger(logger),
		lca.WithPublicAccessAddress(c.Filer.PublicAccessAddress),
		lca.WithPostingDays(c.Filer.PostingDays),
		lca.WithPaper(lca.PaperByName(c.PDF.Paper)),
		lca.WithFont(c.PDF.Font, c.PDF.FontFile),
	}
}

// newLogger builds the process logger from the log settings.
func newLogger(cfg LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)
	return logger, nil
}
