// Package config loads service configuration from defaults, an optional
// YAML file and THRIFT_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Analysis   AnalysisConfig   `koanf:"analysis"`
	Storage    StorageConfig    `koanf:"storage"`
	Classifier ClassifierConfig `koanf:"classifier"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AnalysisConfig tunes segmentation and color extraction.
type AnalysisConfig struct {
	Margin         int  `koanf:"margin"`
	Iterations     int  `koanf:"iterations"`
	Clusters       int  `koanf:"clusters"`
	MaxDimension   int  `koanf:"max_dimension"`
	MinConfidence  int  `koanf:"min_confidence"`
	AllowUncertain bool `koanf:"allow_uncertain"`
}

// StorageConfig selects the wardrobe repository.
type StorageConfig struct {
	Driver string `koanf:"driver"` // memory or badger
	Path   string `koanf:"path"`
}

// ClassifierConfig points at the category classifier. With an empty URL
// only uploads carrying a category override can be analyzed.
type ClassifierConfig struct {
	URL              string        `koanf:"url"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold int           `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout"`
	ConfidenceScale  string        `koanf:"confidence_scale"` // probability or percent
}

// LoggingConfig mirrors logging.Config without the writer.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
	File   string `koanf:"file"`
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	if c.Server.RateLimitReqs < 0 {
		errs = append(errs, errors.New("server.rate_limit_reqs must not be negative"))
	}

	if c.Analysis.Margin < 0 {
		errs = append(errs, errors.New("analysis.margin must not be negative"))
	}
	if c.Analysis.Iterations < 1 {
		errs = append(errs, errors.New("analysis.iterations must be at least 1"))
	}
	if c.Analysis.Clusters < 1 {
		errs = append(errs, errors.New("analysis.clusters must be at least 1"))
	}
	if c.Analysis.MaxDimension < 0 {
		errs = append(errs, errors.New("analysis.max_dimension must not be negative"))
	}
	if c.Analysis.MinConfidence < 0 || c.Analysis.MinConfidence > 100 {
		errs = append(errs, fmt.Errorf("analysis.min_confidence %d out of range [0,100]", c.Analysis.MinConfidence))
	}

	switch c.Storage.Driver {
	case "memory":
	case "badger":
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the badger driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be memory or badger", c.Storage.Driver))
	}

	if c.Classifier.URL != "" && c.Classifier.Timeout <= 0 {
		errs = append(errs, errors.New("classifier.timeout must be positive"))
	}
	switch c.Classifier.ConfidenceScale {
	case "probability", "percent":
	default:
		errs = append(errs, fmt.Errorf("classifier.confidence_scale %q must be probability or percent", c.Classifier.ConfidenceScale))
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}

	return errors.Join(errs...)
}
