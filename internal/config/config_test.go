package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"negative margin", func(c *Config) { c.Analysis.Margin = -1 }, "analysis.margin"},
		{"zero clusters", func(c *Config) { c.Analysis.Clusters = 0 }, "analysis.clusters"},
		{"confidence above 100", func(c *Config) { c.Analysis.MinConfidence = 101 }, "min_confidence"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "sqlite" }, "storage.driver"},
		{"badger without path", func(c *Config) { c.Storage.Driver = "badger"; c.Storage.Path = "" }, "storage.path"},
		{"classifier without timeout", func(c *Config) { c.Classifier.URL = "http://x"; c.Classifier.Timeout = 0 }, "classifier.timeout"},
		{"bad confidence scale", func(c *Config) { c.Classifier.ConfidenceScale = "ratio" }, "confidence_scale"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	assert.Equal(t, "server.port", envTransformFunc("THRIFT_SERVER__PORT"))
	assert.Equal(t, "analysis.max_dimension", envTransformFunc("THRIFT_ANALYSIS__MAX_DIMENSION"))
	assert.Equal(t, "storage.driver", envTransformFunc("THRIFT_STORAGE__DRIVER"))
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  port: 9000
analysis:
  clusters: 4
storage:
  driver: badger
  path: /tmp/wardrobe
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv("THRIFT_ANALYSIS__MARGIN", "20")
	t.Setenv("THRIFT_SERVER__CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("THRIFT_CLASSIFIER__TIMEOUT", "3s")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Analysis.Clusters)
	assert.Equal(t, 20, cfg.Analysis.Margin)
	assert.Equal(t, 5, cfg.Analysis.Iterations, "default kept")
	assert.Equal(t, "badger", cfg.Storage.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 3*time.Second, cfg.Classifier.Timeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("THRIFT_STORAGE__DRIVER", "postgres")
	_, err := LoadFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}
