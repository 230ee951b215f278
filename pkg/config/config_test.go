package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 75.0, cfg.BaseDistance())
	assert.Equal(t, 8.0, cfg.PerNodeDistance())
	assert.Equal(t, 7, cfg.MinRingNodes())
	assert.False(t, cfg.ElectMedoids(), "medoids come from the input unless election is enabled")
	assert.Equal(t, 15.0, cfg.BoxPadding())
	assert.Equal(t, 4.0, cfg.BoxBorderWidth())
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceQuiet())
	assert.Equal(t, ":8080", cfg.ServerAddress())
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins())

	view := cfg.ViewOptions()
	assert.Equal(t, 0.5, view.EdgeThreshold)
	assert.Equal(t, 75.0, view.DeleteEdgesPercent)
	assert.True(t, view.HideLabels)
	assert.False(t, view.HideEdges)
	assert.False(t, view.ShowBorder)
	assert.NotNil(t, view.Legend)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
layout:
  base_distance: 100
view:
  edge_threshold: 0.7
  hide_edges: true
sessions:
  ttl: 10m
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, 100.0, cfg.LayoutOptions().BaseDistance)
	assert.Equal(t, 8.0, cfg.LayoutOptions().PerNodeDistance)
	assert.Equal(t, 0.7, cfg.ViewOptions().EdgeThreshold)
	assert.True(t, cfg.ViewOptions().HideEdges)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL())
	assert.Equal(t, zerolog.DebugLevel, cfg.CreateLogger().GetLevel())
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PVIZ_VIEW_DELETE_EDGES_PERCENT", "10")
	t.Setenv("PVIZ_SERVER_ADDRESS", ":9090")

	cfg := NewConfig()
	assert.Equal(t, 10.0, cfg.DeleteEdgesPercent())
	assert.Equal(t, ":9090", cfg.ServerAddress())
}

func TestSetAndLoggerFallback(t *testing.T) {
	cfg := NewConfig()
	cfg.Set("boxes.padding", 5)
	cfg.Set("logging.level", "not-a-level")

	assert.Equal(t, 5.0, cfg.BoxOptions().Padding)
	assert.Equal(t, zerolog.InfoLevel, cfg.CreateLogger().GetLevel())
}
