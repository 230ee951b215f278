package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/gilchrisn/perspective-viz/pkg/boxes"
	"github.com/gilchrisn/perspective-viz/pkg/layout"
	"github.com/gilchrisn/perspective-viz/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. PVIZ_VIEW_EDGE_THRESHOLD
const EnvPrefix = "PVIZ"

// Config manages application configuration using Viper
type Config struct {
	v *viper.Viper
}

// NewConfig creates a new configuration with defaults and environment overrides
func NewConfig() *Config {
	v := viper.New()

	// Layout parameters
	v.SetDefault("layout.base_distance", 75.0)
	v.SetDefault("layout.per_node_distance", 8.0)
	v.SetDefault("layout.min_ring_nodes", 7)
	v.SetDefault("layout.elect_medoids", false)

	// Bounding boxes
	v.SetDefault("boxes.padding", 15.0)
	v.SetDefault("boxes.border_width", 4.0)

	// Initial view options
	v.SetDefault("view.edge_threshold", 0.5)
	v.SetDefault("view.hide_edges", false)
	v.SetDefault("view.delete_edges_percent", 75.0)
	v.SetDefault("view.show_border", false)
	v.SetDefault("view.hide_labels", true)

	v.SetDefault("edges.random_seed", time.Now().UnixNano())
	v.SetDefault("edges.labels", false)

	v.SetDefault("debounce.quiet_ms", 300)

	// Server parameters
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit_rps", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 64<<20)

	// Session lifecycle
	v.SetDefault("sessions.ttl", time.Hour)
	v.SetDefault("sessions.cleanup_interval", 5*time.Minute)

	// Logging parameters
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{v: v}
}

// LoadFromFile loads configuration from file
func (c *Config) LoadFromFile(path string) error {
	c.v.SetConfigFile(path)
	return c.v.ReadInConfig()
}

// Getters for layout parameters
func (c *Config) BaseDistance() float64 { return c.v.GetFloat64("layout.base_distance") }
func (c *Config) PerNodeDistance() float64 { return c.v.GetFloat64("layout.per_node_distance") }
func (c *Config) MinRingNodes() int { return c.v.GetInt("layout.min_ring_nodes") }
func (c *Config) ElectMedoids() bool { return c.v.GetBool("layout.elect_medoids") }

func (c *Config) BoxPadding() float64 { return c.v.GetFloat64("boxes.padding") }
func (c *Config) BoxBorderWidth() float64 { return c.v.GetFloat64("boxes.border_width") }

func (c *Config) EdgeThreshold() float64 { return c.v.GetFloat64("view.edge_threshold") }
func (c *Config) HideEdges() bool { return c.v.GetBool("view.hide_edges") }
func (c *Config) DeleteEdgesPercent() float64 { return c.v.GetFloat64("view.delete_edges_percent") }
func (c *Config) ShowBorder() bool { return c.v.GetBool("view.show_border") }
func (c *Config) HideLabels() bool { return c.v.GetBool("view.hide_labels") }

func (c *Config) RandomSeed() int64 { return c.v.GetInt64("edges.random_seed") }
func (c *Config) EdgeLabels() bool { return c.v.GetBool("edges.labels") }

func (c *Config) DebounceQuiet() time.Duration {
	return time.Duration(c.v.GetInt("debounce.quiet_ms")) * time.Millisecond
}

func (c *Config) ServerAddress() string { return c.v.GetString("server.address") }
func (c *Config) ReadTimeout() time.Duration { return c.v.GetDuration("server.read_timeout") }
func (c *Config) WriteTimeout() time.Duration { return c.v.GetDuration("server.write_timeout") }
func (c *Config) ShutdownTimeout() time.Duration { return c.v.GetDuration("server.shutdown_timeout") }
func (c *Config) RateLimitRPS() float64 { return c.v.GetFloat64("server.rate_limit_rps") }
func (c *Config) RateLimitBurst() int { return c.v.GetInt("server.rate_limit_burst") }
func (c *Config) AllowedOrigins() []string { return c.v.GetStringSlice("server.allowed_origins") }
func (c *Config) MaxBodyBytes() int64 { return c.v.GetInt64("server.max_body_bytes") }
func (c *Config) SessionTTL() time.Duration { return c.v.GetDuration("sessions.ttl") }
func (c *Config) CleanupInterval() time.Duration { return c.v.GetDuration("sessions.cleanup_interval") }

func (c *Config) LogLevel() string { return c.v.GetString("logging.level") }

// Set allows dynamic configuration changes
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// LayoutOptions builds the static layout options
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		BaseDistance:    c.BaseDistance(),
		PerNodeDistance: c.PerNodeDistance(),
		MinRingNodes:    c.MinRingNodes(),
	}
}

// BoxOptions builds the bounding box options
func (c *Config) BoxOptions() boxes.Options {
	return boxes.Options{
		Padding:     c.BoxPadding(),
		BorderWidth: c.BoxBorderWidth(),
	}
}

// ViewOptions builds the initial view options of a new session
func (c *Config) ViewOptions() models.ViewOptions {
	return models.ViewOptions{
		EdgeThreshold:      c.EdgeThreshold(),
		HideEdges:          c.HideEdges(),
		DeleteEdgesPercent: c.DeleteEdgesPercent(),
		ShowBorder:         c.ShowBorder(),
		HideLabels:         c.HideLabels(),
		Legend:             models.LegendConfig{},
	}
}

// CreateLogger creates a zerolog logger based on config
func (c *Config) CreateLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(c.LogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(level).With().Timestamp().Str("service", "perspective-viz").Logger()
}
