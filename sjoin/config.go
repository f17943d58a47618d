package sjoin

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration file.
type Config struct {
	// Points and Polygons are paths to GeoJSON FeatureCollection files.
	// Both may be empty when running the built-in demo data.
	Points   string `yaml:"points,omitempty" json:"points,omitempty"`
	Polygons string `yaml:"polygons,omitempty" json:"polygons,omitempty"`

	Columns ColumnsConfig `yaml:"columns" json:"columns"`
	Join    JoinConfig    `yaml:"join" json:"join"`
	Render  RenderConfig  `yaml:"render,omitempty" json:"render,omitempty"`
	MQTT    *MQTTConfig   `yaml:"mqtt,omitempty" json:"mqtt,omitempty"`
}

// ColumnsConfig names the identity and retained columns.
type ColumnsConfig struct {
	PointID       string   `yaml:"pointId" json:"pointId"`
	PolygonID     string   `yaml:"polygonId" json:"polygonId"`
	Keep          []string `yaml:"keep,omitempty" json:"keep,omitempty"`
	Geometry      string   `yaml:"geometry,omitempty" json:"geometry,omitempty"`
	Missing       string   `yaml:"missing,omitempty" json:"missing,omitempty"`
	MaxGeometries int      `yaml:"maxGeometries,omitempty" json:"maxGeometries,omitempty"`
}

// JoinConfig selects the predicate and join mode.
type JoinConfig struct {
	Predicate string `yaml:"predicate" json:"predicate"`
	Mode      string `yaml:"mode,omitempty" json:"mode,omitempty"`
}

// RenderConfig controls the optional map output.
type RenderConfig struct {
	Format     string  `yaml:"format,omitempty" json:"format,omitempty"`         // "svg", "png", or "raster"
	Output     string  `yaml:"output,omitempty" json:"output,omitempty"`         // output file path
	Resolution float64 `yaml:"resolution,omitempty" json:"resolution,omitempty"` // vector PNG DPI (default 300)
	Scale      float64 `yaml:"scale,omitempty" json:"scale,omitempty"`           // raster pixels per coordinate unit
}

// MQTTConfig holds MQTT connection settings for result publishing.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"`
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// ColumnSpec converts the column configuration into the spec the join
// adapter consumes.
func (c *Config) ColumnSpec() ColumnSpec {
	return ColumnSpec{
		PointID:       c.Columns.PointID,
		PolygonID:     c.Columns.PolygonID,
		Keep:          c.Columns.Keep,
		Geometry:      c.Columns.Geometry,
		Missing:       c.Columns.Missing,
		Mode:          JoinMode(c.Join.Mode),
		MaxGeometries: c.Columns.MaxGeometries,
	}
}

// Predicate parses the configured predicate name.
func (c *Config) Predicate() (Predicate, error) {
	return ParsePredicate(c.Join.Predicate)
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	// Validate required fields.
	if config.Columns.PointID == "" {
		return nil, fmt.Errorf("columns.pointId is required")
	}
	if config.Columns.PolygonID == "" {
		return nil, fmt.Errorf("columns.polygonId is required")
	}
	if config.Join.Predicate == "" {
		return nil, fmt.Errorf("join.predicate is required")
	}
	if _, err := ParsePredicate(config.Join.Predicate); err != nil {
		return nil, err
	}
	switch JoinMode(config.Join.Mode) {
	case "", JoinLeft, JoinInner, JoinRight:
	default:
		return nil, fmt.Errorf("join.mode must be left, inner, or right, got %q", config.Join.Mode)
	}

	if config.MQTT != nil {
		if config.MQTT.Broker == "" {
			return nil, fmt.Errorf("mqtt.broker is required when mqtt is configured")
		}
		if config.MQTT.PublishPrefix == "" {
			config.MQTT.PublishPrefix = "dedupjoin"
		}
	}

	return &config, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
