package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
)

const (
	DefaultScene      = "drop"
	DefaultIntegrator = "pgs"
	DefaultDuration   = 5.0
	DefaultGravity    = -9.81
	DefaultCellSize   = 2.0
)

type Config struct {
	Scene      string        `yaml:"scene" toml:"scene"`
	Integrator string        `yaml:"integrator" toml:"integrator"`
	Duration   float64       `yaml:"duration" toml:"duration"`
	Seed       int64         `yaml:"seed" toml:"seed"`
	Gravity    []float64     `yaml:"gravity" toml:"gravity"`
	CellSize   float64       `yaml:"cell_size" toml:"cell_size"`
	Params     ParamsConfig  `yaml:"params" toml:"params"`
	SceneArgs  SceneConfig   `yaml:"scene_params" toml:"scene_params"`
	Logging    LoggingConfig `yaml:"logging" toml:"logging"`
	// Script is an optional automation script run alongside the scene.
	Script string `yaml:"script,omitempty" toml:"script,omitempty"`
}

type ParamsConfig struct {
	Dt                           float64 `yaml:"dt" toml:"dt"`
	VelocityIterations           int     `yaml:"velocity_iterations" toml:"velocity_iterations"`
	PositionIterations           int     `yaml:"position_iterations" toml:"position_iterations"`
	ERP                          float64 `yaml:"erp" toml:"erp"`
	JointERP                     float64 `yaml:"joint_erp" toml:"joint_erp"`
	AllowedLinearError           float64 `yaml:"allowed_linear_error" toml:"allowed_linear_error"`
	PredictionDistance           float64 `yaml:"prediction_distance" toml:"prediction_distance"`
	RestitutionVelocityThreshold float64 `yaml:"restitution_velocity_threshold" toml:"restitution_velocity_threshold"`
}

// SceneConfig carries the knobs of the built-in scenes. Each scene reads
// only the fields it understands.
type SceneConfig struct {
	Count        int     `yaml:"count" toml:"count"`
	Width        int     `yaml:"width" toml:"width"`
	Height       int     `yaml:"height" toml:"height"`
	Spacing      float64 `yaml:"spacing" toml:"spacing"`
	Stiffness    float64 `yaml:"stiffness" toml:"stiffness"`
	DampingRatio float64 `yaml:"damping_ratio" toml:"damping_ratio"`
	RopeLength   float64 `yaml:"rope_length" toml:"rope_length"`
	BallMass     float64 `yaml:"ball_mass" toml:"ball_mass"`
	Restitution  float64 `yaml:"restitution" toml:"restitution"`
}

type LoggingConfig struct {
	Level  string   `yaml:"level" toml:"level"`
	Format string   `yaml:"format" toml:"format"` // "json" or "console"
	Output []string `yaml:"output,omitempty" toml:"output,omitempty"`
}

func paramsFrom(p dynamics.IntegrationParameters) ParamsConfig {
	return ParamsConfig{
		Dt:                           p.Dt,
		VelocityIterations:           p.MaxVelocityIterations,
		PositionIterations:           p.MaxPositionIterations,
		ERP:                          p.ERP,
		JointERP:                     p.JointERP,
		AllowedLinearError:           p.AllowedLinearError,
		PredictionDistance:           p.PredictionDistance,
		RestitutionVelocityThreshold: p.RestitutionVelocityThreshold,
	}
}

func DefaultConfig() *Config {
	return &Config{
		Scene:      DefaultScene,
		Integrator: DefaultIntegrator,
		Duration:   DefaultDuration,
		Gravity:    geom.Components(geom.Unit(geom.Y, DefaultGravity)),
		CellSize:   DefaultCellSize,
		Params:     paramsFrom(dynamics.DefaultIntegrationParameters()),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load reads a YAML or TOML file on top of DefaultConfig. The format is
// chosen by extension; anything but .toml is parsed as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML for a .toml path and as YAML otherwise.
func Save(path string, cfg *Config) error {
	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

// IntegrationParameters converts the params section. Zero iteration counts
// fall back to the defaults.
func (c *Config) IntegrationParameters() dynamics.IntegrationParameters {
	p := dynamics.DefaultIntegrationParameters()
	p.Dt = c.Params.Dt
	p.ERP = c.Params.ERP
	p.JointERP = c.Params.JointERP
	p.AllowedLinearError = c.Params.AllowedLinearError
	p.PredictionDistance = c.Params.PredictionDistance
	p.RestitutionVelocityThreshold = c.Params.RestitutionVelocityThreshold
	if c.Params.VelocityIterations > 0 {
		p.MaxVelocityIterations = c.Params.VelocityIterations
	}
	if c.Params.PositionIterations > 0 {
		p.MaxPositionIterations = c.Params.PositionIterations
	}
	return p
}

// GravityVector converts Gravity, failing with geom.ErrDimensionMismatch
// when the file was written for another build dimension.
func (c *Config) GravityVector() (geom.Vector, error) {
	return geom.VectorFromComponents(c.Gravity)
}

// Steps returns the number of fixed steps covering Duration.
func (c *Config) Steps() int {
	if c.Params.Dt <= 0 {
		return 0
	}
	return int(c.Duration/c.Params.Dt + 0.5)
}

func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.CellSize < 0 {
		return fmt.Errorf("cell_size must not be negative, got %f", c.CellSize)
	}
	p := c.IntegrationParameters()
	if err := p.Validate(); err != nil {
		return err
	}
	if _, err := c.GravityVector(); err != nil {
		return fmt.Errorf("gravity: %w", err)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Gravity = append([]float64(nil), c.Gravity...)
	out.Logging.Output = append([]string(nil), c.Logging.Output...)
	return &out
}
