package dynamics

import (
	"fmt"
	"math"
)

// IntegrationParameters configures a single step. The pipeline treats it as
// read-only for the duration of the step.
type IntegrationParameters struct {
	// Dt is the fixed step length in seconds.
	Dt float64
	// MaxVelocityIterations is the number of constraint solver passes.
	MaxVelocityIterations int
	// MaxPositionIterations is the number of penetration correction passes.
	MaxPositionIterations int
	// ERP is the fraction of contact penetration corrected per step.
	ERP float64
	// JointERP is the fraction of joint drift corrected per step.
	JointERP float64
	// AllowedLinearError is the penetration left uncorrected to avoid jitter.
	AllowedLinearError float64
	// PredictionDistance inflates collider bounds so contacts are found
	// slightly before they touch.
	PredictionDistance float64
	// RestitutionVelocityThreshold disables bounce below this approach speed.
	RestitutionVelocityThreshold float64
}

func DefaultIntegrationParameters() IntegrationParameters {
	return IntegrationParameters{
		Dt:                           1.0 / 60.0,
		MaxVelocityIterations:        4,
		MaxPositionIterations:        1,
		ERP:                          0.2,
		JointERP:                     0.2,
		AllowedLinearError:           0.005,
		PredictionDistance:           0.002,
		RestitutionVelocityThreshold: 1.0,
	}
}

// InvDt returns 1/Dt, or 0 for a zero step.
func (p *IntegrationParameters) InvDt() float64 {
	if p.Dt == 0 {
		return 0
	}
	return 1 / p.Dt
}

func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

func (p *IntegrationParameters) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"dt", p.Dt},
		{"erp", p.ERP},
		{"joint_erp", p.JointERP},
		{"allowed_linear_error", p.AllowedLinearError},
		{"prediction_distance", p.PredictionDistance},
		{"restitution_velocity_threshold", p.RestitutionVelocityThreshold},
	} {
		if !finite(f.value) {
			return fmt.Errorf("%w: %s must be finite, got %f", ErrInvalidParameters, f.name, f.value)
		}
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidParameters, p.Dt)
	}
	if p.MaxVelocityIterations < 1 {
		return fmt.Errorf("%w: velocity iterations must be at least 1, got %d", ErrInvalidParameters, p.MaxVelocityIterations)
	}
	if p.MaxPositionIterations < 0 {
		return fmt.Errorf("%w: position iterations must not be negative, got %d", ErrInvalidParameters, p.MaxPositionIterations)
	}
	if p.ERP < 0 || p.ERP > 1 {
		return fmt.Errorf("%w: erp must be within [0, 1], got %f", ErrInvalidParameters, p.ERP)
	}
	if p.JointERP < 0 || p.JointERP > 1 {
		return fmt.Errorf("%w: joint_erp must be within [0, 1], got %f", ErrInvalidParameters, p.JointERP)
	}
	if p.AllowedLinearError < 0 || p.PredictionDistance < 0 || p.RestitutionVelocityThreshold < 0 {
		return fmt.Errorf("%w: tolerances must not be negative", ErrInvalidParameters)
	}
	return nil
}
