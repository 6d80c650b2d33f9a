// Package models defines the core data model shared across the engine:
// negotiating parties and their attribute schedules, agreement vectors,
// utility results, incidents, and simulation agents.
package models

import "math"

// WeightTolerance is the allowed deviation when checking that a party's
// attribute weights sum to 1.
const WeightTolerance = 1e-6

// ValueShape selects the per-attribute value function.
type ValueShape string

const (
	// ShapeLinear maps the issue value directly to attribute value.
	ShapeLinear ValueShape = "linear"

	// ShapeConcave applies diminishing returns beyond the satiation point.
	ShapeConcave ValueShape = "concave"
)

// Attribute is one weighted issue dimension in a party's utility schedule.
type Attribute struct {
	// Name is the issue key this attribute scores. Must match a key in the
	// agreement vector (or be marked unchanged there).
	Name string `json:"name" yaml:"name"`

	// Weight is the attribute's share of total utility. Weights across a
	// party's attributes must sum to 1 within WeightTolerance.
	Weight float64 `json:"weight" yaml:"weight"`

	// Shape selects linear or concave-with-satiation valuation.
	Shape ValueShape `json:"shape" yaml:"shape"`

	// SatiationPoint is where concave valuation starts to flatten.
	// Ignored for linear attributes. Range (0,1].
	SatiationPoint float64 `json:"satiation_point,omitempty" yaml:"satiation_point,omitempty"`

	// StatusQuo is the issue's current (pre-agreement) value, used when an
	// agreement vector marks the issue as unchanged.
	StatusQuo float64 `json:"status_quo,omitempty" yaml:"status_quo,omitempty"`
}

// Synergy adds bonus value when all named attributes jointly exceed a
// threshold in the evaluated agreement.
type Synergy struct {
	Attributes []string `json:"attributes" yaml:"attributes"`
	Threshold  float64  `json:"threshold" yaml:"threshold"`
	Bonus      float64  `json:"bonus" yaml:"bonus"`
}

// Party is one negotiating side. Parties are created at scenario setup and
// are immutable during an evaluation session.
type Party struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// Attributes is the party's weighted issue schedule.
	Attributes []Attribute `json:"attributes" yaml:"attributes"`

	// Synergies are optional joint-value bonuses across attributes.
	Synergies []Synergy `json:"synergies,omitempty" yaml:"synergies,omitempty"`

	// BATNA is the party's fallback utility if no agreement is reached.
	// Range [0,1].
	BATNA float64 `json:"batna" yaml:"batna"`

	// LossAversion is the prospect-theory lambda. Default 2.25.
	LossAversion float64 `json:"loss_aversion,omitempty" yaml:"loss_aversion,omitempty"`

	// ReferencePoint is the status-quo utility deviations are judged
	// against. Range [0,1].
	ReferencePoint float64 `json:"reference_point" yaml:"reference_point"`

	// RiskTolerance flattens the acceptance curve: higher tolerance means
	// the party accepts thinner margins more readily. Range [0,1].
	RiskTolerance float64 `json:"risk_tolerance,omitempty" yaml:"risk_tolerance,omitempty"`
}

// DefaultLossAversion is the prospect-theory lambda applied when a party
// does not specify one.
const DefaultLossAversion = 2.25

// EffectiveLossAversion returns the party's lambda, falling back to the
// default when unset.
func (p Party) EffectiveLossAversion() float64 {
	if p.LossAversion > 0 {
		return p.LossAversion
	}
	return DefaultLossAversion
}

// Attribute returns the named attribute and whether it exists.
func (p Party) Attribute(name string) (Attribute, bool) {
	for _, a := range p.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Validate checks the party's structural invariants: weights sum to 1
// within WeightTolerance, weights are non-negative, BATNA and reference
// point lie in [0,1].
func (p Party) Validate() error {
	if p.ID == "" {
		return &ValidationError{Party: p.Name, Field: "id", Reason: "party id must not be empty"}
	}
	if len(p.Attributes) == 0 {
		return &ValidationError{Party: p.ID, Field: "attributes", Reason: "party has no attributes"}
	}

	sum := 0.0
	for _, a := range p.Attributes {
		if a.Weight < 0 {
			return &ValidationError{Party: p.ID, Field: "attributes." + a.Name, Reason: "weight must be non-negative"}
		}
		if a.Shape != ShapeLinear && a.Shape != ShapeConcave {
			return &ValidationError{Party: p.ID, Field: "attributes." + a.Name, Reason: "unknown value shape " + string(a.Shape)}
		}
		sum += a.Weight
	}
	if math.Abs(sum-1) > WeightTolerance {
		return &ValidationError{Party: p.ID, Field: "attributes", Reason: "attribute weights must sum to 1"}
	}

	if p.BATNA < 0 || p.BATNA > 1 {
		return &ValidationError{Party: p.ID, Field: "batna", Reason: "batna must lie in [0,1]"}
	}
	if p.ReferencePoint < 0 || p.ReferencePoint > 1 {
		return &ValidationError{Party: p.ID, Field: "reference_point", Reason: "reference point must lie in [0,1]"}
	}
	return nil
}
