// Package utility implements the multi-attribute utility model: weighted
// value functions over agreement issues, a prospect-theory adjustment
// around the party's reference point, and a logistic acceptance estimate
// against the party's BATNA.
package utility

import (
	"fmt"
	"math"

	"github.com/accordlab/accord/internal/models"
)

// Config holds the tunable parameters of the utility model.
type Config struct {
	// Alpha is the prospect-theory gain exponent. Default: 0.88.
	Alpha float64

	// Beta is the prospect-theory loss exponent. Default: 0.88.
	Beta float64

	// AcceptanceSteepness sets the base slope of the logistic acceptance
	// curve at zero margin. Default: 10. A party's risk tolerance flattens
	// the curve: effective steepness is AcceptanceSteepness / (1 + tolerance).
	AcceptanceSteepness float64
}

// DefaultConfig returns the standard prospect-theory parameterization
// (Tversky/Kahneman exponents).
func DefaultConfig() Config {
	return Config{
		Alpha:               0.88,
		Beta:                0.88,
		AcceptanceSteepness: 10,
	}
}

// Model computes per-party utilities for agreement vectors. The model is
// stateless and safe for concurrent use.
type Model struct {
	cfg Config
}

// New creates a utility model.
func New(cfg Config) *Model {
	return &Model{cfg: cfg}
}

// Compute evaluates the agreement vector for the party with neutral
// framing. See ComputeFramed.
func (m *Model) Compute(p models.Party, av models.AgreementVector) (models.UtilityResult, error) {
	return m.ComputeFramed(p, av, 1)
}

// ComputeFramed evaluates the agreement vector for the party.
//
// The framing multiplier scales the prospect value before reassembly:
// values above 1 model a gain frame, below 1 a loss frame of the same
// outcome. Neutral framing is 1.
//
// It fails with *models.ValidationError when the party's weights do not
// sum to 1 or the vector omits a weighted issue without marking it
// unchanged.
func (m *Model) ComputeFramed(p models.Party, av models.AgreementVector, framing float64) (models.UtilityResult, error) {
	if err := p.Validate(); err != nil {
		return models.UtilityResult{}, err
	}
	if missing := av.MissingIssues(p); len(missing) > 0 {
		return models.UtilityResult{}, &models.ValidationError{
			Party:  p.ID,
			Field:  "agreement." + missing[0],
			Reason: "weighted issue not present in agreement vector (set a value or mark it unchanged)",
		}
	}

	raw := m.rawUtility(p, av)
	final := m.prospectAdjust(p, raw, framing)

	margin := final - p.BATNA
	accept := m.acceptanceProbability(margin, p.RiskTolerance)

	if !isFinite(raw, final, margin, accept) {
		return models.UtilityResult{}, fmt.Errorf("utility: non-finite result for party %s", p.ID)
	}

	return models.UtilityResult{
		Raw:                   raw,
		Utility:               final,
		Margin:                margin,
		AcceptanceProbability: accept,
	}, nil
}

// rawUtility is the weighted sum of per-attribute values plus synergy
// bonuses, clamped to [0,1].
func (m *Model) rawUtility(p models.Party, av models.AgreementVector) float64 {
	sum := 0.0
	for _, a := range p.Attributes {
		level := av[a.Name].Level(a.StatusQuo)
		sum += a.Weight * attributeValue(a, level)
	}

	for _, s := range p.Synergies {
		if synergyMet(p, av, s) {
			sum += s.Bonus
		}
	}

	return clamp01(sum)
}

// attributeValue maps an issue level to attribute value. Linear attributes
// pass the level through; concave attributes flatten beyond the satiation
// point while staying continuous and monotone.
func attributeValue(a models.Attribute, level float64) float64 {
	if a.Shape != models.ShapeConcave {
		return level
	}

	sat := a.SatiationPoint
	if sat <= 0 || sat >= 1 {
		return level
	}
	if level <= sat {
		return level
	}

	// Beyond satiation, additional level buys exponentially less value.
	// The slope is 1 at the satiation point and decays toward 0.
	excess := (level - sat) / (1 - sat)
	return sat + 0.5*(1-sat)*(1-math.Exp(-2*excess))
}

// synergyMet reports whether every attribute named by the synergy exists
// on the party and jointly exceeds the threshold in the agreement.
func synergyMet(p models.Party, av models.AgreementVector, s models.Synergy) bool {
	if len(s.Attributes) < 2 {
		return false
	}
	for _, name := range s.Attributes {
		attr, ok := p.Attribute(name)
		if !ok {
			return false
		}
		if av[name].Level(attr.StatusQuo) < s.Threshold {
			return false
		}
	}
	return true
}

// prospectAdjust applies the prospect-theory value function around the
// party's reference point and reassembles the final utility.
//
// For a deviation d = raw - reference:
//
//	gains (d >= 0): v = d^alpha
//	losses (d < 0): v = -lambda * (-d)^beta
//
// With lambda > 1 a loss outweighs an equal-magnitude gain. The framing
// multiplier scales v, and the final utility is reference + v clamped
// to [0,1].
func (m *Model) prospectAdjust(p models.Party, raw, framing float64) float64 {
	d := raw - p.ReferencePoint

	var v float64
	if d >= 0 {
		v = math.Pow(d, m.cfg.Alpha)
	} else {
		v = -p.EffectiveLossAversion() * math.Pow(-d, m.cfg.Beta)
	}
	v *= framing

	return clamp01(p.ReferencePoint + v)
}

// ProspectValue exposes the bare value function for a deviation d, using
// the party's loss aversion. Positive d is a gain, negative a loss.
func (m *Model) ProspectValue(p models.Party, d float64) float64 {
	if d >= 0 {
		return math.Pow(d, m.cfg.Alpha)
	}
	return -p.EffectiveLossAversion() * math.Pow(-d, m.cfg.Beta)
}

// acceptanceProbability is a logistic function of the margin over BATNA.
// Higher risk tolerance flattens the curve, so thin margins are accepted
// more readily and thin deficits rejected less sharply.
func (m *Model) acceptanceProbability(margin, riskTolerance float64) float64 {
	k := m.cfg.AcceptanceSteepness / (1 + clamp01(riskTolerance))
	return clamp01(1 / (1 + math.Exp(-k*margin)))
}

func isFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
