// Package strategy tracks per-session soft-power state: diplomatic
// capital, legitimacy, domestic support, and credibility. The composed
// escalation modifier feeds the simulator's incident probabilities.
package strategy

import "sync"

// Score bounds for every strategic dimension.
const (
	MinScore = 0.0
	MaxScore = 100.0
)

// Modifier clamp bounds. The multiplicative chain of threshold factors is
// otherwise unbounded; observed historical ranges motivate [0.5, 1.5].
const (
	MinModifier = 0.5
	MaxModifier = 1.5
)

// Scores is a plain snapshot of the four strategic dimensions.
type Scores struct {
	DiplomaticCapital float64 `json:"diplomatic_capital" yaml:"diplomatic_capital"`
	Legitimacy        float64 `json:"legitimacy" yaml:"legitimacy"`
	DomesticSupport   float64 `json:"domestic_support" yaml:"domestic_support"`
	Credibility       float64 `json:"credibility" yaml:"credibility"`
}

// Clamped returns the snapshot with every score clamped to [0,100].
func (s Scores) Clamped() Scores {
	return Scores{
		DiplomaticCapital: clampScore(s.DiplomaticCapital),
		Legitimacy:        clampScore(s.Legitimacy),
		DomesticSupport:   clampScore(s.DomesticSupport),
		Credibility:       clampScore(s.Credibility),
	}
}

// Action is one entry of the strategic-action catalog: fixed deltas
// applied to the four scores. Catalogs are external content; the engine
// only applies them.
type Action struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Deltas Scores `json:"deltas" yaml:"deltas"`
}

// Context is the mutable strategic state of one negotiation session,
// owned by the caller. Mutation is serialized internally (single-writer
// discipline); reads may be concurrent.
type Context struct {
	mu     sync.RWMutex
	scores Scores
}

// NewContext creates a strategic context from initial scores, clamping
// each to [0,100].
func NewContext(initial Scores) *Context {
	return &Context{scores: initial.Clamped()}
}

// Scores returns a snapshot of the current scores.
func (c *Context) Scores() Scores {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scores
}

// ApplyAction applies the action's deltas and clamps each score to [0,100].
func (c *Context) ApplyAction(a Action) Scores {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.scores.DiplomaticCapital = clampScore(c.scores.DiplomaticCapital + a.Deltas.DiplomaticCapital)
	c.scores.Legitimacy = clampScore(c.scores.Legitimacy + a.Deltas.Legitimacy)
	c.scores.DomesticSupport = clampScore(c.scores.DomesticSupport + a.Deltas.DomesticSupport)
	c.scores.Credibility = clampScore(c.scores.Credibility + a.Deltas.Credibility)
	return c.scores
}

// EscalationModifier composes the independent threshold factors by
// multiplication and clamps the product to [MinModifier, MaxModifier]:
//
//	legitimacy > 70        ×0.85
//	credibility < 40       ×1.25
//	domestic support < 35  ×1.30
//	diplomatic capital > 70 ×0.85
func (c *Context) EscalationModifier() float64 {
	c.mu.RLock()
	s := c.scores
	c.mu.RUnlock()
	return ModifierFor(s)
}

// ModifierFor computes the composed escalation modifier for a score
// snapshot. See Context.EscalationModifier.
func ModifierFor(s Scores) float64 {
	m := 1.0
	if s.Legitimacy > 70 {
		m *= 0.85
	}
	if s.Credibility < 40 {
		m *= 1.25
	}
	if s.DomesticSupport < 35 {
		m *= 1.30
	}
	if s.DiplomaticCapital > 70 {
		m *= 0.85
	}

	if m < MinModifier {
		return MinModifier
	}
	if m > MaxModifier {
		return MaxModifier
	}
	return m
}

func clampScore(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
