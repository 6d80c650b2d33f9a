package models

// AgentKind tags the agent variant. Each kind carries its own parameter
// defaults in the domain catalog; all kinds share the same capability set
// (effective aggression, incident response, belief update).
type AgentKind string

const (
	AgentCoastGuard AgentKind = "coast-guard"
	AgentNavy       AgentKind = "navy"
	AgentMilitia    AgentKind = "militia"
	AgentFisher     AgentKind = "fisher"
)

// Agent is one actor in the escalation simulation. Agents are created at
// simulation start, mutated each step, and discarded when the run ends.
type Agent struct {
	ID   string    `json:"id" yaml:"id"`
	Kind AgentKind `json:"kind" yaml:"kind"`

	// Side is the party the agent acts for.
	Side string `json:"side" yaml:"side"`

	// BaselineAggression is the agent's resting aggression in [0,1].
	BaselineAggression float64 `json:"baseline_aggression" yaml:"baseline_aggression"`

	// Aggression is the current aggression level, pulled back toward the
	// baseline by diplomatic cooling each step. Clamped to [0,1].
	Aggression float64 `json:"aggression" yaml:"aggression"`

	// RiskTolerance shapes how readily the agent acts near its threshold.
	RiskTolerance float64 `json:"risk_tolerance" yaml:"risk_tolerance"`

	// RuleFollowing is the propensity to respect agreed restraints in [0,1].
	// Higher values shrink the aggression bump the agent takes when it is
	// involved in an incident.
	RuleFollowing float64 `json:"rule_following" yaml:"rule_following"`

	// ResponseThreshold is the effective-aggression level above which the
	// agent's encounters can produce incidents.
	ResponseThreshold float64 `json:"response_threshold" yaml:"response_threshold"`

	// LearningRate scales belief updates from observed outcomes. Default 0.1.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// Belief is the agent's current estimate of the other side's hostility
	// in [0,1], updated Bayesian-style from realized incidents.
	Belief float64 `json:"belief" yaml:"belief"`
}
