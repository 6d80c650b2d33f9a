package escalation

import "github.com/accordlab/accord/internal/models"

// Behavioral constants shared by all agent kinds. Every kind supports the
// same capability set (effective aggression, incident response, belief
// update), differing only in the parameters its roster entry carries.
const (
	// weatherAggression is the aggression bonus under adverse weather.
	weatherAggression = 0.07

	// mediaAggressionMin/Max bound the aggression dampening from media
	// visibility, interpolated by the visibility level.
	mediaAggressionMin = 0.02
	mediaAggressionMax = 0.04

	// contagionPerIncident is the aggression added per incident observed
	// within the lookback window.
	contagionPerIncident = 0.01

	// beliefWeight couples the agent's hostility belief into its
	// effective aggression: a belief of 1 adds beliefWeight/2, a belief
	// of 0 subtracts it.
	beliefWeight = 0.10

	// responseGain scales the aggression bump an involved agent takes
	// from an incident.
	responseGain = 0.05
)

// effectiveAggression computes the agent's aggression for this step:
// current aggression plus environment modifiers, the contagion term, the
// belief coupling, minus agreement-effect reductions.
func effectiveAggression(a *models.Agent, env environment, recentIncidents int, effectReduction float64) float64 {
	eff := a.Aggression

	if env.weather {
		eff += weatherAggression
	}
	if env.mediaVisibility > 0 {
		eff -= mediaAggressionMin + (mediaAggressionMax-mediaAggressionMin)*env.mediaVisibility
	}

	eff += contagionPerIncident * float64(recentIncidents)
	eff += beliefWeight * (a.Belief - 0.5)
	eff -= effectReduction

	return clamp01(eff)
}

// respondToIncident raises the involved agent's aggression in proportion
// to the incident's severity. Rule-following agents absorb less of the
// provocation.
func respondToIncident(a *models.Agent, severity float64) {
	bump := responseGain * severity * (1 - 0.5*a.RuleFollowing) * (0.5 + a.RiskTolerance)
	a.Aggression = clamp01(a.Aggression + bump)
}

// updateBelief moves the agent's hostility belief toward the realized
// outcome, scaled by its learning rate. The realized severity acts as the
// evidence signal.
func updateBelief(a *models.Agent, signal float64) {
	a.Belief = clamp01(a.Belief + a.LearningRate*(clamp01(signal)-a.Belief))
}

// cool decays the agent's aggression deviation from baseline, modeling
// diplomatic cooling between incidents.
func cool(a *models.Agent, rate float64) {
	a.Aggression = clamp01(a.Aggression - rate*(a.Aggression-a.BaselineAggression))
}

// environment carries the run-constant environmental conditions.
type environment struct {
	weather         bool
	mediaVisibility float64
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
