// Package ladder maps continuous simulation state to the discrete
// nine-level escalation ladder and derives graduated de-escalation
// sequences (GRIT: small unilateral steps first, commitment escalating
// only with reciprocation).
package ladder

// Level is an ordinal escalation level from 1 (routine operations) to 9
// (armed conflict).
type Level int

// The nine rungs of the ladder.
const (
	RoutineOperations Level = iota + 1
	VerbalWarnings
	DemonstrativeManeuvers
	PhysicalObstruction
	NonlethalEngagement
	ForcefulInterdiction
	ForceMobilization
	LimitedArmedEngagement
	ArmedConflict
)

// MaxLevel is the top rung.
const MaxLevel = ArmedConflict

var levelNames = map[Level]string{
	RoutineOperations:      "routine operations",
	VerbalWarnings:         "verbal warnings",
	DemonstrativeManeuvers: "demonstrative maneuvers",
	PhysicalObstruction:    "physical obstruction",
	NonlethalEngagement:    "nonlethal engagement",
	ForcefulInterdiction:   "forceful interdiction",
	ForceMobilization:      "force mobilization",
	LimitedArmedEngagement: "limited armed engagement",
	ArmedConflict:          "armed conflict",
}

// String returns the human-facing name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// Input is the continuous state the classifier folds into a level. All
// fields are clamped to [0,1] before use.
type Input struct {
	// Pressure is the simulator's background pressure.
	Pressure float64 `json:"pressure"`

	// MeanSeverity is the mean severity of recent incidents.
	MeanSeverity float64 `json:"mean_severity"`

	// ActionRisk scores a proposed action's escalation risk; zero when
	// classifying bare state.
	ActionRisk float64 `json:"action_risk"`
}

// Composite weights. Pressure dominates, severity second, proposed-action
// risk last; weights sum to 1 so the composite stays in [0,1].
const (
	pressureWeight = 0.45
	severityWeight = 0.35
	riskWeight     = 0.20
)

// Classify maps the input to an escalation level. The mapping is
// monotonic: increasing any input never decreases the level.
func Classify(in Input) Level {
	composite := pressureWeight*clamp01(in.Pressure) +
		severityWeight*clamp01(in.MeanSeverity) +
		riskWeight*clamp01(in.ActionRisk)

	level := Level(1 + int(composite*float64(MaxLevel)))
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}

// Step is one rung of a de-escalation sequence.
type Step struct {
	// Order is the step's position, starting at 1.
	Order int `json:"order"`

	// Action identifies the conciliatory move.
	Action string `json:"action"`

	// Description is the human-facing wording of the move.
	Description string `json:"description"`

	// RequiresReciprocation is false only for the opening unilateral
	// step; every later step is conditional on the other side matching
	// the previous one.
	RequiresReciprocation bool `json:"requires_reciprocation"`

	// Reversible marks that the step can be withdrawn if not
	// reciprocated. All catalog steps are reversible.
	Reversible bool `json:"reversible"`
}

// deescalationCatalog lists conciliatory moves ordered by commitment,
// smallest first.
var deescalationCatalog = []Step{
	{Action: "declare-restraint", Description: "announce a unilateral pause in assertive operations"},
	{Action: "open-hotline", Description: "open or reactivate a direct communication channel"},
	{Action: "pull-back-patrols", Description: "withdraw patrols from the immediate contact zone"},
	{Action: "prenotify-exercises", Description: "pre-notify all exercises and large movements"},
	{Action: "joint-incident-protocol", Description: "adopt a joint incident management protocol"},
	{Action: "demilitarize-flashpoint", Description: "demilitarize the most active flashpoint"},
	{Action: "verification-regime", Description: "accept mutual verification of commitments"},
	{Action: "phased-force-reduction", Description: "begin phased reduction of deployed forces"},
}

// DeescalationSequence returns the ordered, reversible sequence of
// conciliatory steps for a level. Deeper escalation yields a longer
// sequence; level 1 needs none. Only the first step is unconditional.
func DeescalationSequence(l Level) []Step {
	if l <= RoutineOperations {
		return nil
	}

	n := int(l) - 1
	if n > len(deescalationCatalog) {
		n = len(deescalationCatalog)
	}

	steps := make([]Step, n)
	for i := 0; i < n; i++ {
		s := deescalationCatalog[i]
		s.Order = i + 1
		s.RequiresReciprocation = i > 0
		s.Reversible = true
		steps[i] = s
	}
	return steps
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
