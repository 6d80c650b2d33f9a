// Package escalation implements the seeded, stepwise agent-based model
// that projects incident dynamics under an agreement: background pressure,
// per-agent aggression with environmental and contagion terms, Bernoulli
// incident occurrence per interacting agent pair, and type/severity draws
// from the domain's incident table.
//
// A replication is strictly sequential and owns one explicit random
// stream: identical seed and configuration reproduce an identical
// incident log.
package escalation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/accordlab/accord/internal/logging"
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/random"
	"github.com/accordlab/accord/internal/scenario"
	"github.com/accordlab/accord/internal/stats"
	"github.com/accordlab/accord/internal/strategy"
)

// ErrDiverged reports an unrecoverable non-finite simulation state. The
// affected replication aborts; batch callers report it as a failed
// replication rather than failing the batch.
var ErrDiverged = errors.New("escalation: simulation state diverged")

// trendBuckets is the number of equal step windows the incident series is
// folded into for the trend slope.
const trendBuckets = 10

// Summary aggregates one replication's incident log.
type Summary struct {
	// Count is the total number of incidents.
	Count int `json:"count"`

	// MeanSeverity is the mean incident severity, 0 when no incidents.
	MeanSeverity float64 `json:"mean_severity"`

	// Trend is the least-squares slope of per-window incident counts: the
	// sign says whether incidents were accelerating or cooling off.
	Trend float64 `json:"trend"`
}

// Result is the outcome of one replication.
type Result struct {
	// Seed is the seed actually used; with auto-seeding this is the only
	// way to reproduce the run.
	Seed int64 `json:"seed"`

	// Incidents is the ordered, append-only incident log.
	Incidents []models.Incident `json:"incidents"`

	Summary Summary `json:"summary"`

	// FinalPressure is the background pressure after the last step.
	FinalPressure float64 `json:"final_pressure"`
}

// RecentMeanSeverity is the mean severity of incidents within the last
// `window` steps of the run, 0 when the window is empty.
func (r Result) RecentMeanSeverity(window int) float64 {
	cutoff := 0
	if len(r.Incidents) > 0 {
		cutoff = r.Incidents[len(r.Incidents)-1].Step - window
	}
	var severities []float64
	for _, inc := range r.Incidents {
		if inc.Step > cutoff {
			severities = append(severities, inc.Severity)
		}
	}
	return stats.Mean(severities)
}

// Simulator runs replications for one configuration. Each Run owns its
// own mutable state; a Simulator may be reused sequentially but not
// concurrently.
type Simulator struct {
	cfg       Config
	table     scenario.DomainTable
	reduction float64 // summed aggression reduction of enabled measures
	modifier  float64 // composed strategic escalation modifier
	trace     *logging.TraceLogger
}

// New validates the configuration against the measure catalog and builds
// a simulator. A zero seed is replaced by a generated one.
func New(cfg Config, table scenario.DomainTable, measures []scenario.Measure) (*Simulator, error) {
	if err := cfg.Validate(measures); err != nil {
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	if table.Domain != cfg.Domain {
		return nil, &scenario.ConfigError{Field: "domain", Reason: fmt.Sprintf("table is for %s, config wants %s", table.Domain, cfg.Domain)}
	}

	if cfg.Seed == 0 {
		seed, err := random.NewSeed()
		if err != nil {
			return nil, err
		}
		cfg.Seed = seed
	}

	reduction := 0.0
	byID := map[string]scenario.Measure{}
	for _, m := range measures {
		byID[m.ID] = m
	}
	for _, id := range cfg.EnabledEffects {
		reduction += byID[id].AggressionReduction
	}

	return &Simulator{
		cfg:       cfg,
		table:     table,
		reduction: reduction,
		modifier:  strategy.ModifierFor(cfg.Strategic),
	}, nil
}

// SetTrace attaches a step-trace logger. A nil logger disables tracing.
func (s *Simulator) SetTrace(t *logging.TraceLogger) {
	s.trace = t
}

// Seed returns the seed the next Run will use.
func (s *Simulator) Seed() int64 {
	return s.cfg.Seed
}

// Run executes one replication: Steps sequential time steps from a fresh
// agent roster and a private random stream.
func (s *Simulator) Run() (Result, error) {
	rng := random.NewStream(s.cfg.Seed)

	agents := make([]models.Agent, len(s.table.Agents))
	copy(agents, s.table.Agents)
	for i := range agents {
		agents[i].Aggression = agents[i].BaselineAggression
		if agents[i].LearningRate == 0 {
			agents[i].LearningRate = 0.1
		}
	}

	env := environment{weather: s.cfg.Weather, mediaVisibility: s.cfg.MediaVisibility}
	pairs := crossSidePairs(agents)

	pressure := s.cfg.Pressure.Initial
	var incidents []models.Incident

	for t := 0; t < s.cfg.Steps; t++ {
		// 1. Background pressure recurrence.
		pressure = clamp01(pressure*s.cfg.Pressure.Decay + s.cfg.Pressure.Growth)
		if math.IsNaN(pressure) {
			return Result{}, fmt.Errorf("%w: pressure at step %d", ErrDiverged, t)
		}

		// Agreement effects are nullified once the cumulative incident
		// count exceeds the failure threshold.
		reduction := s.reduction
		if len(incidents) > s.cfg.FailureThreshold {
			reduction = 0
		}

		recent := countRecent(incidents, t, s.cfg.Lookback)

		// 2. Effective aggression per agent.
		eff := make([]float64, len(agents))
		for i := range agents {
			eff[i] = effectiveAggression(&agents[i], env, recent, reduction)
			if math.IsNaN(eff[i]) {
				return Result{}, fmt.Errorf("%w: aggression of %s at step %d", ErrDiverged, agents[i].ID, t)
			}
		}

		// 3–6. Per-pair occurrence trials and incident realization.
		for _, pr := range pairs {
			a, b := &agents[pr[0]], &agents[pr[1]]
			p := s.occurrenceProbability(eff[pr[0]], eff[pr[1]], a, b, pressure)
			if rng.Float64() >= p {
				continue
			}

			inc, err := s.drawIncident(rng, t, a, b)
			if err != nil {
				return Result{}, err
			}
			incidents = append(incidents, inc)

			respondToIncident(a, inc.Severity)
			respondToIncident(b, inc.Severity)
			updateBelief(a, inc.Severity)
			updateBelief(b, inc.Severity)

			s.trace.Log(map[string]any{
				"event":    "incident",
				"step":     t,
				"type":     inc.Type,
				"severity": inc.Severity,
				"pressure": pressure,
			})
		}

		// 7. Diplomatic cooling toward baseline.
		for i := range agents {
			cool(&agents[i], s.cfg.CoolingRate)
		}
	}

	return Result{
		Seed:          s.cfg.Seed,
		Incidents:     incidents,
		Summary:       summarize(incidents, s.cfg.Steps),
		FinalPressure: pressure,
	}, nil
}

// occurrenceProbability is the per-step Bernoulli probability for one
// interacting pair: pair aggression scaled by the strategic modifier and
// background pressure, passed through a logistic response centered on the
// pair's lower response threshold. Agents with higher risk tolerance get
// a flatter response, so they act further below their threshold.
func (s *Simulator) occurrenceProbability(effA, effB float64, a, b *models.Agent, pressure float64) float64 {
	pairAggr := 0.5 * (effA + effB) * s.modifier

	minThresh := a.ResponseThreshold
	if b.ResponseThreshold < minThresh {
		minThresh = b.ResponseThreshold
	}

	temp := 0.05 + 0.05*0.5*(a.RiskTolerance+b.RiskTolerance)
	response := 1 / (1 + math.Exp(-(pairAggr-minThresh)/temp))

	return clamp01(s.cfg.EncounterRate * response * (0.5 + pressure))
}

// drawIncident draws the incident type from the domain's categorical
// distribution, a uniform severity within the type's range, then applies
// weather amplification and media dampening, clamped back to the range.
func (s *Simulator) drawIncident(rng *rand.Rand, step int, a, b *models.Agent) (models.Incident, error) {
	u := rng.Float64()
	var spec scenario.IncidentSpec
	cum := 0.0
	for _, is := range s.table.Incidents {
		cum += is.Probability
		if u < cum {
			spec = is
			break
		}
	}
	if spec.Type == "" {
		// Cumulative rounding left u just above the final bound.
		spec = s.table.Incidents[len(s.table.Incidents)-1]
	}

	severity := spec.MinSeverity + rng.Float64()*(spec.MaxSeverity-spec.MinSeverity)
	if s.cfg.Weather {
		severity *= 1.20
	}
	if s.cfg.MediaVisibility >= 0.5 {
		severity *= 0.80
	}
	severity = clampRange(severity, spec.MinSeverity, spec.MaxSeverity)

	if math.IsNaN(severity) {
		return models.Incident{}, fmt.Errorf("%w: severity at step %d", ErrDiverged, step)
	}

	return models.Incident{
		Type:         spec.Type,
		Severity:     severity,
		Step:         step,
		Participants: []string{a.ID, b.ID},
	}, nil
}

// crossSidePairs enumerates interacting agent pairs (distinct sides) in
// roster order, so trials consume the random stream deterministically.
func crossSidePairs(agents []models.Agent) [][2]int {
	var pairs [][2]int
	for i := 0; i < len(agents); i++ {
		for j := i + 1; j < len(agents); j++ {
			if agents[i].Side != agents[j].Side {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// countRecent counts incidents within the lookback window before step t.
func countRecent(incidents []models.Incident, t, lookback int) int {
	n := 0
	for i := len(incidents) - 1; i >= 0; i-- {
		if incidents[i].Step < t-lookback {
			break
		}
		n++
	}
	return n
}

func summarize(incidents []models.Incident, steps int) Summary {
	sum := Summary{Count: len(incidents)}
	if len(incidents) == 0 {
		return sum
	}

	total := 0.0
	for _, inc := range incidents {
		total += inc.Severity
	}
	sum.MeanSeverity = total / float64(len(incidents))

	// Fold the log into equal step windows and fit a slope.
	buckets := make([]float64, trendBuckets)
	width := steps / trendBuckets
	if width < 1 {
		width = 1
	}
	for _, inc := range incidents {
		b := inc.Step / width
		if b >= trendBuckets {
			b = trendBuckets - 1
		}
		buckets[b]++
	}
	sum.Trend = stats.Slope(buckets)
	return sum
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
