// Package bargain orchestrates the utility model across registered
// parties: it evaluates offers, derives the ZOPA flag, approximates
// Pareto efficiency by local perturbation, and computes the Nash
// bargaining product.
package bargain

import (
	"fmt"
	"sort"

	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/utility"
)

// Config holds the tunable parameters of the engine.
type Config struct {
	// ParetoDelta is the perturbation step applied to each numeric issue
	// when probing for Pareto improvements. Default: 0.05.
	ParetoDelta float64

	// ParetoEpsilon is the minimum utility change treated as a strict
	// improvement or a harm during the probe. Default: 1e-9.
	ParetoEpsilon float64
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		ParetoDelta:   0.05,
		ParetoEpsilon: 1e-9,
	}
}

// Evaluation is the outcome of evaluating one offer across all parties.
type Evaluation struct {
	// Utilities maps party ID to its utility result.
	Utilities map[string]models.UtilityResult `json:"utilities"`

	// ZOPAExists is true iff every party's utility meets or exceeds its
	// BATNA.
	ZOPAExists bool `json:"zopa_exists"`

	// ParetoEfficient is true when the bounded perturbation search found
	// no change that improves one party without harming another.
	ParetoEfficient bool `json:"pareto_efficient"`

	// NashProduct is the product over parties of max(0, utility - BATNA).
	// Used to rank candidate agreements, never to select one automatically.
	NashProduct float64 `json:"nash_product"`
}

// Engine evaluates offers for a registered roster of parties. The roster
// is the engine's only state; EvaluateOffer itself is deterministic and
// side-effect-free, so concurrent evaluation is safe once registration
// is complete.
type Engine struct {
	model   *utility.Model
	cfg     Config
	parties []models.Party
	byID    map[string]int
}

// NewEngine creates a bargaining engine over the given utility model.
func NewEngine(model *utility.Model, cfg Config) *Engine {
	return &Engine{
		model: model,
		cfg:   cfg,
		byID:  make(map[string]int),
	}
}

// AddParty validates and registers a party. Party IDs must be unique.
func (e *Engine) AddParty(p models.Party) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, dup := e.byID[p.ID]; dup {
		return fmt.Errorf("bargain: party %s already registered", p.ID)
	}
	e.byID[p.ID] = len(e.parties)
	e.parties = append(e.parties, p)
	return nil
}

// Parties returns the registered parties in registration order.
func (e *Engine) Parties() []models.Party {
	out := make([]models.Party, len(e.parties))
	copy(out, e.parties)
	return out
}

// EvaluateOffer evaluates the agreement vector for every registered party.
// offeringPartyID must name a registered party; the evaluation itself is
// symmetric, the offering party only anchors error reporting.
func (e *Engine) EvaluateOffer(offeringPartyID string, av models.AgreementVector) (Evaluation, error) {
	if len(e.parties) == 0 {
		return Evaluation{}, fmt.Errorf("bargain: no parties registered")
	}
	if _, ok := e.byID[offeringPartyID]; !ok {
		return Evaluation{}, fmt.Errorf("bargain: unknown offering party %s", offeringPartyID)
	}

	utilities := make(map[string]models.UtilityResult, len(e.parties))
	zopa := true
	nash := 1.0
	for _, p := range e.parties {
		res, err := e.model.Compute(p, av)
		if err != nil {
			return Evaluation{}, fmt.Errorf("bargain: evaluate for party %s: %w", p.ID, err)
		}
		utilities[p.ID] = res

		if res.Utility < p.BATNA {
			zopa = false
		}
		surplus := res.Utility - p.BATNA
		if surplus < 0 {
			surplus = 0
		}
		nash *= surplus
	}

	pareto, err := e.paretoEfficient(av, utilities)
	if err != nil {
		return Evaluation{}, err
	}

	return Evaluation{
		Utilities:       utilities,
		ZOPAExists:      zopa,
		ParetoEfficient: pareto,
		NashProduct:     nash,
	}, nil
}

// paretoEfficient probes one-issue perturbations of the vector. If any
// perturbation strictly improves at least one party without decreasing
// any other, the offer is not efficient. The search is bounded: only
// numeric issues, only ±ParetoDelta.
func (e *Engine) paretoEfficient(av models.AgreementVector, base map[string]models.UtilityResult) (bool, error) {
	for _, key := range sortedNumericKeys(av) {
		for _, dir := range []float64{1, -1} {
			perturbed := perturb(av, key, dir*e.cfg.ParetoDelta)
			improved, harmed, err := e.compareToBase(perturbed, base)
			if err != nil {
				return false, err
			}
			if improved && !harmed {
				return false, nil
			}
		}
	}
	return true, nil
}

// compareToBase evaluates the perturbed vector and reports whether any
// party strictly improved and whether any was harmed, relative to base.
func (e *Engine) compareToBase(av models.AgreementVector, base map[string]models.UtilityResult) (improved, harmed bool, err error) {
	for _, p := range e.parties {
		res, cerr := e.model.Compute(p, av)
		if cerr != nil {
			return false, false, fmt.Errorf("bargain: pareto probe for party %s: %w", p.ID, cerr)
		}
		delta := res.Utility - base[p.ID].Utility
		if delta > e.cfg.ParetoEpsilon {
			improved = true
		}
		if delta < -e.cfg.ParetoEpsilon {
			harmed = true
			return improved, harmed, nil
		}
	}
	return improved, harmed, nil
}

// perturb copies the vector with one numeric issue shifted by delta,
// clamped to the unit interval.
func perturb(av models.AgreementVector, key string, delta float64) models.AgreementVector {
	out := make(models.AgreementVector, len(av))
	for k, v := range av {
		out[k] = v
	}
	v := out[key]
	level := v.Numeric + delta
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	out[key] = models.NumericIssue(level)
	return out
}

// sortedNumericKeys returns the vector's numeric issue keys in a stable
// order so the probe is deterministic.
func sortedNumericKeys(av models.AgreementVector) []string {
	var keys []string
	for k, v := range av {
		if v.Kind == models.IssueNumeric {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
