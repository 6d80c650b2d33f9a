// Package calibrate searches simulation parameter ranges for the values
// that best reproduce a historical incident dataset. The search is
// random sampling: each iteration draws one candidate uniformly from
// every range, scores it with a validation batch, and keeps the best.
package calibrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/accordlab/accord/internal/escalation"
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/random"
	"github.com/accordlab/accord/internal/scenario"
	"github.com/accordlab/accord/internal/validation"
)

// ErrBudgetExhausted marks a search cut off before its iteration budget
// completed. It is carried as a warning on the result, never as a
// failure: the best candidate found so far is still returned.
var ErrBudgetExhausted = errors.New("calibration budget exhausted before completion")

// Tunable parameter names accepted in a ParamRange.
const (
	ParamEncounterRate   = "encounter_rate"
	ParamPressureInitial = "pressure_initial"
	ParamPressureGrowth  = "pressure_growth"
	ParamPressureDecay   = "pressure_decay"
	ParamCoolingRate     = "cooling_rate"
	ParamMediaVisibility = "media_visibility"
)

// Target metric names.
const (
	TargetOverallAccuracy     = "overall_accuracy"
	TargetSeverityCorrelation = "severity_correlation"
	TargetFrequencyRMSE       = "frequency_rmse"
)

// ParamRange bounds one tunable parameter.
type ParamRange struct {
	Name string  `json:"name" yaml:"name"`
	Min  float64 `json:"min" yaml:"min"`
	Max  float64 `json:"max" yaml:"max"`
}

// Config holds the search parameters.
type Config struct {
	// Ranges defines the search space. At least one range is required.
	Ranges []ParamRange

	// Target selects the metric to maximize. Default: overall accuracy.
	// FrequencyRMSE is converted to a descending score so lower RMSE
	// still means a higher score.
	Target string

	// Iterations is the sampling budget. Default: 50.
	Iterations int

	// Validation configures the batch scoring each candidate. Its
	// replication count dominates the search cost, so the default is
	// smaller than a standalone validation run.
	Validation validation.Config
}

// DefaultConfig returns the standard search configuration.
func DefaultConfig() Config {
	v := validation.DefaultConfig()
	v.Replications = 20
	v.BootstrapResamples = 200
	return Config{
		Target:     TargetOverallAccuracy,
		Iterations: 50,
		Validation: v,
	}
}

// Result is the outcome of a calibration search.
type Result struct {
	// BestParams holds the winning sample, one value per range.
	BestParams map[string]float64 `json:"best_params"`

	// AchievedScore is the target-metric score of the best candidate.
	AchievedScore float64 `json:"achieved_score"`

	// Report is the validation report of the best candidate.
	Report validation.Report `json:"report"`

	// Iterations counts candidates actually evaluated.
	Iterations int `json:"iterations"`

	// TimedOut is set when the search was cancelled before the budget
	// completed. Warning then carries ErrBudgetExhausted.
	TimedOut bool  `json:"timed_out"`
	Warning  error `json:"-"`
}

// Run performs the search. Malformed ranges and unknown parameter or
// metric names fail fast before any simulation starts. Cancellation is
// cooperative, checked between iterations; a cancelled search returns
// the best result found so far with TimedOut set.
func Run(ctx context.Context, cfg Config, simCfg escalation.Config, table scenario.DomainTable, measures []scenario.Measure, historical []models.HistoricalIncidentRecord) (Result, error) {
	if err := validate(cfg); err != nil {
		return Result{}, err
	}
	if cfg.Iterations <= 0 {
		cfg.Iterations = 50
	}
	if cfg.Target == "" {
		cfg.Target = TargetOverallAccuracy
	}
	if simCfg.Seed == 0 {
		seed, err := random.NewSeed()
		if err != nil {
			return Result{}, err
		}
		simCfg.Seed = seed
	}

	// One stream drives every draw, and every candidate is scored on
	// the same base seed, so candidates differ only in parameters.
	rng := random.NewStream(simCfg.Seed)

	result := Result{AchievedScore: -1}
	for i := 0; i < cfg.Iterations; i++ {
		if ctx.Err() != nil {
			return timedOut(result), nil
		}

		params := make(map[string]float64, len(cfg.Ranges))
		for _, r := range cfg.Ranges {
			params[r.Name] = r.Min + rng.Float64()*(r.Max-r.Min)
		}

		candidate := apply(simCfg, params)
		report, err := validation.Run(ctx, cfg.Validation, candidate, table, measures, historical)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return timedOut(result), nil
			}
			return Result{}, fmt.Errorf("calibrate: scoring iteration %d: %w", i, err)
		}

		result.Iterations++
		score := score(cfg.Target, report)
		if score > result.AchievedScore {
			result.AchievedScore = score
			result.BestParams = params
			result.Report = report
		}
	}
	return result, nil
}

func timedOut(r Result) Result {
	r.TimedOut = true
	r.Warning = ErrBudgetExhausted
	return r
}

func validate(cfg Config) error {
	if len(cfg.Ranges) == 0 {
		return &scenario.ConfigError{Field: "ranges", Reason: "at least one parameter range is required"}
	}
	for _, r := range cfg.Ranges {
		if !knownParam(r.Name) {
			return &scenario.ConfigError{Field: "ranges", Reason: fmt.Sprintf("unknown parameter %q", r.Name)}
		}
		if r.Min > r.Max {
			return &scenario.ConfigError{Field: "ranges", Reason: fmt.Sprintf("parameter %q: min %v exceeds max %v", r.Name, r.Min, r.Max)}
		}
	}
	if cfg.Target != "" && !knownTarget(cfg.Target) {
		return &scenario.ConfigError{Field: "target", Reason: fmt.Sprintf("unknown metric %q", cfg.Target)}
	}
	return nil
}

func knownParam(name string) bool {
	switch name {
	case ParamEncounterRate, ParamPressureInitial, ParamPressureGrowth,
		ParamPressureDecay, ParamCoolingRate, ParamMediaVisibility:
		return true
	}
	return false
}

func knownTarget(name string) bool {
	switch name {
	case TargetOverallAccuracy, TargetSeverityCorrelation, TargetFrequencyRMSE:
		return true
	}
	return false
}

// apply copies the base config with one candidate's parameters set.
func apply(base escalation.Config, params map[string]float64) escalation.Config {
	cfg := base
	for name, v := range params {
		switch name {
		case ParamEncounterRate:
			cfg.EncounterRate = v
		case ParamPressureInitial:
			cfg.Pressure.Initial = v
		case ParamPressureGrowth:
			cfg.Pressure.Growth = v
		case ParamPressureDecay:
			cfg.Pressure.Decay = v
		case ParamCoolingRate:
			cfg.CoolingRate = v
		case ParamMediaVisibility:
			cfg.MediaVisibility = v
		}
	}
	return cfg
}

// score maps a report onto the target metric, ascending-is-better.
func score(target string, report validation.Report) float64 {
	switch target {
	case TargetSeverityCorrelation:
		return report.SeverityCorrelation
	case TargetFrequencyRMSE:
		return 1 / (1 + report.FrequencyRMSE)
	default:
		return report.OverallAccuracy
	}
}
