package escalation

import (
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/scenario"
	"github.com/accordlab/accord/internal/strategy"
)

// PressureConfig parameterizes the background pressure recurrence
// pressure' = clamp(pressure*Decay + Growth). The recurrence is a
// contraction converging toward Growth/(1-Decay).
type PressureConfig struct {
	// Initial pressure at step 0. Default: 0.
	Initial float64 `json:"initial" yaml:"initial"`

	// Decay is the per-step retention factor. Default: 0.98.
	Decay float64 `json:"decay" yaml:"decay"`

	// Growth is the per-step additive pressure. Default: 0.01.
	Growth float64 `json:"growth" yaml:"growth"`
}

// Config fully describes one simulation replication.
type Config struct {
	// Steps is the number of discrete time steps. Default: 200
	// (roughly twelve months). Must be positive.
	Steps int `json:"steps" yaml:"steps"`

	// Seed drives the replication's private random stream. A zero seed
	// requests auto-seeding; the seed actually used is recorded on the
	// result so the run stays reproducible.
	Seed int64 `json:"seed" yaml:"seed"`

	// Domain selects the incident-type table.
	Domain models.Domain `json:"domain" yaml:"domain"`

	// EnabledEffects lists the confidence-building measures in force,
	// by measure ID.
	EnabledEffects []string `json:"enabled_effects" yaml:"enabled_effects"`

	// Strategic is the strategic-context snapshot whose composed modifier
	// scales incident probabilities for the whole run.
	Strategic strategy.Scores `json:"strategic" yaml:"strategic"`

	// Pressure parameterizes the background pressure recurrence.
	Pressure PressureConfig `json:"pressure" yaml:"pressure"`

	// Weather marks adverse weather for the run: effective aggression
	// +7%, incident severity +20%.
	Weather bool `json:"weather" yaml:"weather"`

	// MediaVisibility in [0,1] dampens aggression by 2–4% (interpolated)
	// and, above 0.5, dampens incident severity by 20%.
	MediaVisibility float64 `json:"media_visibility" yaml:"media_visibility"`

	// FailureThreshold is the cumulative incident count beyond which
	// agreement effects are nullified. Default: 20.
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold"`

	// Lookback is the incident window, in steps, feeding the contagion
	// term. Default: 5.
	Lookback int `json:"lookback" yaml:"lookback"`

	// EncounterRate scales per-pair incident frequency. Default: 0.05.
	EncounterRate float64 `json:"encounter_rate" yaml:"encounter_rate"`

	// CoolingRate is the per-step decay of aggression deviation from
	// baseline. Default: 0.02.
	CoolingRate float64 `json:"cooling_rate" yaml:"cooling_rate"`
}

// DefaultConfig returns the standard replication configuration for a
// domain. The seed is zero (auto-seeded) until set explicitly.
func DefaultConfig(domain models.Domain) Config {
	return Config{
		Steps:  200,
		Domain: domain,
		Strategic: strategy.Scores{
			DiplomaticCapital: 50,
			Legitimacy:        50,
			DomesticSupport:   50,
			Credibility:       50,
		},
		Pressure: PressureConfig{
			Initial: 0,
			Decay:   0.98,
			Growth:  0.01,
		},
		FailureThreshold: 20,
		Lookback:         5,
		EncounterRate:    0.05,
		CoolingRate:      0.02,
	}
}

// Validate checks the configuration against the measure catalog. It fails
// fast with *scenario.ConfigError before any simulation state is built.
func (c Config) Validate(measures []scenario.Measure) error {
	if c.Steps <= 0 {
		return &scenario.ConfigError{Field: "steps", Reason: "must be positive"}
	}
	if _, err := models.ParseDomain(string(c.Domain)); err != nil {
		return &scenario.ConfigError{Field: "domain", Reason: err.Error()}
	}
	if c.Pressure.Decay < 0 || c.Pressure.Decay >= 1 {
		return &scenario.ConfigError{Field: "pressure.decay", Reason: "must lie in [0,1)"}
	}
	if c.Pressure.Growth < 0 {
		return &scenario.ConfigError{Field: "pressure.growth", Reason: "must be non-negative"}
	}
	if c.Pressure.Initial < 0 || c.Pressure.Initial > 1 {
		return &scenario.ConfigError{Field: "pressure.initial", Reason: "must lie in [0,1]"}
	}
	if c.MediaVisibility < 0 || c.MediaVisibility > 1 {
		return &scenario.ConfigError{Field: "media_visibility", Reason: "must lie in [0,1]"}
	}
	if c.Lookback <= 0 {
		return &scenario.ConfigError{Field: "lookback", Reason: "must be positive"}
	}
	if c.FailureThreshold < 0 {
		return &scenario.ConfigError{Field: "failure_threshold", Reason: "must be non-negative"}
	}
	if c.EncounterRate <= 0 || c.EncounterRate > 1 {
		return &scenario.ConfigError{Field: "encounter_rate", Reason: "must lie in (0,1]"}
	}
	if c.CoolingRate < 0 || c.CoolingRate > 1 {
		return &scenario.ConfigError{Field: "cooling_rate", Reason: "must lie in [0,1]"}
	}

	known := map[string]bool{}
	for _, m := range measures {
		known[m.ID] = true
	}
	for _, id := range c.EnabledEffects {
		if !known[id] {
			return &scenario.ConfigError{Field: "enabled_effects", Reason: "unknown measure " + id}
		}
	}
	return nil
}
