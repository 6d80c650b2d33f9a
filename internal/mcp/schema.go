// Package mcp provides an MCP (Model Context Protocol) server for accord.
package mcp

import (
	"time"

	"github.com/accordlab/accord/internal/calibrate"
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/store"
	"github.com/accordlab/accord/internal/strategy"
	"github.com/accordlab/accord/internal/validation"
)

// EvaluateInput defines the input for the accord_evaluate tool.
type EvaluateInput struct {
	Scenario  string         `json:"scenario" jsonschema:"Path to the scenario YAML file"`
	Offering  string         `json:"offering_party" jsonschema:"ID of the party making the offer"`
	Agreement map[string]any `json:"agreement" jsonschema:"Agreement vector: issue key to numeric level in [0;1]; an option name; or 'unchanged'"`
	Framing   float64        `json:"framing,omitempty" jsonschema:"Framing multiplier applied to the prospect value (default: 1.0)"`
}

// EvaluateOutput defines the output for the accord_evaluate tool.
type EvaluateOutput struct {
	Utilities       map[string]models.UtilityResult `json:"utilities" jsonschema:"Per-party utility results"`
	ZOPAExists      bool                            `json:"zopa_exists" jsonschema:"Whether every party clears its BATNA"`
	ParetoEfficient bool                            `json:"pareto_efficient" jsonschema:"Whether no bounded perturbation improves a party without harming another"`
	NashProduct     float64                         `json:"nash_product" jsonschema:"Product of per-party BATNA surpluses"`
}

// SimulateInput defines the input for the accord_simulate tool.
type SimulateInput struct {
	Domain         string           `json:"domain,omitempty" jsonschema:"Conflict domain: maritime, territorial, resource, political, or ethnic (default: maritime)"`
	Scenario       string           `json:"scenario,omitempty" jsonschema:"Optional scenario YAML providing tables and measure catalogs"`
	Steps          int              `json:"steps,omitempty" jsonschema:"Number of simulation steps (default from config)"`
	Seed           int64            `json:"seed,omitempty" jsonschema:"RNG seed; 0 generates one and reports it"`
	EnabledEffects []string         `json:"enabled_effects,omitempty" jsonschema:"IDs of confidence-building measures in force"`
	Strategic      *strategy.Scores `json:"strategic,omitempty" jsonschema:"Soft-power scores in [0;100] (default: neutral 50s)"`
	Save           bool             `json:"save,omitempty" jsonschema:"Persist the run to the store (default: false)"`
}

// SimulateOutput defines the output for the accord_simulate tool.
type SimulateOutput struct {
	Seed          int64             `json:"seed" jsonschema:"Seed actually used"`
	Count         int               `json:"count" jsonschema:"Total incidents"`
	MeanSeverity  float64           `json:"mean_severity" jsonschema:"Mean incident severity"`
	Trend         float64           `json:"trend" jsonschema:"Severity trend over the run"`
	FinalPressure float64           `json:"final_pressure" jsonschema:"Pressure at the last step"`
	Level         int               `json:"level" jsonschema:"Escalation ladder level for the final state"`
	LevelName     string            `json:"level_name" jsonschema:"Name of the ladder level"`
	Incidents     []models.Incident `json:"incidents,omitempty" jsonschema:"Ordered incident log"`
	RunID         string            `json:"run_id,omitempty" jsonschema:"Store ID when save was requested"`
}

// ClassifyInput defines the input for the accord_classify tool.
type ClassifyInput struct {
	Pressure     float64 `json:"pressure" jsonschema:"Current escalation pressure in [0;1]"`
	MeanSeverity float64 `json:"mean_severity" jsonschema:"Recent mean incident severity in [0;1]"`
	ActionRisk   float64 `json:"action_risk,omitempty" jsonschema:"Risk score of a proposed action in [0;1]"`
}

// ClassifyOutput defines the output for the accord_classify tool.
type ClassifyOutput struct {
	Level    int              `json:"level" jsonschema:"Ordinal escalation level 1-9"`
	Name     string           `json:"name" jsonschema:"Level name"`
	Sequence []DeescalateStep `json:"sequence" jsonschema:"Ordered graduated de-escalation moves"`
}

// DeescalateStep is one move of a de-escalation sequence.
type DeescalateStep struct {
	Order                 int    `json:"order"`
	Action                string `json:"action"`
	Description           string `json:"description"`
	RequiresReciprocation bool   `json:"requires_reciprocation"`
	Reversible            bool   `json:"reversible"`
}

// ValidateInput defines the input for the accord_validate tool.
type ValidateInput struct {
	Scenario     string `json:"scenario,omitempty" jsonschema:"Scenario YAML with a historical dataset"`
	Dataset      string `json:"dataset,omitempty" jsonschema:"Name of a historical dataset in the run store (alternative to scenario)"`
	Domain       string `json:"domain,omitempty" jsonschema:"Conflict domain (default: maritime or the scenario's domain)"`
	Replications int    `json:"replications,omitempty" jsonschema:"Number of replications (default from config)"`
	Seed         int64  `json:"seed,omitempty" jsonschema:"Batch seed; 0 generates one"`
}

// ValidateOutput defines the output for the accord_validate tool.
type ValidateOutput struct {
	Report validation.Report `json:"report" jsonschema:"Validation report"`
}

// CalibrateInput defines the input for the accord_calibrate tool.
type CalibrateInput struct {
	Scenario     string                 `json:"scenario,omitempty" jsonschema:"Scenario YAML with a historical dataset"`
	Dataset      string                 `json:"dataset,omitempty" jsonschema:"Name of a historical dataset in the run store (alternative to scenario)"`
	Domain       string                 `json:"domain,omitempty" jsonschema:"Conflict domain (default: maritime or the scenario's domain)"`
	Ranges       []calibrate.ParamRange `json:"ranges" jsonschema:"Parameter ranges to search"`
	Target       string                 `json:"target,omitempty" jsonschema:"Metric to maximize: overall_accuracy, severity_correlation, or frequency_rmse (default: overall_accuracy)"`
	Iterations   int                    `json:"iterations,omitempty" jsonschema:"Sampling budget (default: 50)"`
	Replications int                    `json:"replications,omitempty" jsonschema:"Replications per candidate (default: 20)"`
	Seed         int64                  `json:"seed,omitempty" jsonschema:"Search seed; 0 generates one"`
}

// CalibrateOutput defines the output for the accord_calibrate tool.
type CalibrateOutput struct {
	BestParams    map[string]float64 `json:"best_params" jsonschema:"Winning parameter sample"`
	AchievedScore float64            `json:"achieved_score" jsonschema:"Target-metric score of the best candidate"`
	Iterations    int                `json:"iterations" jsonschema:"Candidates evaluated"`
	TimedOut      bool               `json:"timed_out" jsonschema:"Whether the search was cut off before its budget"`
	Warning       string             `json:"warning,omitempty" jsonschema:"Warning message when the search timed out"`
	Report        validation.Report  `json:"report" jsonschema:"Validation report of the best candidate"`
}

// RunsInput defines the input for the accord_runs tool.
type RunsInput struct {
	ID    string `json:"id,omitempty" jsonschema:"Show one run in full instead of listing"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum list entries (default: 20)"`
}

// RunsOutput defines the output for the accord_runs tool.
type RunsOutput struct {
	Runs  []RunListItem    `json:"runs,omitempty" jsonschema:"Run summaries, newest first"`
	Run   *store.RunRecord `json:"run,omitempty" jsonschema:"Full run when an ID was given"`
	Count int              `json:"count" jsonschema:"Number of items"`
}

// RunListItem provides a list view of a stored run.
type RunListItem struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Domain        string    `json:"domain"`
	Seed          int64     `json:"seed"`
	Steps         int       `json:"steps"`
	IncidentCount int       `json:"incident_count"`
	MeanSeverity  float64   `json:"mean_severity"`
}
