// Package scenario loads and validates external content: scenario
// definitions (parties, issue schemas, historical datasets), per-domain
// incident-type tables, the confidence-building-measure catalog, and the
// strategic-action catalog.
//
// Content is immutable data the engine looks up by key. Everything is
// validated on load; malformed content fails fast with *ConfigError
// before any evaluation or simulation starts.
package scenario

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/strategy"
)

// ConfigError reports invalid setup: unknown domains, malformed tables,
// unknown issue keys, bad parameter ranges. It is raised before any
// simulation starts and is never partially applied.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// IncidentSpec declares one incident type within a domain table: its
// draw probability and severity range.
type IncidentSpec struct {
	Type        models.IncidentType `json:"type" yaml:"type"`
	Probability float64             `json:"probability" yaml:"probability"`
	MinSeverity float64             `json:"min_severity" yaml:"min_severity"`
	MaxSeverity float64             `json:"max_severity" yaml:"max_severity"`
}

// DomainTable is the incident-type table and default agent roster for one
// conflict domain.
type DomainTable struct {
	Domain models.Domain `json:"domain" yaml:"domain"`

	// Provisional marks tables that have not been validated against
	// historical data. Only the maritime table ships validated.
	Provisional bool `json:"provisional,omitempty" yaml:"provisional,omitempty"`

	Incidents []IncidentSpec `json:"incidents" yaml:"incidents"`

	// Agents is the default roster instantiated at simulation start.
	Agents []models.Agent `json:"agents" yaml:"agents"`
}

// Spec returns the incident spec for a type, and whether it exists.
func (t DomainTable) Spec(it models.IncidentType) (IncidentSpec, bool) {
	for _, s := range t.Incidents {
		if s.Type == it {
			return s, true
		}
	}
	return IncidentSpec{}, false
}

// Validate checks the table: probabilities sum to 1 within tolerance,
// severity ranges are ordered, the roster is non-empty with clamped
// parameters.
func (t DomainTable) Validate() error {
	field := "table." + string(t.Domain)
	if len(t.Incidents) == 0 {
		return &ConfigError{Field: field, Reason: "no incident types declared"}
	}

	sum := 0.0
	for _, s := range t.Incidents {
		if s.Probability < 0 {
			return &ConfigError{Field: field + "." + string(s.Type), Reason: "negative probability"}
		}
		if s.MinSeverity < 0 || s.MaxSeverity > 1 || s.MinSeverity > s.MaxSeverity {
			return &ConfigError{Field: field + "." + string(s.Type), Reason: "severity range must satisfy 0 <= min <= max <= 1"}
		}
		sum += s.Probability
	}
	if math.Abs(sum-1) > models.WeightTolerance {
		return &ConfigError{Field: field, Reason: "incident probabilities must sum to 1"}
	}

	if len(t.Agents) < 2 {
		return &ConfigError{Field: field + ".agents", Reason: "roster needs at least two agents"}
	}
	sides := map[string]bool{}
	for _, a := range t.Agents {
		if a.ID == "" {
			return &ConfigError{Field: field + ".agents", Reason: "agent id must not be empty"}
		}
		if a.BaselineAggression < 0 || a.BaselineAggression > 1 {
			return &ConfigError{Field: field + ".agents." + a.ID, Reason: "baseline aggression outside [0,1]"}
		}
		if a.ResponseThreshold <= 0 || a.ResponseThreshold > 1 {
			return &ConfigError{Field: field + ".agents." + a.ID, Reason: "response threshold outside (0,1]"}
		}
		sides[a.Side] = true
	}
	if len(sides) < 2 {
		return &ConfigError{Field: field + ".agents", Reason: "roster needs agents on at least two sides"}
	}
	return nil
}

// Measure is one confidence-building measure: an agreement effect that
// subtracts a fixed fraction from agent aggression while the agreement
// holds.
type Measure struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// AggressionReduction is the fraction subtracted from effective
	// aggression while the measure is in force (e.g. 0.04 for a hotline).
	AggressionReduction float64 `json:"aggression_reduction" yaml:"aggression_reduction"`
}

// IssueSchema declares one legal issue key for agreement vectors, with
// scored options for categorical issues.
type IssueSchema struct {
	Key  string           `json:"key" yaml:"key"`
	Kind models.IssueKind `json:"kind" yaml:"kind"`

	// Options maps categorical option names to their scored levels.
	Options map[string]float64 `json:"options,omitempty" yaml:"options,omitempty"`
}

// Definition is a full scenario: the parties, the legal issue space, the
// conflict domain, content catalogs, and the historical reference dataset.
type Definition struct {
	Name   string        `json:"name" yaml:"name"`
	Domain models.Domain `json:"domain" yaml:"domain"`

	Parties []models.Party `json:"parties" yaml:"parties"`
	Issues  []IssueSchema  `json:"issues" yaml:"issues"`

	// Measures and Actions override the built-in catalogs when non-empty.
	Measures []Measure         `json:"measures,omitempty" yaml:"measures,omitempty"`
	Actions  []strategy.Action `json:"actions,omitempty" yaml:"actions,omitempty"`

	// Tables override the built-in domain tables when non-empty.
	Tables []DomainTable `json:"tables,omitempty" yaml:"tables,omitempty"`

	// Historical is the reference incident dataset for validation.
	Historical []models.HistoricalIncidentRecord `json:"historical,omitempty" yaml:"historical,omitempty"`
}

// Load reads and validates a scenario definition from a YAML file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML scenario definition.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("scenario: decode: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the whole definition.
func (d *Definition) Validate() error {
	if d.Name == "" {
		return &ConfigError{Field: "name", Reason: "scenario name must not be empty"}
	}
	if _, err := models.ParseDomain(string(d.Domain)); err != nil {
		return &ConfigError{Field: "domain", Reason: err.Error()}
	}
	if len(d.Parties) == 0 {
		return &ConfigError{Field: "parties", Reason: "scenario needs at least one party"}
	}

	seen := map[string]bool{}
	for _, p := range d.Parties {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return &ConfigError{Field: "parties." + p.ID, Reason: "duplicate party id"}
		}
		seen[p.ID] = true
	}

	issueKeys := map[string]bool{}
	for _, is := range d.Issues {
		if is.Key == "" {
			return &ConfigError{Field: "issues", Reason: "issue key must not be empty"}
		}
		if issueKeys[is.Key] {
			return &ConfigError{Field: "issues." + is.Key, Reason: "duplicate issue key"}
		}
		issueKeys[is.Key] = true
		if is.Kind == models.IssueCategorical && len(is.Options) == 0 {
			return &ConfigError{Field: "issues." + is.Key, Reason: "categorical issue needs scored options"}
		}
		for name, score := range is.Options {
			if score < 0 || score > 1 {
				return &ConfigError{Field: "issues." + is.Key + "." + name, Reason: "option score outside [0,1]"}
			}
		}
	}

	// Every weighted party attribute must be a declared issue.
	if len(d.Issues) > 0 {
		for _, p := range d.Parties {
			for _, a := range p.Attributes {
				if a.Weight > 0 && !issueKeys[a.Name] {
					return &ConfigError{Field: "parties." + p.ID + "." + a.Name, Reason: "weighted attribute has no declared issue"}
				}
			}
		}
	}

	for _, m := range d.Measures {
		if m.ID == "" {
			return &ConfigError{Field: "measures", Reason: "measure id must not be empty"}
		}
		if m.AggressionReduction < 0 || m.AggressionReduction > 1 {
			return &ConfigError{Field: "measures." + m.ID, Reason: "aggression reduction outside [0,1]"}
		}
	}

	for _, t := range d.Tables {
		if _, err := models.ParseDomain(string(t.Domain)); err != nil {
			return &ConfigError{Field: "tables", Reason: err.Error()}
		}
		if err := t.Validate(); err != nil {
			return err
		}
	}

	for i, h := range d.Historical {
		if h.Count < 0 || h.MeanSeverity < 0 || h.MeanSeverity > 1 {
			return &ConfigError{Field: fmt.Sprintf("historical[%d]", i), Reason: "count must be >= 0 and mean severity in [0,1]"}
		}
	}
	return nil
}

// Table returns the scenario's table for the domain, falling back to the
// built-in catalog.
func (d *Definition) Table(domain models.Domain) (DomainTable, error) {
	for _, t := range d.Tables {
		if t.Domain == domain {
			return t, nil
		}
	}
	return BuiltinTable(domain)
}

// MeasureCatalog returns the scenario's measures, falling back to the
// built-in catalog.
func (d *Definition) MeasureCatalog() []Measure {
	if len(d.Measures) > 0 {
		return d.Measures
	}
	return BuiltinMeasures()
}

// ActionCatalog returns the scenario's strategic actions, falling back to
// the built-in catalog.
func (d *Definition) ActionCatalog() []strategy.Action {
	if len(d.Actions) > 0 {
		return d.Actions
	}
	return BuiltinActions()
}

// ParseAgreement converts a loosely-keyed offer into a typed agreement
// vector against the scenario's issue schema. Unknown issue keys are
// rejected; categorical options must be declared; numeric levels must lie
// in [0,1].
func (d *Definition) ParseAgreement(raw map[string]any) (models.AgreementVector, error) {
	schema := map[string]IssueSchema{}
	for _, is := range d.Issues {
		schema[is.Key] = is
	}

	av := make(models.AgreementVector, len(raw))
	for key, val := range raw {
		is, ok := schema[key]
		if !ok {
			return nil, &ConfigError{Field: "agreement." + key, Reason: "unknown issue key"}
		}

		switch v := val.(type) {
		case string:
			if v == "unchanged" {
				av[key] = models.UnchangedIssue()
				continue
			}
			score, ok := is.Options[v]
			if !ok {
				return nil, &ConfigError{Field: "agreement." + key, Reason: fmt.Sprintf("unknown option %q", v)}
			}
			av[key] = models.CategoricalIssue(v, score)
		case float64:
			if v < 0 || v > 1 {
				return nil, &ConfigError{Field: "agreement." + key, Reason: "numeric level outside [0,1]"}
			}
			av[key] = models.NumericIssue(v)
		case int:
			f := float64(v)
			if f < 0 || f > 1 {
				return nil, &ConfigError{Field: "agreement." + key, Reason: "numeric level outside [0,1]"}
			}
			av[key] = models.NumericIssue(f)
		case map[string]any:
			parts := make(map[string]float64, len(v))
			for pk, pv := range v {
				f, ok := toFloat(pv)
				if !ok || f < 0 || f > 1 {
					return nil, &ConfigError{Field: "agreement." + key + "." + pk, Reason: "composite part must be a number in [0,1]"}
				}
				parts[pk] = f
			}
			av[key] = models.CompositeIssue(parts)
		default:
			return nil, &ConfigError{Field: "agreement." + key, Reason: fmt.Sprintf("unsupported value type %T", val)}
		}
	}
	return av, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
