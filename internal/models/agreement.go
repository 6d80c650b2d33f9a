package models

// IssueKind tags the variant held by an IssueValue.
type IssueKind string

const (
	// IssueNumeric is a direct numeric level in [0,1].
	IssueNumeric IssueKind = "numeric"

	// IssueCategorical is a named option with a pre-scored level.
	IssueCategorical IssueKind = "categorical"

	// IssueComposite is a weighted bundle of sub-levels.
	IssueComposite IssueKind = "composite"

	// IssueUnchanged marks the issue as explicitly left at its status quo.
	// The party's attribute StatusQuo value is used instead.
	IssueUnchanged IssueKind = "unchanged"
)

// IssueValue is one entry of an agreement vector. Exactly one variant is
// meaningful for a given Kind.
type IssueValue struct {
	Kind IssueKind `json:"kind" yaml:"kind"`

	// Numeric holds the level for IssueNumeric.
	Numeric float64 `json:"numeric,omitempty" yaml:"numeric,omitempty"`

	// Category names the chosen option for IssueCategorical; Score is the
	// scenario-assigned level for that option.
	Category string  `json:"category,omitempty" yaml:"category,omitempty"`
	Score    float64 `json:"score,omitempty" yaml:"score,omitempty"`

	// Parts holds sub-issue levels for IssueComposite. The composite level
	// is their unweighted mean.
	Parts map[string]float64 `json:"parts,omitempty" yaml:"parts,omitempty"`
}

// Numeric constructs a numeric issue value.
func NumericIssue(level float64) IssueValue {
	return IssueValue{Kind: IssueNumeric, Numeric: level}
}

// CategoricalIssue constructs a categorical issue value with its scored level.
func CategoricalIssue(category string, score float64) IssueValue {
	return IssueValue{Kind: IssueCategorical, Category: category, Score: score}
}

// CompositeIssue constructs a composite issue value from sub-levels.
func CompositeIssue(parts map[string]float64) IssueValue {
	return IssueValue{Kind: IssueComposite, Parts: parts}
}

// UnchangedIssue marks an issue as explicitly unchanged from the status quo.
func UnchangedIssue() IssueValue {
	return IssueValue{Kind: IssueUnchanged}
}

// Level resolves the issue value to a scalar level in [0,1].
// statusQuo supplies the level for IssueUnchanged.
func (v IssueValue) Level(statusQuo float64) float64 {
	switch v.Kind {
	case IssueNumeric:
		return clamp01(v.Numeric)
	case IssueCategorical:
		return clamp01(v.Score)
	case IssueComposite:
		if len(v.Parts) == 0 {
			return 0
		}
		sum := 0.0
		for _, p := range v.Parts {
			sum += clamp01(p)
		}
		return sum / float64(len(v.Parts))
	case IssueUnchanged:
		return clamp01(statusQuo)
	default:
		return 0
	}
}

// AgreementVector maps issue keys to proposed values. It is ephemeral:
// built per offer, consumed by evaluation, never stored by the engine.
type AgreementVector map[string]IssueValue

// MissingIssues returns the issue keys the party weights (non-zero) that
// the vector neither sets nor marks unchanged, in attribute order.
func (av AgreementVector) MissingIssues(p Party) []string {
	var missing []string
	for _, a := range p.Attributes {
		if a.Weight == 0 {
			continue
		}
		if _, ok := av[a.Name]; !ok {
			missing = append(missing, a.Name)
		}
	}
	return missing
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
