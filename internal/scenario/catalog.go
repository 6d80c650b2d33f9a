package scenario

import (
	"fmt"

	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/strategy"
)

// BuiltinTable returns the built-in incident table and roster for a
// domain. The maritime table is validated against historical incident
// data; the remaining domains ship provisional tables pending their own
// historical validation.
func BuiltinTable(domain models.Domain) (DomainTable, error) {
	switch domain {
	case models.DomainMaritime:
		return maritimeTable(), nil
	case models.DomainTerritorial:
		return territorialTable(), nil
	case models.DomainResource:
		return resourceTable(), nil
	case models.DomainPolitical:
		return politicalTable(), nil
	case models.DomainEthnic:
		return ethnicTable(), nil
	default:
		return DomainTable{}, &ConfigError{Field: "domain", Reason: fmt.Sprintf("unknown domain %q", domain)}
	}
}

func maritimeTable() DomainTable {
	return DomainTable{
		Domain: models.DomainMaritime,
		Incidents: []IncidentSpec{
			{Type: "water-cannon", Probability: 0.35, MinSeverity: 0.15, MaxSeverity: 0.45},
			{Type: "ramming", Probability: 0.20, MinSeverity: 0.40, MaxSeverity: 0.80},
			{Type: "detention", Probability: 0.20, MinSeverity: 0.30, MaxSeverity: 0.60},
			{Type: "near-miss", Probability: 0.25, MinSeverity: 0.05, MaxSeverity: 0.30},
		},
		Agents: []models.Agent{
			{ID: "blue-coast-guard", Kind: models.AgentCoastGuard, Side: "blue", BaselineAggression: 0.35, RiskTolerance: 0.40, RuleFollowing: 0.80, ResponseThreshold: 0.50, LearningRate: 0.10, Belief: 0.50},
			{ID: "blue-navy", Kind: models.AgentNavy, Side: "blue", BaselineAggression: 0.30, RiskTolerance: 0.30, RuleFollowing: 0.90, ResponseThreshold: 0.60, LearningRate: 0.10, Belief: 0.50},
			{ID: "blue-fishers", Kind: models.AgentFisher, Side: "blue", BaselineAggression: 0.25, RiskTolerance: 0.55, RuleFollowing: 0.50, ResponseThreshold: 0.55, LearningRate: 0.10, Belief: 0.50},
			{ID: "red-coast-guard", Kind: models.AgentCoastGuard, Side: "red", BaselineAggression: 0.40, RiskTolerance: 0.45, RuleFollowing: 0.75, ResponseThreshold: 0.50, LearningRate: 0.10, Belief: 0.50},
			{ID: "red-militia", Kind: models.AgentMilitia, Side: "red", BaselineAggression: 0.55, RiskTolerance: 0.65, RuleFollowing: 0.30, ResponseThreshold: 0.45, LearningRate: 0.10, Belief: 0.50},
			{ID: "red-fishers", Kind: models.AgentFisher, Side: "red", BaselineAggression: 0.30, RiskTolerance: 0.55, RuleFollowing: 0.45, ResponseThreshold: 0.55, LearningRate: 0.10, Belief: 0.50},
		},
	}
}

func territorialTable() DomainTable {
	return DomainTable{
		Domain:      models.DomainTerritorial,
		Provisional: true,
		Incidents: []IncidentSpec{
			{Type: "patrol-standoff", Probability: 0.40, MinSeverity: 0.10, MaxSeverity: 0.40},
			{Type: "border-crossing", Probability: 0.30, MinSeverity: 0.25, MaxSeverity: 0.55},
			{Type: "outpost-construction", Probability: 0.15, MinSeverity: 0.35, MaxSeverity: 0.65},
			{Type: "warning-fire", Probability: 0.15, MinSeverity: 0.50, MaxSeverity: 0.85},
		},
		Agents: []models.Agent{
			{ID: "blue-border-guard", Kind: models.AgentCoastGuard, Side: "blue", BaselineAggression: 0.35, RiskTolerance: 0.40, RuleFollowing: 0.80, ResponseThreshold: 0.50, LearningRate: 0.10, Belief: 0.50},
			{ID: "blue-army", Kind: models.AgentNavy, Side: "blue", BaselineAggression: 0.30, RiskTolerance: 0.30, RuleFollowing: 0.90, ResponseThreshold: 0.60, LearningRate: 0.10, Belief: 0.50},
			{ID: "red-border-guard", Kind: models.AgentCoastGuard, Side: "red", BaselineAggression: 0.40, RiskTolerance: 0.45, RuleFollowing: 0.75, ResponseThreshold: 0.50, LearningRate: 0.10, Belief: 0.50},
			{ID: "red-militia", Kind: models.AgentMilitia, Side: "red", BaselineAggression: 0.55, RiskTolerance: 0.65, RuleFollowing: 0.30, ResponseThreshold: 0.45, LearningRate: 0.10, Belief: 0.50},
		},
	}
}

func resourceTable() DomainTable {
	return DomainTable{
		Domain:      models.DomainResource,
		Provisional: true,
		Incidents: []IncidentSpec{
			{Type: "survey-interference", Probability: 0.35, MinSeverity: 0.10, MaxSeverity: 0.40},
			{Type: "equipment-seizure", Probability: 0.25, MinSeverity: 0.30, MaxSeverity: 0.60},
			{Type: "blockade", Probability: 0.20, MinSeverity: 0.40, MaxSeverity: 0.75},
			{Type: "sabotage", Probability: 0.20, MinSeverity: 0.45, MaxSeverity: 0.85},
		},
		Agents: []models.Agent{
			{ID: "blue-security", Kind: models.AgentCoastGuard, Side: "blue", BaselineAggression: 0.35, RiskTolerance: 0.40, RuleFollowing: 0.75, ResponseThreshold: 0.50, LearningRate: 0.10, Belief: 0.50},
			{ID: "blue-operators", Kind: models.AgentFisher, Side: "blue", BaselineAggression: 0.25, RiskTolerance: 0.50, RuleFollowing: 0.55, ResponseThreshold: 0.55, LearningRate: 0.10, Belief: 0.50},
			{ID: "red-security", Kind: models.AgentCoastGuard, Side: "red", BaselineAggression: 0.40, RiskTolerance: 0.45, RuleFollowing: 0.70, ResponseThreshold: 0.50, LearningRate: 0.10, Belief: 0.50},
			{ID: "red-militia", Kind: models.AgentMilitia, Side: "red", BaselineAggression: 0.50, RiskTolerance: 0.60, RuleFollowing: 0.35, ResponseThreshold: 0.45, LearningRate: 0.10, Belief: 0.50},
		},
	}
}

func politicalTable() DomainTable {
	return DomainTable{
		Domain:      models.DomainPolitical,
		Provisional: true,
		Incidents: []IncidentSpec{
			{Type: "protest-clash", Probability: 0.40, MinSeverity: 0.10, MaxSeverity: 0.45},
			{Type: "arrest-wave", Probability: 0.25, MinSeverity: 0.25, MaxSeverity: 0.55},
			{Type: "media-crackdown", Probability: 0.20, MinSeverity: 0.20, MaxSeverity: 0.50},
			{Type: "armed-confrontation", Probability: 0.15, MinSeverity: 0.50, MaxSeverity: 0.90},
		},
		Agents: []models.Agent{
			{ID: "gov-security", Kind: models.AgentCoastGuard, Side: "government", BaselineAggression: 0.40, RiskTolerance: 0.40, RuleFollowing: 0.70, ResponseThreshold: 0.50, LearningRate: 0.10, Belief: 0.50},
			{ID: "gov-army", Kind: models.AgentNavy, Side: "government", BaselineAggression: 0.30, RiskTolerance: 0.30, RuleFollowing: 0.85, ResponseThreshold: 0.60, LearningRate: 0.10, Belief: 0.50},
			{ID: "opp-militants", Kind: models.AgentMilitia, Side: "opposition", BaselineAggression: 0.55, RiskTolerance: 0.65, RuleFollowing: 0.30, ResponseThreshold: 0.45, LearningRate: 0.10, Belief: 0.50},
			{ID: "opp-activists", Kind: models.AgentFisher, Side: "opposition", BaselineAggression: 0.30, RiskTolerance: 0.55, RuleFollowing: 0.50, ResponseThreshold: 0.55, LearningRate: 0.10, Belief: 0.50},
		},
	}
}

func ethnicTable() DomainTable {
	return DomainTable{
		Domain:      models.DomainEthnic,
		Provisional: true,
		Incidents: []IncidentSpec{
			{Type: "communal-clash", Probability: 0.35, MinSeverity: 0.20, MaxSeverity: 0.55},
			{Type: "property-attack", Probability: 0.30, MinSeverity: 0.15, MaxSeverity: 0.45},
			{Type: "displacement", Probability: 0.20, MinSeverity: 0.40, MaxSeverity: 0.75},
			{Type: "armed-raid", Probability: 0.15, MinSeverity: 0.50, MaxSeverity: 0.90},
		},
		Agents: []models.Agent{
			{ID: "north-militia", Kind: models.AgentMilitia, Side: "north", BaselineAggression: 0.55, RiskTolerance: 0.60, RuleFollowing: 0.30, ResponseThreshold: 0.45, LearningRate: 0.10, Belief: 0.50},
			{ID: "north-villagers", Kind: models.AgentFisher, Side: "north", BaselineAggression: 0.25, RiskTolerance: 0.50, RuleFollowing: 0.55, ResponseThreshold: 0.55, LearningRate: 0.10, Belief: 0.50},
			{ID: "south-militia", Kind: models.AgentMilitia, Side: "south", BaselineAggression: 0.50, RiskTolerance: 0.60, RuleFollowing: 0.35, ResponseThreshold: 0.45, LearningRate: 0.10, Belief: 0.50},
			{ID: "south-villagers", Kind: models.AgentFisher, Side: "south", BaselineAggression: 0.25, RiskTolerance: 0.50, RuleFollowing: 0.55, ResponseThreshold: 0.55, LearningRate: 0.10, Belief: 0.50},
		},
	}
}

// BuiltinMeasures returns the default confidence-building-measure catalog.
func BuiltinMeasures() []Measure {
	return []Measure{
		{ID: "hotline", Name: "Direct communication hotline", AggressionReduction: 0.04},
		{ID: "fisheries-corridor", Name: "Shared fisheries corridor", AggressionReduction: 0.05},
		{ID: "joint-patrol", Name: "Joint patrol arrangement", AggressionReduction: 0.03},
		{ID: "prenotification", Name: "Exercise pre-notification", AggressionReduction: 0.02},
		{ID: "incident-protocol", Name: "Incident management protocol", AggressionReduction: 0.03},
	}
}

// BuiltinActions returns the default strategic-action catalog.
func BuiltinActions() []strategy.Action {
	return []strategy.Action{
		{
			ID:     "diplomatic-outreach",
			Name:   "High-level diplomatic outreach",
			Deltas: strategy.Scores{DiplomaticCapital: 6, Legitimacy: 2, DomesticSupport: -1, Credibility: 1},
		},
		{
			ID:     "public-commitment",
			Name:   "Public commitment to restraint",
			Deltas: strategy.Scores{DiplomaticCapital: 2, Legitimacy: 4, DomesticSupport: -3, Credibility: 3},
		},
		{
			ID:     "show-of-force",
			Name:   "Demonstrative show of force",
			Deltas: strategy.Scores{DiplomaticCapital: -4, Legitimacy: -3, DomesticSupport: 6, Credibility: 4},
		},
		{
			ID:     "unilateral-concession",
			Name:   "Unilateral conciliatory step",
			Deltas: strategy.Scores{DiplomaticCapital: 4, Legitimacy: 3, DomesticSupport: -4, Credibility: -2},
		},
		{
			ID:     "domestic-rally",
			Name:   "Domestic rally campaign",
			Deltas: strategy.Scores{DiplomaticCapital: -2, Legitimacy: -2, DomesticSupport: 7, Credibility: 0},
		},
	}
}
