package models

import "fmt"

// Domain selects the incident-type table a simulation draws from.
type Domain string

const (
	DomainMaritime    Domain = "maritime"
	DomainTerritorial Domain = "territorial"
	DomainResource    Domain = "resource"
	DomainPolitical   Domain = "political"
	DomainEthnic      Domain = "ethnic"
)

// Domains lists the closed enumeration of supported domains.
var Domains = []Domain{DomainMaritime, DomainTerritorial, DomainResource, DomainPolitical, DomainEthnic}

// ParseDomain parses a domain name, rejecting anything outside the closed set.
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// IncidentType names a kind of incident within a domain's table, e.g.
// "water-cannon" or "ramming" in the maritime table.
type IncidentType string

// Incident is one realized event in a simulation run. Incidents are
// appended to the run's ordered log and never mutated.
type Incident struct {
	// Type is the incident kind drawn from the domain table.
	Type IncidentType `json:"type"`

	// Severity lies within the type's declared range after environmental
	// amplification and dampening.
	Severity float64 `json:"severity"`

	// Step is the simulation step index at which the incident occurred.
	Step int `json:"step"`

	// Participants are the IDs of the agents involved.
	Participants []string `json:"participants"`
}

// HistoricalIncidentRecord is one entry of the external reference dataset
// the validation harness compares simulated output against. Read-only.
type HistoricalIncidentRecord struct {
	// Period is the time-series bucket index (e.g. month number).
	Period int `json:"period" yaml:"period"`

	// Count is the number of incidents observed in the period.
	Count int `json:"count" yaml:"count"`

	// MeanSeverity is the average severity observed in the period.
	MeanSeverity float64 `json:"mean_severity" yaml:"mean_severity"`
}
