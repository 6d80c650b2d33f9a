package models

// UtilityResult is the per-party outcome of evaluating one agreement
// vector. Computed on demand, never persisted.
type UtilityResult struct {
	// Raw is the weighted multi-attribute utility before the
	// prospect-theory adjustment. Range [0,1].
	Raw float64 `json:"raw"`

	// Utility is the final utility after prospect adjustment and framing.
	// Range [0,1].
	Utility float64 `json:"utility"`

	// Margin is Utility minus the party's BATNA. Negative when the offer
	// is worse than walking away.
	Margin float64 `json:"margin"`

	// AcceptanceProbability is the logistic acceptance estimate in [0,1].
	AcceptanceProbability float64 `json:"acceptance_probability"`
}
