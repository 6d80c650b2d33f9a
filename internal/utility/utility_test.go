package utility

import (
	"errors"
	"math"
	"testing"

	"github.com/accordlab/accord/internal/models"
)

func securityParty() models.Party {
	return models.Party{
		ID:   "blue",
		Name: "Blue",
		Attributes: []models.Attribute{
			{Name: "security", Weight: 1.0, Shape: models.ShapeLinear},
		},
		BATNA:          0.3,
		ReferencePoint: 0.3,
	}
}

func TestCompute_LinearSingleAttribute(t *testing.T) {
	m := New(DefaultConfig())
	p := securityParty()

	res, err := m.Compute(p, models.AgreementVector{
		"security": models.NumericIssue(0.7),
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if math.Abs(res.Raw-0.7) > 1e-12 {
		t.Errorf("raw utility = %v, want 0.7", res.Raw)
	}

	// Gain of 0.4 over the reference point, adjusted by d^0.88.
	wantFinal := 0.3 + math.Pow(0.4, 0.88)
	if math.Abs(res.Utility-wantFinal) > 1e-12 {
		t.Errorf("final utility = %v, want %v", res.Utility, wantFinal)
	}

	if res.AcceptanceProbability <= 0.5 {
		t.Errorf("acceptance probability = %v, want > 0.5", res.AcceptanceProbability)
	}
}

func TestCompute_BoundsHold(t *testing.T) {
	m := New(DefaultConfig())
	p := securityParty()

	levels := []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1}
	for _, lv := range levels {
		res, err := m.Compute(p, models.AgreementVector{"security": models.NumericIssue(lv)})
		if err != nil {
			t.Fatalf("Compute(%v): %v", lv, err)
		}
		if res.Utility < 0 || res.Utility > 1 {
			t.Errorf("utility(%v) = %v outside [0,1]", lv, res.Utility)
		}
		if res.AcceptanceProbability < 0 || res.AcceptanceProbability > 1 {
			t.Errorf("acceptance(%v) = %v outside [0,1]", lv, res.AcceptanceProbability)
		}
	}
}

func TestCompute_MissingWeightedIssue(t *testing.T) {
	m := New(DefaultConfig())
	p := securityParty()

	_, err := m.Compute(p, models.AgreementVector{})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *models.ValidationError, got %v", err)
	}

	// Marking the issue unchanged satisfies coverage instead.
	p.Attributes[0].StatusQuo = 0.3
	res, err := m.Compute(p, models.AgreementVector{"security": models.UnchangedIssue()})
	if err != nil {
		t.Fatalf("Compute with unchanged issue: %v", err)
	}
	if math.Abs(res.Raw-0.3) > 1e-12 {
		t.Errorf("raw utility from status quo = %v, want 0.3", res.Raw)
	}
}

func TestCompute_InvalidWeights(t *testing.T) {
	m := New(DefaultConfig())
	p := securityParty()
	p.Attributes[0].Weight = 0.8

	_, err := m.Compute(p, models.AgreementVector{"security": models.NumericIssue(0.5)})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *models.ValidationError for bad weights, got %v", err)
	}
}

func TestProspectValue_LossAversionAsymmetry(t *testing.T) {
	m := New(DefaultConfig())
	p := securityParty() // lambda defaults to 2.25

	for _, mag := range []float64{0.05, 0.1, 0.2, 0.4, 0.8} {
		gain := m.ProspectValue(p, mag)
		loss := m.ProspectValue(p, -mag)
		if math.Abs(loss) <= gain {
			t.Errorf("|v(-%v)| = %v not greater than v(%v) = %v", mag, math.Abs(loss), mag, gain)
		}
	}
}

func TestAcceptance_MonotoneInMargin(t *testing.T) {
	m := New(DefaultConfig())

	prev := -1.0
	for margin := -0.5; margin <= 0.5; margin += 0.05 {
		p := m.acceptanceProbability(margin, 0.4)
		if p < prev {
			t.Fatalf("acceptance not monotone at margin %v: %v < %v", margin, p, prev)
		}
		prev = p
	}
}

func TestAcceptance_RiskToleranceFlattensCurve(t *testing.T) {
	m := New(DefaultConfig())

	// With a negative margin, a flatter curve accepts more readily.
	lowTol := m.acceptanceProbability(-0.1, 0)
	highTol := m.acceptanceProbability(-0.1, 1)
	if highTol <= lowTol {
		t.Errorf("high tolerance acceptance %v should exceed low tolerance %v at negative margin", highTol, lowTol)
	}

	// With a positive margin, the flatter curve is less certain.
	lowTol = m.acceptanceProbability(0.1, 0)
	highTol = m.acceptanceProbability(0.1, 1)
	if highTol >= lowTol {
		t.Errorf("high tolerance acceptance %v should be below low tolerance %v at positive margin", highTol, lowTol)
	}
}

func TestAttributeValue_ConcaveSatiation(t *testing.T) {
	a := models.Attribute{Name: "access", Weight: 1, Shape: models.ShapeConcave, SatiationPoint: 0.6}

	// Linear below the satiation point.
	if got := attributeValue(a, 0.4); math.Abs(got-0.4) > 1e-12 {
		t.Errorf("value below satiation = %v, want 0.4", got)
	}

	// Monotone but flattening above it: each equal step buys less value.
	v6 := attributeValue(a, 0.6)
	v8 := attributeValue(a, 0.8)
	v10 := attributeValue(a, 1.0)
	if !(v6 < v8 && v8 < v10) {
		t.Fatalf("concave value not monotone: %v, %v, %v", v6, v8, v10)
	}
	if (v10 - v8) >= (v8 - v6) {
		t.Errorf("value gain did not diminish: step1 %v, step2 %v", v8-v6, v10-v8)
	}
	if v10 >= 1 {
		t.Errorf("satiated value = %v, want < 1", v10)
	}
}

func TestCompute_SynergyBonus(t *testing.T) {
	m := New(DefaultConfig())
	p := models.Party{
		ID: "blue",
		Attributes: []models.Attribute{
			{Name: "security", Weight: 0.5, Shape: models.ShapeLinear},
			{Name: "access", Weight: 0.5, Shape: models.ShapeLinear},
		},
		Synergies: []models.Synergy{
			{Attributes: []string{"security", "access"}, Threshold: 0.6, Bonus: 0.1},
		},
		BATNA:          0.3,
		ReferencePoint: 0.3,
	}

	// Both issues above threshold: bonus applies.
	res, err := m.Compute(p, models.AgreementVector{
		"security": models.NumericIssue(0.7),
		"access":   models.NumericIssue(0.7),
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(res.Raw-0.8) > 1e-12 {
		t.Errorf("raw with synergy = %v, want 0.8", res.Raw)
	}

	// One issue below threshold: no bonus.
	res, err = m.Compute(p, models.AgreementVector{
		"security": models.NumericIssue(0.7),
		"access":   models.NumericIssue(0.5),
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if math.Abs(res.Raw-0.6) > 1e-12 {
		t.Errorf("raw without synergy = %v, want 0.6", res.Raw)
	}
}

func TestComputeFramed_FramingMultiplier(t *testing.T) {
	m := New(DefaultConfig())
	p := securityParty()
	av := models.AgreementVector{"security": models.NumericIssue(0.7)}

	neutral, err := m.ComputeFramed(p, av, 1)
	if err != nil {
		t.Fatalf("ComputeFramed: %v", err)
	}
	lossFrame, err := m.ComputeFramed(p, av, 0.5)
	if err != nil {
		t.Fatalf("ComputeFramed: %v", err)
	}
	if lossFrame.Utility >= neutral.Utility {
		t.Errorf("loss-framed utility %v should be below neutral %v", lossFrame.Utility, neutral.Utility)
	}
}
