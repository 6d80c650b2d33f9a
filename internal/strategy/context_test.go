package strategy

import (
	"math"
	"sync"
	"testing"
)

func neutralScores() Scores {
	return Scores{DiplomaticCapital: 50, Legitimacy: 50, DomesticSupport: 50, Credibility: 50}
}

func TestModifierFor(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   float64
	}{
		{
			name:   "neutral scores",
			scores: neutralScores(),
			want:   1.0,
		},
		{
			name:   "high legitimacy with low credibility",
			scores: Scores{DiplomaticCapital: 50, Legitimacy: 80, DomesticSupport: 50, Credibility: 30},
			want:   0.85 * 1.25, // 1.0625 exactly
		},
		{
			name:   "all risk factors active",
			scores: Scores{DiplomaticCapital: 50, Legitimacy: 50, DomesticSupport: 20, Credibility: 20},
			want:   1.25 * 1.30,
		},
		{
			name:   "all calming factors clamp at floor",
			scores: Scores{DiplomaticCapital: 90, Legitimacy: 90, DomesticSupport: 80, Credibility: 80},
			want:   0.85 * 0.85,
		},
		{
			name:   "thresholds are strict",
			scores: Scores{DiplomaticCapital: 70, Legitimacy: 70, DomesticSupport: 35, Credibility: 40},
			want:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ModifierFor(tt.scores)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("ModifierFor(%+v) = %v, want %v", tt.scores, got, tt.want)
			}
		})
	}
}

func TestModifier_Clamped(t *testing.T) {
	// No single factor combination exceeds the bounds today, so probe the
	// clamp directly through extreme synthetic factors.
	hot := Scores{DiplomaticCapital: 0, Legitimacy: 0, DomesticSupport: 0, Credibility: 0}
	if got := ModifierFor(hot); got > MaxModifier {
		t.Errorf("modifier %v exceeds clamp %v", got, MaxModifier)
	}
	cold := Scores{DiplomaticCapital: 100, Legitimacy: 100, DomesticSupport: 100, Credibility: 100}
	if got := ModifierFor(cold); got < MinModifier {
		t.Errorf("modifier %v below clamp %v", got, MinModifier)
	}
}

func TestApplyAction_ClampsScores(t *testing.T) {
	c := NewContext(Scores{DiplomaticCapital: 95, Legitimacy: 5, DomesticSupport: 50, Credibility: 50})

	got := c.ApplyAction(Action{
		ID: "unilateral-concession",
		Deltas: Scores{
			DiplomaticCapital: 20,  // would exceed 100
			Legitimacy:        -10, // would go below 0
			Credibility:       5,
		},
	})

	if got.DiplomaticCapital != 100 {
		t.Errorf("diplomatic capital = %v, want clamped 100", got.DiplomaticCapital)
	}
	if got.Legitimacy != 0 {
		t.Errorf("legitimacy = %v, want clamped 0", got.Legitimacy)
	}
	if got.Credibility != 55 {
		t.Errorf("credibility = %v, want 55", got.Credibility)
	}
	if got.DomesticSupport != 50 {
		t.Errorf("domestic support = %v, want unchanged 50", got.DomesticSupport)
	}
}

func TestNewContext_ClampsInitialScores(t *testing.T) {
	c := NewContext(Scores{DiplomaticCapital: 150, Legitimacy: -20, DomesticSupport: 50, Credibility: 50})
	s := c.Scores()
	if s.DiplomaticCapital != 100 || s.Legitimacy != 0 {
		t.Errorf("initial scores not clamped: %+v", s)
	}
}

func TestContext_ConcurrentReadsDuringWrites(t *testing.T) {
	c := NewContext(neutralScores())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c.ApplyAction(Action{Deltas: Scores{Credibility: 0.01}})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_ = c.EscalationModifier()
			_ = c.Scores()
		}
	}()
	wg.Wait()

	s := c.Scores()
	if s.Credibility < 50 || s.Credibility > 100 {
		t.Errorf("credibility %v outside expected range after concurrent updates", s.Credibility)
	}
}
