package stats

import (
	"math"
	"math/rand"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		want float64
	}{
		{name: "empty", xs: nil, want: 0},
		{name: "single", xs: []float64{4}, want: 4},
		{name: "several", xs: []float64{1, 2, 3, 4}, want: 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.xs); got != tt.want {
				t.Errorf("Mean(%v) = %v, want %v", tt.xs, got, tt.want)
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	if got := RMSE([]float64{1, 2, 3}, []float64{1, 2, 3}); got != 0 {
		t.Errorf("RMSE of identical series = %v, want 0", got)
	}
	got := RMSE([]float64{0, 0}, []float64{3, 4})
	want := math.Sqrt(12.5)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("RMSE = %v, want %v", got, want)
	}
	if !math.IsNaN(RMSE([]float64{1}, []float64{1, 2})) {
		t.Error("RMSE of mismatched lengths should be NaN")
	}
	if !math.IsNaN(RMSE(nil, nil)) {
		t.Error("RMSE of empty series should be NaN")
	}
}

func TestPearson(t *testing.T) {
	perfect := Pearson([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	if math.Abs(perfect-1) > 1e-12 {
		t.Errorf("perfect positive correlation = %v, want 1", perfect)
	}
	inverse := Pearson([]float64{1, 2, 3, 4}, []float64{8, 6, 4, 2})
	if math.Abs(inverse+1) > 1e-12 {
		t.Errorf("perfect negative correlation = %v, want -1", inverse)
	}
	if got := Pearson([]float64{1, 1, 1}, []float64{1, 2, 3}); got != 0 {
		t.Errorf("zero-variance series correlation = %v, want 0", got)
	}
	if !math.IsNaN(Pearson([]float64{1}, []float64{1})) {
		t.Error("single-point correlation should be NaN")
	}
}

func TestSlope(t *testing.T) {
	rising := Slope([]float64{0, 1, 2, 3})
	if math.Abs(rising-1) > 1e-12 {
		t.Errorf("Slope of unit ramp = %v, want 1", rising)
	}
	if got := Slope([]float64{5, 5, 5}); got != 0 {
		t.Errorf("Slope of flat series = %v, want 0", got)
	}
	if got := Slope([]float64{1}); got != 0 {
		t.Errorf("Slope of single point = %v, want 0", got)
	}
}

func TestBootstrapCI(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	xs := make([]float64, 200)
	for i := range xs {
		xs[i] = rng.NormFloat64() + 10
	}

	ci := BootstrapCI(xs, 0.95, 1000, rand.New(rand.NewSource(1)))
	if ci.Low >= ci.High {
		t.Fatalf("degenerate interval: [%v, %v]", ci.Low, ci.High)
	}
	m := Mean(xs)
	if m < ci.Low || m > ci.High {
		t.Errorf("sample mean %v outside bootstrap interval [%v, %v]", m, ci.Low, ci.High)
	}

	// Reproducible for a fixed stream.
	again := BootstrapCI(xs, 0.95, 1000, rand.New(rand.NewSource(1)))
	if ci != again {
		t.Errorf("bootstrap interval not reproducible: %+v vs %+v", ci, again)
	}
}

func TestBootstrapCI_Empty(t *testing.T) {
	ci := BootstrapCI(nil, 0.95, 100, rand.New(rand.NewSource(1)))
	if ci != (Interval{}) {
		t.Errorf("empty input interval = %+v, want zero", ci)
	}
}
