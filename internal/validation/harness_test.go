package validation

import (
	"context"
	"math"
	"testing"

	"github.com/accordlab/accord/internal/escalation"
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/scenario"
)

func maritimeHistorical() []models.HistoricalIncidentRecord {
	return []models.HistoricalIncidentRecord{
		{Period: 1, Count: 8, MeanSeverity: 0.30},
		{Period: 2, Count: 11, MeanSeverity: 0.34},
		{Period: 3, Count: 9, MeanSeverity: 0.31},
		{Period: 4, Count: 13, MeanSeverity: 0.36},
	}
}

func batchConfig(t *testing.T) (Config, escalation.Config, scenario.DomainTable) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Replications = 20
	cfg.BootstrapResamples = 200

	simCfg := escalation.DefaultConfig(models.DomainMaritime)
	simCfg.Seed = 42
	table, err := scenario.BuiltinTable(models.DomainMaritime)
	if err != nil {
		t.Fatalf("BuiltinTable: %v", err)
	}
	return cfg, simCfg, table
}

func TestRun_Deterministic(t *testing.T) {
	cfg, simCfg, table := batchConfig(t)

	first, err := Run(context.Background(), cfg, simCfg, table, nil, maritimeHistorical())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := Run(context.Background(), cfg, simCfg, table, nil, maritimeHistorical())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if first != second {
		t.Errorf("same seed produced different reports:\n%+v\n%+v", first, second)
	}
}

func TestRun_ReportShape(t *testing.T) {
	cfg, simCfg, table := batchConfig(t)

	report, err := Run(context.Background(), cfg, simCfg, table, nil, maritimeHistorical())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Replications != cfg.Replications {
		t.Errorf("Replications = %d, want %d", report.Replications, cfg.Replications)
	}
	if report.Failed != 0 {
		t.Errorf("Failed = %d, want 0", report.Failed)
	}
	if report.FrequencyRMSE < 0 || math.IsNaN(report.FrequencyRMSE) {
		t.Errorf("FrequencyRMSE = %v, want non-negative", report.FrequencyRMSE)
	}
	if report.SeverityCorrelation < -1 || report.SeverityCorrelation > 1 {
		t.Errorf("SeverityCorrelation = %v, want in [-1,1]", report.SeverityCorrelation)
	}
	if report.OverallAccuracy < 0 || report.OverallAccuracy > 1 {
		t.Errorf("OverallAccuracy = %v, want in [0,1]", report.OverallAccuracy)
	}
	if report.ConfidenceInterval.Low > report.MeanIncidentCount || report.ConfidenceInterval.High < report.MeanIncidentCount {
		t.Errorf("mean count %v outside interval [%v, %v]",
			report.MeanIncidentCount, report.ConfidenceInterval.Low, report.ConfidenceInterval.High)
	}
}

func TestRun_WorkerLimitMatchesSerial(t *testing.T) {
	cfg, simCfg, table := batchConfig(t)

	parallel, err := Run(context.Background(), cfg, simCfg, table, nil, maritimeHistorical())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	cfg.Workers = 1
	serial, err := Run(context.Background(), cfg, simCfg, table, nil, maritimeHistorical())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if parallel != serial {
		t.Errorf("worker count changed results:\nparallel: %+v\nserial:   %+v", parallel, serial)
	}
}

func TestRun_Cancelled(t *testing.T) {
	cfg, simCfg, table := batchConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, simCfg, table, nil, maritimeHistorical())
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	cfg, simCfg, table := batchConfig(t)

	cases := []struct {
		name string
		fn   func() (Report, error)
	}{
		{
			name: "zero replications",
			fn: func() (Report, error) {
				bad := cfg
				bad.Replications = 0
				return Run(context.Background(), bad, simCfg, table, nil, maritimeHistorical())
			},
		},
		{
			name: "empty historical",
			fn: func() (Report, error) {
				return Run(context.Background(), cfg, simCfg, table, nil, nil)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.fn(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRun_AutoSeed(t *testing.T) {
	cfg, simCfg, table := batchConfig(t)
	simCfg.Seed = 0

	report, err := Run(context.Background(), cfg, simCfg, table, nil, maritimeHistorical())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Replications != cfg.Replications {
		t.Errorf("Replications = %d, want %d", report.Replications, cfg.Replications)
	}
}

func TestBucketize(t *testing.T) {
	incidents := []models.Incident{
		{Step: 0, Severity: 0.2},
		{Step: 49, Severity: 0.4},
		{Step: 50, Severity: 0.6},
		{Step: 199, Severity: 0.8},
	}
	counts, sums := bucketize(incidents, 200, 4)

	wantCounts := []float64{2, 1, 0, 1}
	wantSums := []float64{0.6, 0.6, 0, 0.8}
	for p := range wantCounts {
		if counts[p] != wantCounts[p] {
			t.Errorf("counts[%d] = %v, want %v", p, counts[p], wantCounts[p])
		}
		if math.Abs(sums[p]-wantSums[p]) > 1e-12 {
			t.Errorf("sums[%d] = %v, want %v", p, sums[p], wantSums[p])
		}
	}
}
