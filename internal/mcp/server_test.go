package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/accordlab/accord/internal/calibrate"
	"github.com/accordlab/accord/internal/config"
)

const scenarioYAML = `
name: south-reach
domain: maritime
parties:
  - id: blue
    name: Blue
    attributes:
      - {name: security_provisions, weight: 0.6, shape: linear}
      - {name: fishing_access, weight: 0.4, shape: linear}
    batna: 0.3
    reference_point: 0.35
  - id: red
    name: Red
    attributes:
      - {name: security_provisions, weight: 0.4, shape: linear}
      - {name: fishing_access, weight: 0.6, shape: linear}
    batna: 0.25
    reference_point: 0.3
issues:
  - {key: security_provisions, kind: numeric}
  - key: fishing_access
    kind: categorical
    options: {closed: 0.1, seasonal: 0.5, open: 0.9}
historical:
  - {period: 0, count: 4, mean_severity: 0.32}
  - {period: 1, count: 6, mean_severity: 0.41}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "accord.db")
	cfg.Simulation.Steps = 100
	cfg.Simulation.Replications = 5

	s, err := NewServer(&Config{Name: "accord", Version: "test", Accord: cfg})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioYAML), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestHandleEvaluate(t *testing.T) {
	s := newTestServer(t)
	path := writeScenario(t)

	_, out, err := s.handleEvaluate(context.Background(), nil, EvaluateInput{
		Scenario: path,
		Offering: "blue",
		Agreement: map[string]any{
			"security_provisions": 0.7,
			"fishing_access":      "seasonal",
		},
	})
	if err != nil {
		t.Fatalf("handleEvaluate: %v", err)
	}

	if len(out.Utilities) != 2 {
		t.Fatalf("got %d utilities, want 2", len(out.Utilities))
	}
	for id, u := range out.Utilities {
		if u.Utility < 0 || u.Utility > 1 {
			t.Errorf("party %s utility %v outside [0,1]", id, u.Utility)
		}
	}
}

func TestHandleEvaluate_Framing(t *testing.T) {
	s := newTestServer(t)
	path := writeScenario(t)

	offer := map[string]any{
		"security_provisions": 0.7,
		"fishing_access":      "seasonal",
	}
	_, neutral, err := s.handleEvaluate(context.Background(), nil, EvaluateInput{
		Scenario: path, Offering: "blue", Agreement: offer,
	})
	if err != nil {
		t.Fatalf("handleEvaluate: %v", err)
	}
	_, framed, err := s.handleEvaluate(context.Background(), nil, EvaluateInput{
		Scenario: path, Offering: "blue", Agreement: offer, Framing: 0.5,
	})
	if err != nil {
		t.Fatalf("handleEvaluate framed: %v", err)
	}

	// Scenario reference points sit below this offer, so halving the
	// prospect value must lower every party's framed utility.
	for id, u := range framed.Utilities {
		if u.Utility >= neutral.Utilities[id].Utility {
			t.Errorf("party %s framed utility %v not below neutral %v",
				id, u.Utility, neutral.Utilities[id].Utility)
		}
	}
}

func TestHandleEvaluate_UnknownIssue(t *testing.T) {
	s := newTestServer(t)
	path := writeScenario(t)

	_, _, err := s.handleEvaluate(context.Background(), nil, EvaluateInput{
		Scenario:  path,
		Offering:  "blue",
		Agreement: map[string]any{"naval_basing": 0.5},
	})
	if err == nil {
		t.Error("expected error for unknown issue key")
	}
}

func TestHandleSimulate(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleSimulate(context.Background(), nil, SimulateInput{
		Domain: "maritime",
		Seed:   42,
		Save:   true,
	})
	if err != nil {
		t.Fatalf("handleSimulate: %v", err)
	}

	if out.Seed != 42 {
		t.Errorf("seed = %d, want 42", out.Seed)
	}
	if out.Level < 1 || out.Level > 9 {
		t.Errorf("level = %d, want in 1..9", out.Level)
	}
	if out.RunID == "" {
		t.Error("save requested but no run ID returned")
	}

	_, runs, err := s.handleRuns(context.Background(), nil, RunsInput{})
	if err != nil {
		t.Fatalf("handleRuns: %v", err)
	}
	if runs.Count != 1 {
		t.Errorf("stored runs = %d, want 1", runs.Count)
	}

	_, detail, err := s.handleRuns(context.Background(), nil, RunsInput{ID: out.RunID})
	if err != nil {
		t.Fatalf("handleRuns by ID: %v", err)
	}
	if detail.Run == nil || detail.Run.Result.Summary.Count != out.Count {
		t.Error("stored run does not match simulated run")
	}
}

func TestHandleSimulate_BadDomain(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.handleSimulate(context.Background(), nil, SimulateInput{Domain: "cyber"})
	if err == nil {
		t.Error("expected error for unknown domain")
	}
}

func TestHandleClassify(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleClassify(context.Background(), nil, ClassifyInput{
		Pressure:     0.6,
		MeanSeverity: 0.5,
		ActionRisk:   0.4,
	})
	if err != nil {
		t.Fatalf("handleClassify: %v", err)
	}

	if out.Level < 1 || out.Level > 9 {
		t.Errorf("level = %d, want in 1..9", out.Level)
	}
	if out.Name == "" {
		t.Error("level name is empty")
	}
	if len(out.Sequence) == 0 {
		t.Error("no de-escalation sequence for an elevated level")
	}
	if len(out.Sequence) > 0 && out.Sequence[0].RequiresReciprocation {
		t.Error("first de-escalation move must be unconditional")
	}
}

func TestHandleValidate(t *testing.T) {
	s := newTestServer(t)
	path := writeScenario(t)

	_, out, err := s.handleValidate(context.Background(), nil, ValidateInput{
		Scenario:     path,
		Replications: 5,
		Seed:         42,
	})
	if err != nil {
		t.Fatalf("handleValidate: %v", err)
	}

	if out.Report.Replications != 5 {
		t.Errorf("replications = %d, want 5", out.Report.Replications)
	}
	if out.Report.OverallAccuracy < 0 || out.Report.OverallAccuracy > 1 {
		t.Errorf("accuracy = %v, want in [0,1]", out.Report.OverallAccuracy)
	}
}

func TestHandleValidate_NoDataset(t *testing.T) {
	s := newTestServer(t)

	_, _, err := s.handleValidate(context.Background(), nil, ValidateInput{
		Domain:       "maritime",
		Replications: 2,
		Seed:         1,
	})
	if err == nil {
		t.Error("expected error without a historical dataset")
	}
}

func TestResolveContent_CanceledContext(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, _, _, err := s.resolveContent(ctx, "", "observed", "maritime")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("resolveContent with canceled context: err = %v, want context.Canceled", err)
	}
}

func TestHandleCalibrate(t *testing.T) {
	s := newTestServer(t)
	path := writeScenario(t)

	_, out, err := s.handleCalibrate(context.Background(), nil, CalibrateInput{
		Scenario:     path,
		Ranges:       []calibrate.ParamRange{{Name: calibrate.ParamEncounterRate, Min: 0.02, Max: 0.08}},
		Iterations:   2,
		Replications: 2,
		Seed:         42,
	})
	if err != nil {
		t.Fatalf("handleCalibrate: %v", err)
	}

	if out.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", out.Iterations)
	}
	if out.TimedOut {
		t.Error("TimedOut = true for an uncancelled search")
	}
	v, ok := out.BestParams[calibrate.ParamEncounterRate]
	if !ok || v < 0.02 || v > 0.08 {
		t.Errorf("best encounter_rate = %v, want in [0.02, 0.08]", v)
	}
}

func TestHandleCalibrate_EmptyRanges(t *testing.T) {
	s := newTestServer(t)
	path := writeScenario(t)

	_, _, err := s.handleCalibrate(context.Background(), nil, CalibrateInput{
		Scenario: path,
	})
	if err == nil {
		t.Error("expected error for empty ranges")
	}
}
