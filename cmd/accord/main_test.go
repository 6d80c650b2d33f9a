package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testScenario = `
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

func writeTestScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(testScenario), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	cmd.Flags().Bool("json", true, "")

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	var payload map[string]string
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if payload["version"] == "" {
		t.Error("version missing from output")
	}
}

func TestEvaluateCmd(t *testing.T) {
	path := writeTestScenario(t)

	cmd := newEvaluateCmd()
	cmd.Flags().Bool("json", false, "")
	cmd.SetArgs([]string{
		"--scenario", path,
		"--offering", "blue",
		"--set", "security_provisions=0.7",
		"--set", "fishing_access=seasonal",
	})

	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "blue") || !strings.Contains(text, "red") {
		t.Errorf("output missing parties:\n%s", text)
	}
	if !strings.Contains(text, "ZOPA") {
		t.Errorf("output missing metrics:\n%s", text)
	}
}

func TestEvaluateCmd_MissingFlags(t *testing.T) {
	cmd := newEvaluateCmd()
	cmd.Flags().Bool("json", false, "")
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error without required flags")
	}
}

func TestClassifyCmd(t *testing.T) {
	cmd := newClassifyCmd()
	cmd.Flags().Bool("json", true, "")
	cmd.SetArgs([]string{"--pressure", "0.6", "--severity", "0.5"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var payload struct {
		Level    int    `json:"level"`
		Name     string `json:"name"`
		Sequence []any  `json:"sequence"`
	}
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON output: %v", err)
	}
	if payload.Level < 1 || payload.Level > 9 {
		t.Errorf("level = %d, want in 1..9", payload.Level)
	}
	if payload.Name == "" {
		t.Error("level name missing")
	}
	if len(payload.Sequence) == 0 {
		t.Error("sequence missing for elevated state")
	}
}

func TestParseRanges(t *testing.T) {
	cases := []struct {
		name    string
		specs   []string
		wantErr bool
	}{
		{"valid", []string{"encounter_rate=0.01:0.1"}, false},
		{"two ranges", []string{"encounter_rate=0.01:0.1", "cooling_rate=0.01:0.05"}, false},
		{"empty", nil, true},
		{"no equals", []string{"encounter_rate"}, true},
		{"no colon", []string{"encounter_rate=0.01"}, true},
		{"bad number", []string{"encounter_rate=lo:hi"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ranges, err := parseRanges(tc.specs)
			if (err != nil) != tc.wantErr {
				t.Fatalf("parseRanges error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && len(ranges) != len(tc.specs) {
				t.Errorf("got %d ranges, want %d", len(ranges), len(tc.specs))
			}
		})
	}
}

func TestResolveContent_BuiltinFallback(t *testing.T) {
	table, measures, domain, err := resolveContent("", "maritime")
	if err != nil {
		t.Fatalf("resolveContent: %v", err)
	}
	if string(domain) != "maritime" {
		t.Errorf("domain = %q, want maritime", domain)
	}
	if len(table.Incidents) == 0 {
		t.Error("built-in table is empty")
	}
	if len(measures) == 0 {
		t.Error("built-in measure catalog is empty")
	}
}

func TestResolveContent_BadDomain(t *testing.T) {
	if _, _, _, err := resolveContent("", "cyber"); err == nil {
		t.Error("expected error for unknown domain")
	}
}
