package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/accordlab/accord/internal/models"
)

// ExportRunJSONL writes a run record as one JSON object per line:
// a header line with the run row, then one line per incident.
func (s *RunStore) ExportRunJSONL(ctx context.Context, id, path string) error {
	rec, err := s.GetRun(ctx, id)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	header := struct {
		ID         string `json:"id"`
		CreatedAt  string `json:"created_at"`
		ConfigHash string `json:"config_hash"`
		Seed       int64  `json:"seed"`
		Count      int    `json:"count"`
	}{rec.ID, rec.CreatedAt.Format(time.RFC3339Nano), rec.ConfigHash, rec.Result.Seed, rec.Result.Summary.Count}
	if err := enc.Encode(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, inc := range rec.Result.Incidents {
		if err := enc.Encode(inc); err != nil {
			return fmt.Errorf("failed to write incident: %w", err)
		}
	}
	return w.Flush()
}

// ImportHistoricalJSONL reads a historical dataset from a JSONL file
// (one HistoricalIncidentRecord per line) and stores it under name.
func (s *RunStore) ImportHistoricalJSONL(ctx context.Context, dataset, path string) (int, error) {
	records, err := ReadHistoricalJSONL(path)
	if err != nil {
		return 0, err
	}
	if err := s.SaveHistorical(ctx, dataset, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// ReadHistoricalJSONL parses a JSONL dataset file without storing it.
func ReadHistoricalJSONL(path string) ([]models.HistoricalIncidentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	var records []models.HistoricalIncidentRecord
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var rec models.HistoricalIncidentRecord
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset file %s is empty", path)
	}
	return records, nil
}
