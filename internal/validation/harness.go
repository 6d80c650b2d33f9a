// Package validation runs batches of independent simulation replications
// and compares their aggregate statistics against a historical incident
// dataset: RMSE on the frequency time series, Pearson correlation on
// severity, a weighted composite accuracy, and a bootstrap confidence
// interval over replications.
package validation

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/accordlab/accord/internal/escalation"
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/random"
	"github.com/accordlab/accord/internal/scenario"
	"github.com/accordlab/accord/internal/stats"
)

// Config holds the batch parameters.
type Config struct {
	// Replications is the number of independent seeded runs. Default: 100.
	Replications int

	// Workers bounds the parallel replications. Zero means Replications
	// (fully parallel); replications are embarrassingly parallel, each
	// owning its private stream and state.
	Workers int

	// BootstrapResamples sizes the bootstrap for the confidence
	// interval. Default: 1000.
	BootstrapResamples int

	// ConfidenceLevel is the interval coverage. Default: 0.95.
	ConfidenceLevel float64

	// FrequencyWeight and SeverityWeight combine the two comparison
	// scores into the composite accuracy. Defaults: 0.6 and 0.4.
	FrequencyWeight float64
	SeverityWeight  float64
}

// DefaultConfig returns the standard validation batch configuration.
func DefaultConfig() Config {
	return Config{
		Replications:       100,
		BootstrapResamples: 1000,
		ConfidenceLevel:    0.95,
		FrequencyWeight:    0.6,
		SeverityWeight:     0.4,
	}
}

// Report is the outcome of a validation batch.
type Report struct {
	// Replications is the number attempted; Failed counts replications
	// that aborted (divergence). Failed runs are excluded from the
	// statistics but never fail the batch.
	Replications int `json:"replications"`
	Failed       int `json:"failed"`

	// FrequencyRMSE compares the mean simulated per-period incident
	// counts against the historical frequency series.
	FrequencyRMSE float64 `json:"frequency_rmse"`

	// SeverityCorrelation is the Pearson correlation between simulated
	// and historical per-period mean severities.
	SeverityCorrelation float64 `json:"severity_correlation"`

	// OverallAccuracy is the weighted composite of the frequency and
	// severity scores, in [0,1].
	OverallAccuracy float64 `json:"overall_accuracy"`

	// ConfidenceInterval bounds the mean per-replication incident count,
	// estimated by bootstrap over replications.
	ConfidenceInterval stats.Interval `json:"confidence_interval"`

	// MeanIncidentCount is the mean total incidents per replication.
	MeanIncidentCount float64 `json:"mean_incident_count"`
}

// Run executes the batch. Each replication derives its own seed from the
// base config seed, so the whole batch is reproducible. Cancellation is
// cooperative and checked at replication boundaries only.
func Run(ctx context.Context, cfg Config, simCfg escalation.Config, table scenario.DomainTable, measures []scenario.Measure, historical []models.HistoricalIncidentRecord) (Report, error) {
	if cfg.Replications <= 0 {
		return Report{}, &scenario.ConfigError{Field: "replications", Reason: "must be positive"}
	}
	if len(historical) == 0 {
		return Report{}, &scenario.ConfigError{Field: "historical", Reason: "historical dataset is empty"}
	}
	if simCfg.Seed == 0 {
		seed, err := random.NewSeed()
		if err != nil {
			return Report{}, err
		}
		simCfg.Seed = seed
	}

	results := make([]*escalation.Result, cfg.Replications)
	var mu sync.Mutex
	failed := 0

	g := &errgroup.Group{}
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}

	for i := 0; i < cfg.Replications; i++ {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}

		g.Go(func() error {
			repCfg := simCfg
			repCfg.Seed = random.ReplicationSeed(simCfg.Seed, i)
			sim, err := escalation.New(repCfg, table, measures)
			if err != nil {
				// Configuration is shared across the batch: a config
				// error here fails everything, not one replication.
				return err
			}
			res, err := sim.Run()
			if err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = &res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("validation: %w", err)
	}

	return aggregate(cfg, simCfg, results, failed, historical), nil
}

// aggregate reduces completed replications against the historical series.
func aggregate(cfg Config, simCfg escalation.Config, results []*escalation.Result, failed int, historical []models.HistoricalIncidentRecord) Report {
	report := Report{
		Replications: len(results),
		Failed:       failed,
	}

	periods := len(historical)
	freqSums := make([]float64, periods)
	sevSums := make([]float64, periods)
	sevCounts := make([]float64, periods)
	var totals []float64

	ok := 0
	for _, res := range results {
		if res == nil {
			continue
		}
		ok++
		totals = append(totals, float64(res.Summary.Count))

		counts, sums := bucketize(res.Incidents, simCfg.Steps, periods)
		for p := 0; p < periods; p++ {
			freqSums[p] += counts[p]
			sevSums[p] += sums[p]
			sevCounts[p] += counts[p]
		}
	}
	if ok == 0 {
		return report
	}

	simFreq := make([]float64, periods)
	simSev := make([]float64, periods)
	histFreq := make([]float64, periods)
	histSev := make([]float64, periods)
	for p := 0; p < periods; p++ {
		simFreq[p] = freqSums[p] / float64(ok)
		if sevCounts[p] > 0 {
			simSev[p] = sevSums[p] / sevCounts[p]
		}
		histFreq[p] = float64(historical[p].Count)
		histSev[p] = historical[p].MeanSeverity
	}

	report.FrequencyRMSE = stats.RMSE(simFreq, histFreq)
	report.SeverityCorrelation = stats.Pearson(simSev, histSev)
	report.MeanIncidentCount = stats.Mean(totals)

	// Frequency score shrinks with RMSE relative to the historical scale;
	// severity score maps correlation from [-1,1] into [0,1].
	scale := stats.Mean(histFreq)
	if scale < 1 {
		scale = 1
	}
	freqScore := 1 / (1 + report.FrequencyRMSE/scale)
	sevScore := (report.SeverityCorrelation + 1) / 2
	report.OverallAccuracy = clamp01(cfg.FrequencyWeight*freqScore + cfg.SeverityWeight*sevScore)

	resamples := cfg.BootstrapResamples
	if resamples <= 0 {
		resamples = 1000
	}
	level := cfg.ConfidenceLevel
	if level <= 0 || level >= 1 {
		level = 0.95
	}
	report.ConfidenceInterval = stats.BootstrapCI(totals, level, resamples, random.NewStream(simCfg.Seed))

	return report
}

// bucketize folds an incident log into `periods` equal step windows,
// returning per-period counts and severity sums.
func bucketize(incidents []models.Incident, steps, periods int) (counts, sums []float64) {
	counts = make([]float64, periods)
	sums = make([]float64, periods)
	width := steps / periods
	if width < 1 {
		width = 1
	}
	for _, inc := range incidents {
		p := inc.Step / width
		if p >= periods {
			p = periods - 1
		}
		counts[p]++
		sums[p] += inc.Severity
	}
	return counts, sums
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
