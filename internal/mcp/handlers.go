package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/accordlab/accord/internal/bargain"
	"github.com/accordlab/accord/internal/calibrate"
	"github.com/accordlab/accord/internal/escalation"
	"github.com/accordlab/accord/internal/ladder"
	"github.com/accordlab/accord/internal/models"
	"github.com/accordlab/accord/internal/scenario"
	"github.com/accordlab/accord/internal/store"
	"github.com/accordlab/accord/internal/utility"
	"github.com/accordlab/accord/internal/validation"
)

// registerTools registers all accord MCP tools with the server.
func (s *Server) registerTools() error {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "accord_evaluate",
		Description: "Evaluate an agreement offer for every party in a scenario: utilities, ZOPA, Pareto efficiency, Nash product",
	}, s.handleEvaluate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "accord_simulate",
		Description: "Run a seeded escalation simulation and classify the resulting state on the 9-level ladder",
	}, s.handleSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "accord_classify",
		Description: "Map pressure, severity, and action risk to an escalation ladder level with a graduated de-escalation sequence",
	}, s.handleClassify)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "accord_validate",
		Description: "Run replicated simulations and compare aggregate statistics against a historical incident dataset",
	}, s.handleValidate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "accord_calibrate",
		Description: "Search simulation parameter ranges for the best fit against a historical incident dataset",
	}, s.handleCalibrate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "accord_runs",
		Description: "List stored simulation runs or show one run in full",
	}, s.handleRuns)

	return nil
}

func (s *Server) handleEvaluate(ctx context.Context, req *sdk.CallToolRequest, args EvaluateInput) (*sdk.CallToolResult, EvaluateOutput, error) {
	def, err := scenario.Load(args.Scenario)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	av, err := def.ParseAgreement(args.Agreement)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	model := utility.New(utility.DefaultConfig())
	engine := bargain.NewEngine(model, bargain.DefaultConfig())
	for _, p := range def.Parties {
		if err := engine.AddParty(p); err != nil {
			return nil, EvaluateOutput{}, err
		}
	}

	eval, err := engine.EvaluateOffer(args.Offering, av)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	// A non-neutral framing reweights the reported utilities; ZOPA,
	// Pareto, and Nash stay on the neutral frame.
	if args.Framing != 0 && args.Framing != 1 {
		for _, p := range engine.Parties() {
			framed, err := model.ComputeFramed(p, av, args.Framing)
			if err != nil {
				return nil, EvaluateOutput{}, err
			}
			eval.Utilities[p.ID] = framed
		}
	}

	return nil, EvaluateOutput{
		Utilities:       eval.Utilities,
		ZOPAExists:      eval.ZOPAExists,
		ParetoEfficient: eval.ParetoEfficient,
		NashProduct:     eval.NashProduct,
	}, nil
}

func (s *Server) handleSimulate(ctx context.Context, req *sdk.CallToolRequest, args SimulateInput) (*sdk.CallToolResult, SimulateOutput, error) {
	table, measures, _, domain, err := s.resolveContent(ctx, args.Scenario, "", args.Domain)
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	cfg := escalation.DefaultConfig(domain)
	cfg.Steps = s.cfg.Simulation.Steps
	if args.Steps > 0 {
		cfg.Steps = args.Steps
	}
	cfg.Seed = args.Seed
	cfg.EnabledEffects = args.EnabledEffects
	if args.Strategic != nil {
		cfg.Strategic = *args.Strategic
	}

	sim, err := escalation.New(cfg, table, measures)
	if err != nil {
		return nil, SimulateOutput{}, err
	}
	res, err := sim.Run()
	if err != nil {
		return nil, SimulateOutput{}, err
	}

	level := ladder.Classify(ladder.Input{
		Pressure:     res.FinalPressure,
		MeanSeverity: res.Summary.MeanSeverity,
	})

	out := SimulateOutput{
		Seed:          res.Seed,
		Count:         res.Summary.Count,
		MeanSeverity:  res.Summary.MeanSeverity,
		Trend:         res.Summary.Trend,
		FinalPressure: res.FinalPressure,
		Level:         int(level),
		LevelName:     level.String(),
		Incidents:     res.Incidents,
	}

	if args.Save {
		cfg.Seed = res.Seed
		rec := &store.RunRecord{Config: cfg, Result: res}
		if err := s.store.SaveRun(ctx, rec); err != nil {
			return nil, SimulateOutput{}, fmt.Errorf("failed to save run: %w", err)
		}
		out.RunID = rec.ID
	}

	return nil, out, nil
}

func (s *Server) handleClassify(ctx context.Context, req *sdk.CallToolRequest, args ClassifyInput) (*sdk.CallToolResult, ClassifyOutput, error) {
	level := ladder.Classify(ladder.Input{
		Pressure:     args.Pressure,
		MeanSeverity: args.MeanSeverity,
		ActionRisk:   args.ActionRisk,
	})

	steps := ladder.DeescalationSequence(level)
	sequence := make([]DeescalateStep, 0, len(steps))
	for _, st := range steps {
		sequence = append(sequence, DeescalateStep{
			Order:                 st.Order,
			Action:                st.Action,
			Description:           st.Description,
			RequiresReciprocation: st.RequiresReciprocation,
			Reversible:            st.Reversible,
		})
	}

	return nil, ClassifyOutput{
		Level:    int(level),
		Name:     level.String(),
		Sequence: sequence,
	}, nil
}

func (s *Server) handleValidate(ctx context.Context, req *sdk.CallToolRequest, args ValidateInput) (*sdk.CallToolResult, ValidateOutput, error) {
	table, measures, historical, domain, err := s.resolveContent(ctx, args.Scenario, args.Dataset, args.Domain)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	vCfg := validation.DefaultConfig()
	vCfg.Replications = s.cfg.Simulation.Replications
	if args.Replications > 0 {
		vCfg.Replications = args.Replications
	}

	simCfg := escalation.DefaultConfig(domain)
	simCfg.Steps = s.cfg.Simulation.Steps
	simCfg.Seed = args.Seed

	report, err := validation.Run(ctx, vCfg, simCfg, table, measures, historical)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	return nil, ValidateOutput{Report: report}, nil
}

func (s *Server) handleCalibrate(ctx context.Context, req *sdk.CallToolRequest, args CalibrateInput) (*sdk.CallToolResult, CalibrateOutput, error) {
	table, measures, historical, domain, err := s.resolveContent(ctx, args.Scenario, args.Dataset, args.Domain)
	if err != nil {
		return nil, CalibrateOutput{}, err
	}

	cCfg := calibrate.DefaultConfig()
	cCfg.Ranges = args.Ranges
	if args.Target != "" {
		cCfg.Target = args.Target
	}
	if args.Iterations > 0 {
		cCfg.Iterations = args.Iterations
	}
	if args.Replications > 0 {
		cCfg.Validation.Replications = args.Replications
	}

	simCfg := escalation.DefaultConfig(domain)
	simCfg.Steps = s.cfg.Simulation.Steps
	simCfg.Seed = args.Seed

	result, err := calibrate.Run(ctx, cCfg, simCfg, table, measures, historical)
	if err != nil {
		return nil, CalibrateOutput{}, err
	}

	out := CalibrateOutput{
		BestParams:    result.BestParams,
		AchievedScore: result.AchievedScore,
		Iterations:    result.Iterations,
		TimedOut:      result.TimedOut,
		Report:        result.Report,
	}
	if result.Warning != nil {
		out.Warning = result.Warning.Error()
	}

	return nil, out, nil
}

func (s *Server) handleRuns(ctx context.Context, req *sdk.CallToolRequest, args RunsInput) (*sdk.CallToolResult, RunsOutput, error) {
	if args.ID != "" {
		rec, err := s.store.GetRun(ctx, args.ID)
		if err != nil {
			return nil, RunsOutput{}, err
		}
		return nil, RunsOutput{Run: rec, Count: 1}, nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 20
	}
	infos, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, RunsOutput{}, err
	}

	runs := make([]RunListItem, 0, len(infos))
	for _, info := range infos {
		runs = append(runs, RunListItem{
			ID:            info.ID,
			CreatedAt:     info.CreatedAt,
			Domain:        string(info.Domain),
			Seed:          info.Seed,
			Steps:         info.Steps,
			IncidentCount: info.IncidentCount,
			MeanSeverity:  info.MeanSeverity,
		})
	}

	return nil, RunsOutput{Runs: runs, Count: len(runs)}, nil
}

// resolveContent resolves the domain table, measure catalog, and
// historical dataset for a tool call. A scenario file wins over the
// store dataset; the built-in catalogs fill whatever is left.
func (s *Server) resolveContent(ctx context.Context, scenarioPath, dataset, domainName string) (scenario.DomainTable, []scenario.Measure, []models.HistoricalIncidentRecord, models.Domain, error) {
	domain := models.DomainMaritime
	if domainName != "" {
		parsed, err := models.ParseDomain(domainName)
		if err != nil {
			return scenario.DomainTable{}, nil, nil, "", err
		}
		domain = parsed
	}

	if scenarioPath != "" {
		def, err := scenario.Load(scenarioPath)
		if err != nil {
			return scenario.DomainTable{}, nil, nil, "", err
		}
		if domainName == "" && def.Domain != "" {
			domain = def.Domain
		}
		table, err := def.Table(domain)
		if err != nil {
			return scenario.DomainTable{}, nil, nil, "", err
		}
		return table, def.MeasureCatalog(), def.Historical, domain, nil
	}

	var historical []models.HistoricalIncidentRecord
	if dataset != "" {
		records, err := s.store.Historical(ctx, dataset)
		if err != nil {
			return scenario.DomainTable{}, nil, nil, "", err
		}
		historical = records
	}

	table, err := scenario.BuiltinTable(domain)
	if err != nil {
		return scenario.DomainTable{}, nil, nil, "", err
	}
	return table, scenario.BuiltinMeasures(), historical, domain, nil
}
