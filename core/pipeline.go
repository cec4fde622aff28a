package core

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/mfigueroa/lifecast/core/dataset"
	"github.com/mfigueroa/lifecast/core/graduate"
	"github.com/mfigueroa/lifecast/core/leecarter"
	"github.com/mfigueroa/lifecast/core/lifetable"
	"github.com/mfigueroa/lifecast/core/project"
	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/internal/loader"
	"github.com/mfigueroa/lifecast/schema"
)

// Pipeline carries the intermediate products of a run. Each stage builder
// fills the fields it produces and reads only fields earlier stages filled,
// so a command materializes exactly the prefix of the pipeline it needs.
type Pipeline struct {
	Data       *schema.MortalityMatrix
	Surface    schema.MortalitySurface
	GradReport *schema.GraduationReport

	Model       *schema.FactorModel
	Diagnostics schema.FitDiagnostics

	Projection *project.Projection
}

// buildData loads deaths and exposures and joins them into a validated
// mortality matrix.
func buildData(ctx context.Context, cfg *contract.Config) (*Pipeline, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	deaths, err := loadRecords(cfg.DeathsFile, cfg)
	if err != nil {
		return nil, err
	}
	exposures, err := loadRecords(cfg.ExposuresFile, cfg)
	if err != nil {
		return nil, err
	}
	data, err := dataset.Build(deaths, exposures, nil, dataset.Options{
		Population: cfg.Population,
		AgeCap:     cfg.AgeCap,
	})
	if err != nil {
		return nil, err
	}
	return &Pipeline{Data: data, Surface: data}, nil
}

// buildSurface optionally graduates the raw matrix. Fitting always consumes
// p.Surface, so downstream stages never branch on whether smoothing ran.
func buildSurface(ctx context.Context, cfg *contract.Config) (*Pipeline, error) {
	p, err := buildData(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if !cfg.Graduate {
		return p, nil
	}
	surface, report, err := graduate.Smooth(p.Data, graduate.Options{
		Lambda:           cfg.Lambda,
		DiffOrder:        cfg.DiffOrder,
		WeightByExposure: cfg.WeightByExposure,
		Workers:          cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	p.Surface = surface
	p.GradReport = report
	return p, nil
}

// buildModel fits the factor model on the prepared surface.
func buildModel(ctx context.Context, cfg *contract.Config) (*Pipeline, error) {
	p, err := buildSurface(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Reestimate && p.Surface.Smoothed() {
		contract.LogWarnf("re-estimating the time index on a graduated surface; death totals no longer match the smoothed rates")
	}
	model, err := leecarter.Fit(p.Surface, leecarter.Options{
		Reestimate: cfg.Reestimate,
		Fallback:   cfg.Fallback,
	})
	if err != nil {
		return nil, err
	}
	for _, period := range model.FallbackPeriods {
		contract.LogWarnf("period %d kept its SVD index value; re-estimation found no root", period)
	}
	p.Model = model
	p.Diagnostics = leecarter.Diagnostics(model, p.Surface)
	return p, nil
}

// buildProjection extends the model with the random-walk forecast.
func buildProjection(ctx context.Context, cfg *contract.Config) (*Pipeline, error) {
	p, err := buildModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	proj, err := project.New(p.Model, project.Options{
		Horizon:     cfg.Horizon,
		Simulations: cfg.Simulations,
		Seed:        cfg.Seed,
		Workers:     cfg.Workers,
	})
	if err != nil {
		return nil, err
	}
	p.Projection = proj
	return p, nil
}

// bridgeTable resolves the target period (defaulting to the last fitted one)
// and bridges the projection into a survivorship table.
func bridgeTable(p *Pipeline, cfg *contract.Config) (*lifetable.Table, int, error) {
	period := cfg.TargetPeriod
	if period == 0 {
		period = p.Model.Periods[p.Model.NPeriods()-1]
	}
	table, err := p.Projection.Bridge(period, cfg.Radix)
	if err != nil {
		return nil, 0, err
	}
	return table, period, nil
}

// loadRecords picks the input format from the file extension: HMD fixed-width
// text for .txt, long-format CSV otherwise.
func loadRecords(path string, cfg *contract.Config) ([]loader.Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return loader.LoadHMD(path, cfg.Population, cfg.PeriodMin, cfg.PeriodMax)
	}
	return loader.LoadLongCSV(path, cfg.Population, cfg.PeriodMin, cfg.PeriodMax)
}
