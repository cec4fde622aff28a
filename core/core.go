// Package core wires the mortality pipeline stages together: dataset
// construction, graduation, factor-model fitting, projection and the
// survivorship bridge.
package core

import (
	"context"
	"time"

	"github.com/mfigueroa/lifecast/core/lifetable"
	"github.com/mfigueroa/lifecast/internal/contract"
	"github.com/mfigueroa/lifecast/internal/loader"
	"github.com/mfigueroa/lifecast/internal/outwriter"
	"github.com/mfigueroa/lifecast/schema"
)

// ExecutorFunc defines the function signature shared by all command
// entry points.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteGraduate smooths the empirical surface and prints the graduated
// rates with the smoothing diagnostics. It is the entry point for the
// 'graduate' mode.
func ExecuteGraduate(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	graduateCfg := *cfg
	graduateCfg.Graduate = true
	p, err := buildSurface(ctx, &graduateCfg)
	if err != nil {
		return err
	}
	surface, ok := p.Surface.(*schema.GraduatedSurface)
	if !ok {
		return contract.NumericErrorf("graduation produced no smoothed surface")
	}
	duration := time.Since(start)
	return outwriter.PrintGraduationResults(surface, p.GradReport, cfg, duration)
}

// ExecuteFit fits the factor model and prints the age profile, sensitivity
// vector, time index and fit diagnostics. It is the entry point for the
// 'fit' mode.
func ExecuteFit(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	p, err := buildModel(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintFitResults(p.Model, p.Diagnostics, cfg, duration)
}

// ExecuteProject extends the fitted index with the random-walk forecast and
// prints the central path with simulation quantiles. It is the entry point
// for the 'project' mode.
func ExecuteProject(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	p, err := buildProjection(ctx, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintProjectionResults(p.Projection, cfg, duration)
}

// ExecuteTable bridges the projection into a survivorship table at the
// target period. It is the entry point for the 'table' mode.
func ExecuteTable(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	p, err := buildProjection(ctx, cfg)
	if err != nil {
		return err
	}
	table, period, err := bridgeTable(p, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintTableResults(table, period, cfg, duration)
}

// ExecutePremium prices the standard net premium menu off the bridged table
// at the configured interest rate. It is the entry point for the 'premium'
// mode.
func ExecutePremium(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	p, err := buildProjection(ctx, cfg)
	if err != nil {
		return err
	}
	table, period, err := bridgeTable(p, cfg)
	if err != nil {
		return err
	}
	quote, err := priceQuote(table, cfg)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintPremiumResults(quote, period, cfg, duration)
}

// ExecuteCompare lines the bridged table up against a regulatory table and
// prints per-age ratios and differences. It is the entry point for the
// 'compare' mode.
func ExecuteCompare(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	p, err := buildProjection(ctx, cfg)
	if err != nil {
		return err
	}
	modelTable, period, err := bridgeTable(p, cfg)
	if err != nil {
		return err
	}

	if cfg.RegulatoryFile == "" {
		return contract.ConfigErrorf("compare requires --regulatory with a reference table")
	}
	ages, qx, err := loader.RegulatoryRates(cfg.RegulatoryFile, cfg.Population)
	if err != nil {
		return err
	}
	regulatory, err := lifetable.FromDeathProbabilities(ages, qx, cfg.Radix)
	if err != nil {
		return err
	}

	cmp, err := lifetable.Compare(regulatory, modelTable)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintComparisonResults(cmp, period, cfg, duration)
}

// priceQuote computes the net premium menu for the configured issue age,
// term and interest rate.
func priceQuote(table *lifetable.Table, cfg *contract.Config) (schema.PremiumQuote, error) {
	var quote schema.PremiumQuote
	comm, err := lifetable.NewCommutation(table, cfg.Interest)
	if err != nil {
		return quote, err
	}

	quote = schema.PremiumQuote{IssueAge: cfg.IssueAge, Term: cfg.Term, Interest: cfg.Interest}
	if quote.WholeLife, err = comm.WholeLife(cfg.IssueAge); err != nil {
		return quote, err
	}
	if quote.TermInsurance, err = comm.TermInsurance(cfg.IssueAge, cfg.Term); err != nil {
		return quote, err
	}
	if quote.PureEndowment, err = comm.PureEndowment(cfg.IssueAge, cfg.Term); err != nil {
		return quote, err
	}
	if quote.Endowment, err = comm.Endowment(cfg.IssueAge, cfg.Term); err != nil {
		return quote, err
	}
	if quote.AnnuityDue, err = comm.AnnuityDue(cfg.IssueAge); err != nil {
		return quote, err
	}
	if quote.NetAnnualPremium, err = comm.NetAnnualPremium(cfg.IssueAge, cfg.Term); err != nil {
		return quote, err
	}
	return quote, nil
}
