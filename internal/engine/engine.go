// Package engine orchestrates one segmentation run: cleaning, aggregation,
// quintile scoring, segment classification, and the CLTV estimate. Each run is
// isolated; a later run fully replaces everything a previous run derived.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rfmscope/rfmscope/internal/clean"
	"github.com/rfmscope/rfmscope/internal/common"
	"github.com/rfmscope/rfmscope/internal/model"
	"github.com/rfmscope/rfmscope/internal/rfm"
)

// Result is the output table of one run, handed to presentation and export.
// Consumers may filter rows but must not mutate derived fields.
type Result struct {
	AnalysisDate time.Time
	RunID        string
	Customers    []model.CustomerRFM
}

// Empty reports whether no customers survived cleaning.
func (r *Result) Empty() bool {
	return len(r.Customers) == 0
}

// FilterSegments returns the customers belonging to any of the given
// segments. An empty filter returns every customer.
func (r *Result) FilterSegments(segments []model.Segment) []model.CustomerRFM {
	if len(segments) == 0 {
		return r.Customers
	}

	wanted := make(map[model.Segment]bool, len(segments))
	for _, s := range segments {
		wanted[s] = true
	}

	filtered := make([]model.CustomerRFM, 0, len(r.Customers))
	for _, c := range r.Customers {
		if wanted[c.Segment] {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// Config holds configuration options for the segmentation engine.
type Config struct {
	// RankTies enables the rank-based fallback for metrics whose raw values
	// cannot form five distinct quantile edges.
	RankTies bool
}

// Engine runs the segmentation pipeline over raw transactions.
type Engine struct {
	cleaner *clean.Cleaner
	config  Config
}

// New creates a segmentation engine.
func New(config Config) *Engine {
	return &Engine{
		cleaner: clean.NewCleaner(),
		config:  config,
	}
}

// Run executes the full pipeline synchronously. A run either completes with a
// valid (possibly empty) result table or fails before producing any derived
// output. Running twice over identical input yields identical tables.
func (e *Engine) Run(ctx context.Context, txns []model.Transaction) (*Result, error) {
	runID := uuid.NewString()
	started := time.Now()

	slog.Info("Starting segmentation run",
		"run_id", runID,
		"raw_rows", len(txns))

	cleaned, err := e.cleaner.Clean(ctx, txns)
	if err != nil {
		return nil, fmt.Errorf("clean: %w", err)
	}

	result := &Result{RunID: runID}

	if len(cleaned) == 0 {
		// All rows were duplicates, anonymous, or returns. An empty table is a
		// valid outcome; presentation renders zero customers.
		slog.Warn("Producing empty result table",
			"run_id", runID,
			"raw_rows", len(txns),
			"reason", common.ErrEmptyResult)
		return result, nil
	}

	customers, analysisDate := rfm.Aggregate(ctx, cleaned)
	result.AnalysisDate = analysisDate

	if err := rfm.Score(ctx, customers, rfm.Options{RankTies: e.config.RankTies}); err != nil {
		return nil, err
	}

	rfm.ClassifyAll(customers)
	rfm.EstimateCLTV(customers)

	result.Customers = customers

	slog.Info("Segmentation run complete",
		"run_id", runID,
		"customers", len(customers),
		"analysis_date", analysisDate.Format("2006-01-02"),
		"duration", time.Since(started))

	return result, nil
}
