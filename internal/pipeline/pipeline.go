// Package pipeline runs the data-preparation stages that turn webref and
// BCD into the two artifacts the catalog is served from.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agentstation/cssmap/internal/persistence"
	"github.com/agentstation/cssmap/internal/sources/webref"
	"github.com/agentstation/cssmap/pkg/compat"
	"github.com/agentstation/cssmap/pkg/corrections"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/differ"
	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

// Source provides the specification index and feature documents.
// *webref.Client implements it.
type Source interface {
	FetchIndex(ctx context.Context) (*cssdata.SpecIndex, error)
	FetchFeatures(ctx context.Context, entries []cssdata.SpecIndexEntry) (cssdata.Dataset, *webref.Report, error)
}

// Recorder receives stage timings and dataset statistics.
// *monitoring.Metrics implements it.
type Recorder interface {
	ObserveStage(stage string, elapsed time.Duration)
	AddCorrections(kind string, n int)
	RecordDataset(ds cssdata.Dataset)
}

// Stage names, as used in logs and metrics.
const (
	StageIndex    = "index"
	StageFetch    = "fetch"
	StageAnnotate = "annotate"
	StageInject   = "inject"
	StagePatch    = "patch"
	StageWrite    = "write"
)

// Pipeline wires the stages of one update run.
type Pipeline struct {
	source   Source
	checker  compat.Checker
	table    *corrections.Table
	writer   *persistence.Writer
	recorder Recorder
	dryRun   bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder sets where stage metrics are reported.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithDryRun runs every stage except writing the artifacts.
func WithDryRun(dryRun bool) Option {
	return func(p *Pipeline) {
		p.dryRun = dryRun
	}
}

// New creates a pipeline from its collaborators.
func New(source Source, checker compat.Checker, table *corrections.Table, writer *persistence.Writer, opts ...Option) *Pipeline {
	if table == nil {
		table = &corrections.Table{}
	}
	p := &Pipeline{
		source:  source,
		checker: checker,
		table:   table,
		writer:  writer,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result summarizes an update run.
type Result struct {
	RunID     string
	Specs     int // Entries in the specification index
	Fetched   int
	Missing   int
	Failed    int
	Features  int
	Supported int
	Injected  []corrections.Injection
	Patched   []corrections.Patched
	Duration  time.Duration
	DryRun    bool

	// FetchErrors combines the non-fatal per-specification failures.
	FetchErrors error

	// Changes compares the dataset with the css-data.json it replaces.
	// Nil when there was no previous dataset to compare with.
	Changes *differ.Changeset

	// Dataset is the final, annotated dataset.
	Dataset cssdata.Dataset `json:"-"`
}

// Run executes one full update. Failing to fetch the index or to write an
// artifact aborts the run; per-specification fetch failures do not.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	result := &Result{RunID: uuid.NewString(), DryRun: p.dryRun}
	ctx = logging.WithRunID(ctx, result.RunID)
	logger := logging.FromContext(ctx)

	// Step 1: Fetch the specification index
	var idx *cssdata.SpecIndex
	err := p.stage(ctx, StageIndex, func(ctx context.Context) error {
		var err error
		idx, err = p.source.FetchIndex(ctx)
		return err
	})
	if err != nil {
		return nil, errors.WrapResource("fetch", "index", "", err)
	}
	result.Specs = len(idx.Results)

	// Step 2: Persist the index as fetched
	if !p.dryRun {
		if err := p.stage(ctx, StageWrite, func(context.Context) error {
			return p.writer.WriteSpecs(idx)
		}); err != nil {
			return nil, err
		}
	}

	// Step 3: Fetch every feature document
	var ds cssdata.Dataset
	var report *webref.Report
	err = p.stage(ctx, StageFetch, func(ctx context.Context) error {
		var err error
		ds, report, err = p.source.FetchFeatures(ctx, idx.Results)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.Fetched = len(report.Fetched)
	result.Missing = len(report.Missing)
	result.Failed = len(report.Failed)
	result.FetchErrors = report.Err()

	// Step 4: Attach a compatibility verdict to every record
	_ = p.stage(ctx, StageAnnotate, func(context.Context) error {
		ds = compat.Annotate(ds, p.checker)
		return nil
	})

	// Step 5: Inject records missing upstream, then backfill hrefs
	_ = p.stage(ctx, StageInject, func(ctx context.Context) error {
		ds, result.Injected = corrections.Inject(ds, p.table)
		for _, inj := range result.Injected {
			logging.FromContext(ctx).Info().
				Str("spec", inj.Spec).
				Str("name", inj.Name).
				Msg("Injected record")
		}
		return nil
	})
	_ = p.stage(ctx, StagePatch, func(context.Context) error {
		ds, result.Patched = corrections.Patch(ds, p.table)
		return nil
	})

	// Step 6: Annotate the injected records
	ds, filled := compat.AnnotateMissing(ds, p.checker)
	if filled > 0 {
		logger.Debug().Int("records", filled).Msg("Annotated injected records")
	}

	// Step 7: Record what was built
	ds.Walk(func(_ string, _ cssdata.ListKind, rec *cssdata.FeatureRecord) bool {
		result.Features++
		if rec.Compatibility.Supported {
			result.Supported++
		}
		return true
	})
	if p.recorder != nil {
		p.recorder.AddCorrections(StageInject, len(result.Injected))
		p.recorder.AddCorrections(StagePatch, len(result.Patched))
		p.recorder.RecordDataset(ds)
	}

	// Step 8: Compare with the previous dataset
	result.Changes = p.compare(ctx, ds)

	// Step 9: Persist the dataset
	if !p.dryRun {
		if err := p.stage(ctx, StageWrite, func(context.Context) error {
			return p.writer.WriteDataset(ds)
		}); err != nil {
			return nil, err
		}
	} else {
		logger.Info().Bool("dry_run", true).Msg("Dry run completed - no artifacts written")
	}

	result.Dataset = ds
	result.Duration = time.Since(started)

	logger.Info().
		Int("specs", result.Specs).
		Int("fetched", result.Fetched).
		Int("missing", result.Missing).
		Int("failed", result.Failed).
		Int("features", result.Features).
		Int("supported", result.Supported).
		Int("injected", len(result.Injected)).
		Int("patched", len(result.Patched)).
		Dur("duration", result.Duration).
		Msg("Update complete")

	return result, nil
}

// compare diffs ds against the dataset currently on disk. A missing or
// unreadable previous dataset is not an error.
func (p *Pipeline) compare(ctx context.Context, ds cssdata.Dataset) *differ.Changeset {
	logger := logging.FromContext(ctx)

	prev, err := persistence.ReadDataset(p.writer.DataPath())
	if err != nil {
		if !errors.IsNotFound(err) {
			logger.Warn().Err(err).Msg("Skipping change report: previous dataset unreadable")
		}
		return nil
	}

	changes := differ.New().Datasets(prev, ds)
	logger.Info().
		Int("specs_added", changes.Summary.SpecsAdded).
		Int("specs_removed", changes.Summary.SpecsRemoved).
		Int("features_added", changes.Summary.FeaturesAdded).
		Int("features_updated", changes.Summary.FeaturesUpdated).
		Int("features_removed", changes.Summary.FeaturesRemoved).
		Msg("Compared with previous dataset")
	return changes
}

// stage runs fn with a stage-tagged logger and reports its duration.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx = logging.WithStage(ctx, name)
	started := time.Now()
	err := fn(ctx)
	if p.recorder != nil {
		p.recorder.ObserveStage(name, time.Since(started))
	}
	if err != nil {
		logging.FromContext(ctx).Error().Err(err).Msg("Stage failed")
	}
	return err
}
