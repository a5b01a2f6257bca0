package webref

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

// Report summarizes a FetchFeatures run.
type Report struct {
	Fetched []string // Shortnames stored in the dataset
	Missing []string // Shortnames whose document does not exist (404)
	Failed  []string // Shortnames skipped because of another error

	errs error
}

// Err returns every per-specification failure combined, or nil.
func (r *Report) Err() error {
	return r.errs
}

// Errors returns the per-specification failures.
func (r *Report) Errors() []error {
	return multierr.Errors(r.errs)
}

type fetchResult struct {
	shortname string
	data      *cssdata.SpecData
	outcome   Outcome
	err       error
}

// FetchFeatures retrieves the feature document of every entry.
//
// Entries are fetched in batches of the configured size. Requests in a
// batch run concurrently and the next batch starts once all of them have
// settled. A 404 means the specification defines no CSS and is skipped
// quietly; any other failure is logged and recorded in the report, and
// the remaining fetches continue. The dataset is keyed by the index
// shortname even when the document was published under an alias.
//
// When ctx is canceled no further batch is started and the dataset
// gathered so far is returned with the context error.
func (c *Client) FetchFeatures(ctx context.Context, entries []cssdata.SpecIndexEntry) (cssdata.Dataset, *Report, error) {
	logger := logging.FromContext(ctx)
	ds := make(cssdata.Dataset)
	report := &Report{}

	logger.Info().
		Int("spec_count", len(entries)).
		Int("batch_size", c.batchSize).
		Msg("Fetching feature documents")

	for start := 0; start < len(entries); start += c.batchSize {
		if err := ctx.Err(); err != nil {
			return ds, report, errors.NewResourceError("fetch", "feature documents", "", err)
		}

		batch := entries[start:min(start+c.batchSize, len(entries))]
		results := make([]fetchResult, len(batch))

		var g errgroup.Group
		for i, entry := range batch {
			g.Go(func() error {
				results[i] = c.fetchOne(ctx, entry)
				return nil
			})
		}
		_ = g.Wait()

		for _, r := range results {
			switch r.outcome {
			case OutcomeFetched:
				ds[r.shortname] = r.data
				report.Fetched = append(report.Fetched, r.shortname)
			case OutcomeMissing:
				report.Missing = append(report.Missing, r.shortname)
			case OutcomeFailed:
				report.Failed = append(report.Failed, r.shortname)
				report.errs = multierr.Append(report.errs, r.err)
			}
		}

		logger.Debug().
			Int("batch_start", start).
			Int("batch_len", len(batch)).
			Int("fetched_total", len(report.Fetched)).
			Msg("Batch complete")
	}

	logger.Info().
		Int("fetched", len(report.Fetched)).
		Int("missing", len(report.Missing)).
		Int("failed", len(report.Failed)).
		Msg("Fetched feature documents")

	return ds, report, nil
}

func (c *Client) fetchOne(ctx context.Context, entry cssdata.SpecIndexEntry) fetchResult {
	shortname := entry.Shortname
	fetchName := c.resolver.FetchName(shortname)
	started := time.Now()
	result := fetchResult{shortname: shortname}

	defer func() {
		if c.observer != nil {
			c.observer.ObserveFetch(result.outcome, time.Since(started))
		}
	}()

	body, err := c.http.GetBytes(ctx, c.FeaturesURL(fetchName))
	if err == nil {
		var data cssdata.SpecData
		if err = json.Unmarshal(body, &data); err == nil {
			if note := c.resolver.Note(shortname); note != "" {
				data.Note = note
			}
			result.data = &data
			result.outcome = OutcomeFetched
			return result
		}
		err = errors.WrapParse("json", fetchName+".json", err)
	}

	if errors.IsNotFound(err) {
		result.outcome = OutcomeMissing
		return result
	}

	result.outcome = OutcomeFailed
	result.err = &errors.FetchError{Shortname: shortname, FetchName: fetchName, Err: err}
	logging.FromContext(logging.WithSpec(ctx, shortname)).Error().
		Err(err).
		Str("fetch_name", fetchName).
		Msg("Error fetching feature document")
	return result
}
