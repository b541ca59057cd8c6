// Package pipeline orchestrates the full ingestion pipeline: pass 1, pass 2,
// search-index creation, and the optional lookup-compaction step, in that
// order. Pass 1 and pass 2 can each be skipped and compaction is opt-in;
// search-index creation always runs.
package pipeline

import (
	"context"
	"fmt"

	"github.com/entityretrieval/entityretrieval/internal/ingest"
	"github.com/entityretrieval/entityretrieval/internal/store"
)

// Options configures [Run]. Phase flags default to running everything.
type Options struct {
	Pass1 ingest.Pass1Options
	Pass2 ingest.Pass2Options

	SkipPass1   bool
	SkipPass2   bool
	Compact     bool
	ExpectTotal int // reserved for progress reporting; not read by Run
}

// Result summarizes everything a [Run] did.
type Result struct {
	Pass1 ingest.Pass1Result
	Pass2 ingest.Pass2Result
	Compacted bool
}

// Progress is called after each phase completes, in driver order:
// "pass1", "pass2", "index", "compact". Implementations should not block.
type Progress func(phase string)

// Run drives the full pipeline against s: (optionally) pass 1, (optionally)
// pass 2, then an idempotent search-index pass, then an optional compaction
// step. It returns as soon as any phase fails — later phases never run on a
// failed driver, and the error identifies which phase failed.
func Run(ctx context.Context, s *store.Store, opts Options, onProgress Progress) (Result, error) {
	var res Result

	if !opts.SkipPass1 {
		r, err := ingest.RunPass1(ctx, s, opts.Pass1)
		if err != nil {
			return res, fmt.Errorf("pipeline: pass1: %w", err)
		}
		res.Pass1 = r
		report(onProgress, "pass1")
	}

	if !opts.SkipPass2 {
		r, err := ingest.RunPass2(ctx, s, opts.Pass2)
		if err != nil {
			return res, fmt.Errorf("pipeline: pass2: %w", err)
		}
		res.Pass2 = r
		report(onProgress, "pass2")
	}

	if err := store.EnsureSearchIndexes(ctx, s.Pool()); err != nil {
		return res, fmt.Errorf("pipeline: ensure search indexes: %w", err)
	}
	report(onProgress, "index")

	if opts.Compact {
		if err := store.CompactForLookup(ctx, s.Pool()); err != nil {
			return res, fmt.Errorf("pipeline: compact for lookup: %w", err)
		}
		res.Compacted = true
		report(onProgress, "compact")
	}

	return res, nil
}

func report(onProgress Progress, phase string) {
	if onProgress != nil {
		onProgress(phase)
	}
}
