package ingest

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/entityretrieval/entityretrieval/internal/store"
)

// Pass2Options configures [RunPass2].
type Pass2Options struct {
	BatchSize   int // default 1000
	WorkerCount int // 0 = min(8, NumCPU)
}

// Pass2Result summarizes one [RunPass2] run.
type Pass2Result struct {
	TotalEntities int64
	Updated       int
	Submitted     int
}

// RunPass2 streams ordered ID batches from s, resolves each batch's union of
// relation-object labels, builds per-entity context strings, and writes them
// back. Up to 2*workers batches may be in flight at once: new batches are
// dispatched as soon as any in-flight batch completes (mirroring the
// Python reference's `wait(..., return_when=FIRST_COMPLETED)` backpressure),
// not merely bounded by worker-pool width.
func RunPass2(ctx context.Context, s *store.Store, opts Pass2Options) (Pass2Result, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	workers := resolveWorkerCount(opts.WorkerCount)
	maxInFlight := workers * 2

	total, err := s.CountEntities(ctx)
	if err != nil {
		return Pass2Result{}, fmt.Errorf("ingest: pass2: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var result Pass2Result
	result.TotalEntities = total

	// inFlight tracks admitted-but-not-yet-completed batches; done receives
	// the updated-row delta from each completed batch. Capacity maxInFlight
	// lets every admitted goroutine report back without blocking on send.
	done := make(chan int, maxInFlight)
	inFlight := 0

	submit := func(qids []string) {
		inFlight++
		result.Submitted += len(qids)
		g.Go(func() error {
			n, err := buildContextStringsForBatch(gctx, s, qids)
			done <- n
			return err
		})
	}

	drain := func(block bool) {
		for {
			select {
			case n := <-done:
				inFlight--
				result.Updated += n
			default:
				if !block || inFlight == 0 {
					return
				}
				n := <-done
				inFlight--
				result.Updated += n
				return
			}
		}
	}

	iterErr := s.IterEntityIDs(ctx, batchSize, func(qids []string) bool {
		submit(qids)
		if inFlight >= maxInFlight {
			drain(true)
		} else {
			drain(false)
		}
		return true
	})

	for inFlight > 0 {
		drain(true)
	}

	if err := g.Wait(); err != nil {
		return result, fmt.Errorf("ingest: pass2: %w", err)
	}
	if iterErr != nil {
		return result, fmt.Errorf("ingest: pass2: %w", iterErr)
	}
	return result, nil
}

// buildContextStringsForBatch loads relation-object IDs for qids, resolves
// the union of referenced labels in one call, and writes back each source
// entity's context string.
func buildContextStringsForBatch(ctx context.Context, s *store.Store, qids []string) (int, error) {
	batch, err := s.LoadContextInputs(ctx, qids)
	if err != nil {
		return 0, err
	}

	var relatedIDs []string
	seen := map[string]struct{}{}
	for _, entry := range batch {
		for _, objectQID := range entry.RelationObjectQIDs {
			if _, dup := seen[objectQID]; dup {
				continue
			}
			seen[objectQID] = struct{}{}
			relatedIDs = append(relatedIDs, objectQID)
		}
	}

	labelMap, err := s.ResolveLabels(ctx, relatedIDs)
	if err != nil {
		return 0, err
	}

	updates := make([]store.ContextUpdate, 0, len(batch))
	for _, entry := range batch {
		tokenSet := map[string]struct{}{}
		for _, objectQID := range entry.RelationObjectQIDs {
			label := strings.TrimSpace(labelMap[objectQID])
			if label == "" {
				continue
			}
			tokenSet[label] = struct{}{}
		}
		tokens := make([]string, 0, len(tokenSet))
		for t := range tokenSet {
			tokens = append(tokens, t)
		}
		sort.Strings(tokens)
		updates = append(updates, store.ContextUpdate{
			QID:           entry.QID,
			ContextString: strings.Join(tokens, "; "),
		})
	}

	return s.UpdateContextStrings(ctx, updates)
}
