// Package ingest implements the two-pass ingestion pipeline: pass 1 streams
// the dump, transforms each entity into an [store.EntityRecord] and batch
// upserts it; pass 2 resolves relation-object labels into context strings
// and rebuilds the search vector for every row.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/entityretrieval/entityretrieval/internal/dump"
	"github.com/entityretrieval/entityretrieval/internal/nertype"
	"github.com/entityretrieval/entityretrieval/internal/store"
	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

// Pass1Options configures [RunPass1].
type Pass1Options struct {
	DumpPath              string
	BatchSize             int // default 5000
	Limit                 int // 0 = unlimited
	LanguageAllowlist     []string
	MaxAliasesPerLanguage int // default 8
	MaxContextObjectIDs   int // default 32
	DisableNERClassifier  bool
	WorkerCount           int // 0 = min(8, NumCPU)
	BuildSearchVector     bool
}

// Pass1Result summarizes one [RunPass1] run.
type Pass1Result struct {
	Parsed int
	Stored int
	Typed  int
}

func resolveWorkerCount(requested int) int {
	if requested > 0 {
		return requested
	}
	n := runtime.NumCPU()
	if n > 8 {
		n = 8
	}
	if n < 1 {
		n = 1
	}
	return n
}

// RunPass1 streams opts.DumpPath, transforms each supported entity into an
// EntityRecord (4.B through 4.E), and batch-upserts into s. Per-record
// transforms run over a fixed-width worker pool; upserts are always
// serialized against s.
func RunPass1(ctx context.Context, s *store.Store, opts Pass1Options) (Pass1Result, error) {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 5000
	}
	maxAliases := opts.MaxAliasesPerLanguage
	if maxAliases == 0 {
		maxAliases = 8
	}
	maxContextObjects := opts.MaxContextObjectIDs
	if maxContextObjects == 0 {
		maxContextObjects = 32
	}
	languages := opts.LanguageAllowlist
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	workers := resolveWorkerCount(opts.WorkerCount)

	reader, err := dump.Open(opts.DumpPath, opts.Limit)
	if err != nil {
		return Pass1Result{}, fmt.Errorf("ingest: pass1: %w", err)
	}
	defer reader.Close()

	var result Pass1Result
	var pending []*wikidata.RawEntity

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		stored, typed, err := transformAndUpsertBatch(ctx, s, pending, transformOptions{
			languageAllowlist:     languages,
			maxAliasesPerLanguage: maxAliases,
			maxContextObjectIDs:   maxContextObjects,
			disableNERClassifier:  opts.DisableNERClassifier,
			buildSearchVector:     opts.BuildSearchVector,
			workers:               workers,
		})
		if err != nil {
			return err
		}
		result.Stored += stored
		result.Typed += typed
		pending = pending[:0]
		return nil
	}

	for {
		entity, _, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return result, fmt.Errorf("ingest: pass1: %w", err)
		}
		result.Parsed++
		pending = append(pending, entity)
		if len(pending) >= batchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := flush(); err != nil {
		return result, err
	}

	return result, nil
}

// transformOptions carries the per-entity transform knobs through to the
// worker pool.
type transformOptions struct {
	languageAllowlist     []string
	maxAliasesPerLanguage int
	maxContextObjectIDs   int
	disableNERClassifier  bool
	buildSearchVector     bool
	workers               int
}

// transformAndUpsertBatch runs [transformEntity] over a batch in parallel
// (bounded by opts.workers via errgroup), then upserts every non-nil result
// serially against s.
func transformAndUpsertBatch(ctx context.Context, s *store.Store, batch []*wikidata.RawEntity, opts transformOptions) (stored int, typed int, err error) {
	records := make([]*store.EntityRecord, len(batch))

	g := new(errgroup.Group)
	g.SetLimit(opts.workers)
	for i, entity := range batch {
		i, entity := i, entity
		g.Go(func() error {
			records[i] = transformEntity(entity, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, fmt.Errorf("ingest: pass1 transform: %w", err)
	}

	rows := make([]store.EntityRecord, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.CoarseType != "" || r.FineType != "" {
			typed++
		}
		rows = append(rows, *r)
	}

	n, err := s.UpsertEntities(ctx, rows, opts.buildSearchVector)
	if err != nil {
		return 0, 0, err
	}
	return n, typed, nil
}

// transformEntity runs 4.B -> 4.C -> 4.D -> 4.E over a single raw entity and
// assembles an EntityRecord with an empty context_string. Returns nil if the
// entity is unsupported or has no usable primary label.
func transformEntity(entity *wikidata.RawEntity, opts transformOptions) *store.EntityRecord {
	if !wikidata.IsSupportedEntityID(entity.ID) {
		return nil
	}

	payload := wikidata.ExtractPayload(entity)
	labels := wikidata.SelectTextMapLanguages(payload.Labels, opts.languageAllowlist, true)
	aliases := wikidata.SelectAliasMapLanguages(payload.Aliases, opts.languageAllowlist, opts.maxAliasesPerLanguage)
	descriptions := wikidata.SelectTextMapLanguages(payload.Descriptions, opts.languageAllowlist, true)

	label := wikidata.PickPrimaryLabel(labels)
	if label == "" {
		return nil
	}

	var coarseType, fineType string
	if !opts.disableNERClassifier {
		coarseTypes, fineTypes, _ := nertype.InferTypes(entity.ID, labels, aliases, descriptions)
		if len(coarseTypes) > 0 {
			coarseType = coarseTypes[0]
		}
		if len(fineTypes) > 0 {
			fineType = fineTypes[0]
		}
	}

	relationObjectQIDs := wikidata.ExtractClaimObjectIDs(entity, opts.maxContextObjectIDs)
	popularity := wikidata.Popularity(entity)
	wikipediaRef, dbpediaRef := wikidata.CrossRefs(entity)
	itemCategory := wikidata.ItemCategory(entity)

	return &store.EntityRecord{
		QID:                entity.ID,
		Label:              label,
		Labels:             labels,
		Aliases:            aliases,
		CoarseType:         coarseType,
		FineType:           fineType,
		ItemCategory:       itemCategory,
		Popularity:         popularity,
		CrossRefs:          map[string]string{"wikipedia": wikipediaRef, "dbpedia": dbpediaRef},
		RelationObjectQIDs: relationObjectQIDs,
		ContextString:      "",
	}
}
