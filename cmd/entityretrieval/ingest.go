package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entityretrieval/entityretrieval/internal/ingest"
	"github.com/entityretrieval/entityretrieval/internal/pipeline"
)

var (
	ingestSkipPass1 bool
	ingestSkipPass2 bool
	ingestCompact   bool
	ingestLimit     int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Run the two-pass ingestion pipeline: pass 1, pass 2, index, compact",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		s, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		limit := ingestLimit
		if limit == 0 {
			limit = cfg.Ingest.Limit
		}

		opts := pipeline.Options{
			Pass1: ingest.Pass1Options{
				DumpPath:              cfg.Ingest.DumpPath,
				BatchSize:             cfg.Ingest.Pass1BatchSize,
				Limit:                 limit,
				LanguageAllowlist:     cfg.Ingest.LanguageAllowlist,
				MaxAliasesPerLanguage: cfg.Ingest.MaxAliasesPerLanguage,
				MaxContextObjectIDs:   cfg.Ingest.MaxContextObjectIDs,
				DisableNERClassifier:  cfg.Ingest.DisableNERClassifier,
				WorkerCount:           cfg.Ingest.WorkerCount,
				BuildSearchVector:     ingestSkipPass2,
			},
			Pass2: ingest.Pass2Options{
				BatchSize:   cfg.Ingest.Pass2BatchSize,
				WorkerCount: cfg.Ingest.WorkerCount,
			},
			SkipPass1: ingestSkipPass1,
			SkipPass2: ingestSkipPass2,
			Compact:   ingestCompact,
		}

		res, err := pipeline.Run(ctx, s, opts, func(phase string) {
			fmt.Printf("phase %q complete\n", phase)
		})
		if err != nil {
			return err
		}

		fmt.Printf("pass1: parsed=%d stored=%d typed=%d\n", res.Pass1.Parsed, res.Pass1.Stored, res.Pass1.Typed)
		fmt.Printf("pass2: total=%d updated=%d\n", res.Pass2.TotalEntities, res.Pass2.Updated)
		return nil
	},
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestSkipPass1, "skip-pass1", false, "skip pass 1 (dump transform + upsert)")
	ingestCmd.Flags().BoolVar(&ingestSkipPass2, "skip-pass2", false, "skip pass 2 (context string resolution)")
	ingestCmd.Flags().BoolVar(&ingestCompact, "compact", false, "drop the entity_context_inputs table (not needed for query serving) after indexing")
	ingestCmd.Flags().IntVar(&ingestLimit, "limit", 0, "cap the number of dump entities processed (0 = use ingest.limit from the config, where 0 means unlimited)")
}
