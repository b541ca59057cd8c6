package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/entityretrieval/entityretrieval/internal/retrieval"
)

var (
	lookupContext   []string
	lookupCrosslink []string
	lookupCoarse    []string
	lookupFine      []string
	lookupTopK      int
	lookupIncludeK  bool
	lookupExactMode bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <mention>",
	Short: "Run a one-shot lookup against the entity store and print the JSON response",
	Args:  cobra.ExactArgs(1),
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

		limit := lookupTopK
		if limit == 0 {
			limit = retrieval.DefaultFuzzyTopK
		}

		svc := retrieval.NewService(s)
		resp, err := svc.Lookup(ctx, retrieval.LookupRequest{
			Mention:        args[0],
			ContextHints:   lookupContext,
			CrosslinkHints: lookupCrosslink,
			CoarseHints:    lookupCoarse,
			FineHints:      lookupFine,
			Limit:          limit,
			IncludeTopK:    lookupIncludeK,
			ExactMode:      lookupExactMode,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	},
}

func init() {
	lookupCmd.Flags().StringSliceVar(&lookupContext, "context", nil, "context hint (repeatable)")
	lookupCmd.Flags().StringSliceVar(&lookupCrosslink, "crosslink", nil, "crosslink hint (repeatable)")
	lookupCmd.Flags().StringSliceVar(&lookupCoarse, "coarse", nil, "coarse type hint (repeatable)")
	lookupCmd.Flags().StringSliceVar(&lookupFine, "fine", nil, "fine type hint (repeatable)")
	lookupCmd.Flags().IntVar(&lookupTopK, "top-k", 0, "number of ranked results to return, 1-100 (0 = default)")
	lookupCmd.Flags().BoolVar(&lookupIncludeK, "include-top-k", false, fmt.Sprintf("include the full ranked list, not just top1 (as many entries as --top-k, default %d)", retrieval.DefaultFuzzyTopK))
	lookupCmd.Flags().BoolVar(&lookupExactMode, "exact-mode", false, "pin an exact label/alias match to the top name score and add the exact-match bonus")
}
