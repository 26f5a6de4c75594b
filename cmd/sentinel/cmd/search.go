package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type searchOptions struct {
	subjectID    string
	limit        int
	noExpansion  bool
	noReranking  bool
	jsonOutput   bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a hybrid BM25 + semantic search over a subject",
		Long: `search combines BM25 keyword matching and dense semantic retrieval,
fused with reciprocal rank fusion, and optionally reranked by a
cross-encoder.

Example:
  sentinel search "routing protocol timers" --subject networks --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd, query, opts)
		},
	}

	cmd.Flags().StringVar(&opts.subjectID, "subject", "", "Subject id to search within (required)")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "Maximum number of results (1-20)")
	cmd.Flags().BoolVar(&opts.noExpansion, "no-expansion", false, "Disable query expansion")
	cmd.Flags().BoolVar(&opts.noReranking, "no-reranking", false, "Disable cross-encoder reranking")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.MarkFlagRequired("subject")

	return cmd
}

func runSearch(cmd *cobra.Command, query string, opts searchOptions) error {
	ctx := cmd.Context()

	core, err := buildContext(ctx)
	if err != nil {
		return err
	}
	defer core.Close()

	result, err := core.Search(ctx, opts.subjectID, query, opts.limit, !opts.noExpansion, !opts.noReranking)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d matches (searched %d chunks, method: %s, expanded: %t)\n\n",
		len(result.Matches), result.TotalSearched, result.SearchMethod, result.QueryExpanded)
	for i, m := range result.Matches {
		fmt.Fprintf(out, "%d. [%.4f] %s (p.%d)\n", i+1, m.Score, m.Filename, m.Page)
		if m.Header != "" {
			fmt.Fprintf(out, "   %s\n", m.Header)
		}
		fmt.Fprintf(out, "   %s\n\n", truncate(m.Text, 200))
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
