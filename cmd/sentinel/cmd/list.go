package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents indexed for a subject",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subjectID, _ := cmd.Flags().GetString("subject")
			ctx := cmd.Context()
			core, err := buildContext(ctx)
			if err != nil {
				return err
			}
			defer core.Close()

			docs := core.ListDocuments(subjectID)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(docs)
			}

			out := cmd.OutOrStdout()
			if len(docs) == 0 {
				fmt.Fprintln(out, "no documents indexed")
				return nil
			}
			for _, d := range docs {
				fmt.Fprintf(out, "%s  %s  %d chunks  [%s]\n", d.DocumentID, d.Filename, d.ChunkCount, strings.Join(d.ChunkTypes, ", "))
			}
			return nil
		},
	}

	cmd.Flags().String("subject", "", "Subject id to list documents for (required)")
	cmd.MarkFlagRequired("subject")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
