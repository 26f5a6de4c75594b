package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Remove a document's chunks from every subject it is indexed under",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			core, err := buildContext(ctx)
			if err != nil {
				return err
			}
			defer core.Close()

			result := core.DeleteDocument(args[0])

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d chunks for document %s\n", result.DeletedIDs, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output result as JSON")
	return cmd
}
