package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

type processOptions struct {
	subjectID  string
	documentID string
	jsonOutput bool
}

func newProcessCmd() *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process <file.pdf>",
		Short: "Extract, chunk, embed, and index a PDF under a subject",
		Long: `process reads a PDF, splits it into semantic chunks, embeds them,
and indexes the result in both the dense and sparse stores for --subject.

Example:
  sentinel process networks-ch3.pdf --subject networks --document-id ch3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.subjectID, "subject", "", "Subject id to index under (required)")
	cmd.Flags().StringVar(&opts.documentID, "document-id", "", "Document id (defaults to the file's base name without extension)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output result as JSON")
	cmd.MarkFlagRequired("subject")

	return cmd
}

func runProcess(cmd *cobra.Command, path string, opts processOptions) error {
	ctx := cmd.Context()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	documentID := opts.documentID
	if documentID == "" {
		base := filepath.Base(path)
		documentID = base[:len(base)-len(filepath.Ext(base))]
	}

	core, err := buildContext(ctx)
	if err != nil {
		return err
	}
	defer core.Close()

	result, err := core.ProcessDocument(ctx, data, filepath.Base(path), documentID, opts.subjectID)
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %s: %d pages, %d chunks, %d chars (%d headers, %d code blocks, %d tables)\n",
		documentID, result.PageCount, result.ChunkCount, result.TotalChars,
		result.HeadersFound, result.CodeBlocksFound, result.TablesFound)
	return nil
}
