// Command sentinel is the CLI front end for the hybrid document retrieval
// core: ingest PDFs into a subject, search across them, and manage what is
// indexed.
package main

import (
	"fmt"
	"os"

	"github.com/sentinel-rag/sentinel/cmd/sentinel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
