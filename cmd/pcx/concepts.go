package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pcx/internal/engine"
)

var (
	conceptsFormat     string
	conceptsTopN       int
	conceptsExtensions []string
	conceptsTimeout    int
	conceptsDebug      bool
)

var conceptsCmd = &cobra.Command{
	Use:   "concepts <query>",
	Short: "Rank indexed declarations against a free-text concept",
	Long: `Score every indexed declaration against a natural-language query using
lexical relevance (names weigh most, then signatures, doc text, and file
descriptions). A root that has never been scanned is indexed first.

Examples:
  pcx concepts "user authentication"
  pcx concepts "retry logic" --top-n=5
  pcx concepts "invoice rendering" --format=human`,
	Args: cobra.ExactArgs(1),
	Run:  runConcepts,
}

func init() {
	conceptsCmd.Flags().StringVar(&conceptsFormat, "format", "json", "Output format (json, yaml, human)")
	conceptsCmd.Flags().IntVar(&conceptsTopN, "top-n", 10, "Maximum results to return")
	conceptsCmd.Flags().StringSliceVar(&conceptsExtensions, "extensions", nil, "Restrict to files with these extensions")
	conceptsCmd.Flags().IntVar(&conceptsTimeout, "timeout", 20, "Deadline in seconds")
	conceptsCmd.Flags().BoolVar(&conceptsDebug, "debug", false, "Include a structured trace in the result")
	rootCmd.AddCommand(conceptsCmd)
}

func runConcepts(cmd *cobra.Command, args []string) {
	logger := newLogger()
	e := engine.New(logger)
	defer e.Close()

	req := &engine.ConceptSearchRequest{
		Root:       resolveRoot(),
		Query:      args[0],
		TopN:       conceptsTopN,
		Extensions: conceptsExtensions,
		Debug:      conceptsDebug,
	}
	if cmd.Flags().Changed("timeout") {
		req.TimeoutSeconds = &conceptsTimeout
	}

	res, err := e.SearchConcept(context.Background(), req)
	if err != nil {
		fatal("concepts: %v", err)
	}
	emit((*conceptsResponse)(res), conceptsFormat)
}

// conceptsResponse adds human rendering to the engine result
type conceptsResponse engine.ConceptSearchResult

func (r *conceptsResponse) renderHuman() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concepts %s: %d hits from %d declarations, %dms\n",
		r.Status, len(r.Hits), r.Scored, r.ElapsedMs)

	for i, h := range r.Hits {
		d := h.Declaration
		fmt.Fprintf(&b, "\n%2d. [%.1f] %s %s  (%s:%d)\n",
			i+1, h.Score, d.Kind, d.Name, d.FilePath, d.StartLine)
		if d.Signature != "" {
			fmt.Fprintf(&b, "    %s\n", d.Signature)
		}
		if d.Doc != "" {
			fmt.Fprintf(&b, "    %s\n", d.Doc)
		}
	}
	return b.String()
}
