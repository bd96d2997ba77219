package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pcx/internal/engine"
	"pcx/internal/search"
)

var (
	searchFormat     string
	searchRegex      bool
	searchContext    int
	searchMaxResults int
	searchExtensions []string
	searchMaxDepth   int
	searchTimeout    int
	searchDebug      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find literal or regexp matches with surrounding context",
	Long: `Search file content for a literal string (default) or a regular
expression (--regex). Nearby matches merge into one excerpt; matched lines
are marked with '>'.

Examples:
  pcx search "parse_config"
  pcx search --regex '^fn \w+' --context=3
  pcx search TODO --extensions=.py --format=human`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchFormat, "format", "json", "Output format (json, yaml, human)")
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "Treat the query as a regular expression")
	searchCmd.Flags().IntVar(&searchContext, "context", 2, "Context lines around each match")
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "Stop after this many excerpts (0 = unlimited)")
	searchCmd.Flags().StringSliceVar(&searchExtensions, "extensions", nil, "Extension allow-list (e.g. .py,.rs)")
	searchCmd.Flags().IntVar(&searchMaxDepth, "max-depth", 6, "Directory depth below root")
	searchCmd.Flags().IntVar(&searchTimeout, "timeout", 60, "Deadline in seconds")
	searchCmd.Flags().BoolVar(&searchDebug, "debug", false, "Include a structured trace in the result")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	logger := newLogger()
	e := engine.New(logger)
	defer e.Close()

	req := &engine.ExactSearchRequest{
		Root:       resolveRoot(),
		Query:      args[0],
		Regex:      searchRegex,
		MaxResults: searchMaxResults,
		Extensions: searchExtensions,
		Debug:      searchDebug,
	}
	if cmd.Flags().Changed("context") {
		req.ContextLines = &searchContext
	}
	if cmd.Flags().Changed("max-depth") {
		req.MaxDepth = &searchMaxDepth
	}
	if cmd.Flags().Changed("timeout") {
		req.TimeoutSeconds = &searchTimeout
	}

	res, err := e.SearchExact(context.Background(), req)
	if err != nil {
		fatal("search: %v", err)
	}
	emit((*searchResponse)(res), searchFormat)
}

// searchResponse adds human rendering to the engine result
type searchResponse engine.ExactSearchResult

func (r *searchResponse) renderHuman() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Search %s: %d excerpts in %d files, %dms\n",
		r.Status, len(r.Blocks), r.Scanned, r.ElapsedMs)

	for _, block := range r.Blocks {
		fmt.Fprintf(&b, "\n%s\n", block.Path)
		for _, line := range search.Highlight(block) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}
