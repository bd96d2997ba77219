package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"pcx/internal/engine"
)

var (
	assessFormat     string
	assessExtensions []string
	assessTimeout    int
	assessDebug      bool
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Estimate tree size before committing to a scan",
	Long: `Count candidate files with a fast shallow walk and classify the tree
into a size band with suggested scan settings.

Examples:
  pcx assess
  pcx assess --root=../big-monorepo --format=human`,
	Run: runAssess,
}

func init() {
	assessCmd.Flags().StringVar(&assessFormat, "format", "json", "Output format (json, yaml, human)")
	assessCmd.Flags().StringSliceVar(&assessExtensions, "extensions", nil, "Extension allow-list (e.g. .py,.rs)")
	assessCmd.Flags().IntVar(&assessTimeout, "timeout", 10, "Deadline in seconds")
	assessCmd.Flags().BoolVar(&assessDebug, "debug", false, "Include a structured trace in the result")
	rootCmd.AddCommand(assessCmd)
}

func runAssess(cmd *cobra.Command, args []string) {
	logger := newLogger()
	e := engine.New(logger)
	defer e.Close()

	req := &engine.AssessRequest{
		Root:       resolveRoot(),
		Extensions: assessExtensions,
		Debug:      assessDebug,
	}
	if cmd.Flags().Changed("timeout") {
		req.TimeoutSeconds = &assessTimeout
	}

	res, err := e.Assess(context.Background(), req)
	if err != nil {
		fatal("assess: %v", err)
	}
	emit((*assessResponse)(res), assessFormat)
}

// assessResponse adds human rendering to the engine result
type assessResponse engine.AssessResult

func (r *assessResponse) renderHuman() string {
	truncNote := ""
	if r.Status != engine.StatusComplete {
		truncNote = " (partial count)"
	}
	return fmt.Sprintf("%d candidate files%s - %s tree\n%s\n(%dms)",
		r.Files, truncNote, r.Band, r.Guidance, r.ElapsedMs)
}
