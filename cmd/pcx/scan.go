package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pcx/internal/engine"
)

var (
	scanFormat       string
	scanExtensions   []string
	scanMaxDepth     int
	scanMaxFiles     int
	scanMaxFileSize  int64
	scanCompactness  int
	scanDescriptions bool
	scanTimeout      int
	scanDebug        bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the tree and refresh the declaration index",
	Long: `Walk the project tree, parse changed files, and print the resulting
structure at the requested compactness level (0 = counts only, 1 = names
and signatures, 2 = plus doc text, 3 = plus full source spans).

Examples:
  pcx scan
  pcx scan --compactness=2
  pcx scan --extensions=.py,.rs --max-depth=3
  pcx scan --format=yaml`,
	Run: runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanFormat, "format", "json", "Output format (json, yaml, human)")
	scanCmd.Flags().StringSliceVar(&scanExtensions, "extensions", nil, "Extension allow-list (e.g. .py,.rs)")
	scanCmd.Flags().IntVar(&scanMaxDepth, "max-depth", 6, "Directory depth below root (0 = root only)")
	scanCmd.Flags().IntVar(&scanMaxFiles, "max-files", 0, "Stop after this many files (0 = configured default)")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 0, "Per-file size ceiling in bytes (0 = configured default)")
	scanCmd.Flags().IntVar(&scanCompactness, "compactness", 1, "Output detail level 0..3")
	scanCmd.Flags().BoolVar(&scanDescriptions, "descriptions", true, "Include file descriptions in the output")
	scanCmd.Flags().IntVar(&scanTimeout, "timeout", 60, "Deadline in seconds")
	scanCmd.Flags().BoolVar(&scanDebug, "debug", false, "Include a structured trace in the result")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	logger := newLogger()
	e := engine.New(logger)
	defer e.Close()

	req := &engine.ScanRequest{
		Root:             resolveRoot(),
		Extensions:       scanExtensions,
		MaxFiles:         scanMaxFiles,
		MaxFileSizeBytes: scanMaxFileSize,
		Debug:            scanDebug,
	}
	if cmd.Flags().Changed("max-depth") {
		req.MaxDepth = &scanMaxDepth
	}
	if cmd.Flags().Changed("compactness") {
		req.Compactness = &scanCompactness
	}
	if cmd.Flags().Changed("descriptions") {
		req.IncludeDescriptions = &scanDescriptions
	}
	if cmd.Flags().Changed("timeout") {
		req.TimeoutSeconds = &scanTimeout
	}

	res, err := e.Scan(context.Background(), req)
	if err != nil {
		fatal("scan: %v", err)
	}
	emit((*scanResponse)(res), scanFormat)
}

// scanResponse adds human rendering to the engine result
type scanResponse engine.ScanResult

func (r *scanResponse) renderHuman() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scan %s: %d files (%d cached, %d parsed), %d declarations",
		r.Status, r.Stats.FilesIndexed, r.Stats.CacheHits, r.Stats.Parsed, r.Stats.Declarations)
	if r.Stats.Pruned > 0 {
		fmt.Fprintf(&b, ", %d pruned", r.Stats.Pruned)
	}
	fmt.Fprintf(&b, " in %dms\n", r.Stats.ElapsedMs)

	if r.View == nil {
		return b.String()
	}

	b.WriteString("\nDirectories:\n")
	for _, d := range r.View.Directories {
		name := d.Path
		if name == "" {
			name = "."
		}
		fmt.Fprintf(&b, "  %-40s %4d files %5d declarations\n", name, d.Files, d.Declarations)
	}

	for _, f := range r.View.Files {
		fmt.Fprintf(&b, "\n%s", f.Path)
		if f.Description != "" {
			fmt.Fprintf(&b, " - %s", f.Description)
		}
		b.WriteString("\n")
		for _, d := range f.Declarations {
			fmt.Fprintf(&b, "  %5d %-8s %s\n", d.StartLine, d.Kind, d.Signature)
			if d.Doc != "" {
				fmt.Fprintf(&b, "        %s\n", d.Doc)
			}
			if d.Source != "" {
				for _, line := range strings.Split(d.Source, "\n") {
					fmt.Fprintf(&b, "        | %s\n", line)
				}
			}
		}
	}
	return b.String()
}
