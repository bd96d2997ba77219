// Package search implements the two query paths over a scanned tree:
// literal/regexp matching against file content, and lexical concept ranking
// over the declaration index.
package search

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	pcxerrors "pcx/internal/errors"
	"pcx/internal/trace"
)

// deadlineBatch is how many lines are processed between deadline checks
const deadlineBatch = 256

// ExactOptions bounds one exact search pass
type ExactOptions struct {
	Query        string
	Regex        bool // treat Query as a regular expression
	ContextLines int
	MaxResults   int // 0 = unlimited
}

// MatchBlock is one contiguous excerpt containing at least one match.
// Matches closer than a window apart merge into a single block.
type MatchBlock struct {
	Path      string   `json:"path"`
	StartLine int      `json:"startLine"`
	Lines     []string `json:"lines"`
	Matched   []int    `json:"matched"` // 1-indexed line numbers that matched
}

// ExactResult is the outcome of one exact search
type ExactResult struct {
	Blocks    []MatchBlock
	Truncated bool // deadline or result limit ended the pass early
	Scanned   int  // files opened
}

// Target is one file eligible for searching
type Target struct {
	RelPath string
	AbsPath string
}

// Compile turns the query into a matcher. Literal queries are quoted so
// metacharacters match themselves; regex queries must compile.
func Compile(opts ExactOptions) (*regexp.Regexp, error) {
	pattern := opts.Query
	if !opts.Regex {
		pattern = regexp.QuoteMeta(pattern)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, pcxerrors.Wrap(pcxerrors.InvalidRequest,
			fmt.Sprintf("invalid search pattern %q", opts.Query), err)
	}
	return re, nil
}

// Exact streams each target file line-wise, collecting context blocks around
// matching lines. Files are visited in the given order; the deadline is
// checked between files and every deadlineBatch lines, so a slow tree yields
// a truncated rather than failed result.
func Exact(ctx context.Context, targets []Target, opts ExactOptions, tr *trace.Trace) (*ExactResult, error) {
	re, err := Compile(opts)
	if err != nil {
		return nil, err
	}
	if opts.ContextLines < 0 {
		return nil, pcxerrors.New(pcxerrors.InvalidRequest, "context lines must be >= 0")
	}

	res := &ExactResult{}
	for _, t := range targets {
		if ctx.Err() != nil {
			res.Truncated = true
			tr.Add("search", "deadline reached after %d files", res.Scanned)
			break
		}

		blocks, truncated, err := searchFile(ctx, t, re, opts.ContextLines)
		if err != nil {
			tr.AddPath("search", t.RelPath, "skipped: %v", err)
			continue
		}
		res.Scanned++
		res.Blocks = append(res.Blocks, blocks...)
		if truncated {
			res.Truncated = true
			break
		}
		if opts.MaxResults > 0 && len(res.Blocks) >= opts.MaxResults {
			res.Blocks = res.Blocks[:opts.MaxResults]
			res.Truncated = true
			break
		}
	}
	return res, nil
}

// searchFile scans one file and merges nearby matches into blocks
func searchFile(ctx context.Context, t Target, re *regexp.Regexp, contextLines int) ([]MatchBlock, bool, error) {
	f, err := os.Open(t.AbsPath)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	var lines []string
	var matched []int

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	truncated := false
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		lines = append(lines, line)
		if re.MatchString(line) {
			matched = append(matched, lineNo)
		}
		if lineNo%deadlineBatch == 0 && ctx.Err() != nil {
			truncated = true
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, false, err
	}

	return buildBlocks(t.RelPath, lines, matched, contextLines), truncated, nil
}

// buildBlocks groups matched lines into context windows. Two matches whose
// windows touch or overlap share one block, so a run of hits on adjacent
// lines reads as a single excerpt.
func buildBlocks(path string, lines []string, matched []int, contextLines int) []MatchBlock {
	if len(matched) == 0 {
		return nil
	}

	window := 2*contextLines + 1
	var blocks []MatchBlock

	start := 0
	for i := 1; i <= len(matched); i++ {
		if i < len(matched) && matched[i]-matched[i-1] < window+1 {
			continue
		}
		group := matched[start:i]
		start = i

		lo := group[0] - contextLines
		if lo < 1 {
			lo = 1
		}
		hi := group[len(group)-1] + contextLines
		if hi > len(lines) {
			hi = len(lines)
		}

		blocks = append(blocks, MatchBlock{
			Path:      path,
			StartLine: lo,
			Lines:     append([]string(nil), lines[lo-1:hi]...),
			Matched:   append([]int(nil), group...),
		})
	}
	return blocks
}

// Highlight renders a block's lines with a marker on matched lines, for the
// human output format.
func Highlight(b MatchBlock) []string {
	isMatch := make(map[int]bool, len(b.Matched))
	for _, n := range b.Matched {
		isMatch[n] = true
	}
	out := make([]string, len(b.Lines))
	for i, line := range b.Lines {
		n := b.StartLine + i
		mark := " "
		if isMatch[n] {
			mark = ">"
		}
		out[i] = fmt.Sprintf("%s %4d: %s", mark, n, line)
	}
	return out
}

// trim guards against queries that are all whitespace
func trimQuery(q string) string {
	return strings.TrimSpace(q)
}

// ValidateQuery rejects empty or whitespace-only queries
func ValidateQuery(q string) error {
	if trimQuery(q) == "" {
		return pcxerrors.New(pcxerrors.InvalidRequest, "search query must not be empty")
	}
	return nil
}
