package parser

import (
	"regexp"
	"strings"
)

var (
	rsFnRe   = regexp.MustCompile(`(?m)^([ \t]*)(?:pub(?:\([^)]*\))?\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+(\w+)\s*(?:<[^>]*>)?\s*\([^)]*\)\s*(?:->\s*[^{;]+)?`)
	rsTypeRe = regexp.MustCompile(`(?m)^([ \t]*)(?:pub(?:\([^)]*\))?\s+)?(struct|enum|trait)\s+(\w+)`)
)

// parseRust extracts fn items plus struct/enum/trait definitions. A fn with
// indentation sits inside an impl or trait block and is reported as a method.
// Docs are the contiguous /// block above the item; the file description is
// the //! block at the top.
func parseRust(content string) Result {
	var res Result
	lines := strings.Split(content, "\n")

	res.Description = rustInnerDoc(lines)

	for _, m := range rsTypeRe.FindAllStringSubmatchIndex(content, -1) {
		start := lineOfOffset(content, m[0])
		res.Declarations = append(res.Declarations, Declaration{
			Kind:      KindType,
			Name:      content[m[6]:m[7]],
			Signature: strings.TrimSpace(content[m[0]:m[1]]),
			StartLine: start,
			EndLine:   braceBlockEnd(content, lines, m[1]),
			Doc:       lineDocAbove(lines, start, "///"),
		})
	}

	for _, m := range rsFnRe.FindAllStringSubmatchIndex(content, -1) {
		start := lineOfOffset(content, m[0])
		kind := KindFunction
		if m[3]-m[2] > 0 {
			kind = KindMethod
		}
		res.Declarations = append(res.Declarations, Declaration{
			Kind:      kind,
			Name:      content[m[4]:m[5]],
			Signature: strings.TrimSpace(content[m[0]:m[1]]),
			StartLine: start,
			EndLine:   braceBlockEnd(content, lines, m[1]),
			Doc:       lineDocAbove(lines, start, "///"),
		})
	}

	res.Declarations = dedupeOverloads(res.Declarations)
	return res
}

// rustInnerDoc collects the //! lines before the first non-comment line
func rustInnerDoc(lines []string) string {
	var doc []string
	for _, line := range lines {
		t := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(t, "//!"):
			doc = append(doc, strings.TrimSpace(t[3:]))
		case t != "" && !strings.HasPrefix(t, "//"):
			return strings.Join(doc, " ")
		}
	}
	return strings.Join(doc, " ")
}

// lineDocAbove collects the contiguous block of marker-prefixed comment
// lines immediately above the 1-indexed declLine.
func lineDocAbove(lines []string, declLine int, marker string) string {
	var doc []string
	for i := declLine - 2; i >= 0; i-- {
		t := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(t, marker) {
			break
		}
		doc = append([]string{strings.TrimSpace(t[len(marker):])}, doc...)
	}
	return strings.Join(doc, " ")
}
