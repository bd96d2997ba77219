package parser

import (
	"regexp"
	"strings"
)

var (
	jsFuncRe  = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*(\w+)\s*\([^)]*\)`)
	jsArrowRe = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:const|let|var)\s+(\w+)\s*=\s*(?:async\s+)?(?:\([^)]*\)|\w+)\s*(?::\s*[^=]+)?=>`)
	jsClassRe = regexp.MustCompile(`(?m)^[ \t]*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+(\w+)(?:\s+extends\s+[\w\.]+)?(?:\s+implements\s+[\w\.,\s]+)?`)

	jsBlockDocRe = regexp.MustCompile(`(?s)^\s*/\*\*(.*?)\*/`)
	jsDocAboveRe = regexp.MustCompile(`(?s)/\*\*(.*?)\*/\s*$`)
	jsStarLeadRe = regexp.MustCompile(`(?m)^\s*\*\s?`)
)

// parseJavaScript extracts function declarations, arrow-function consts, and
// classes; the typed variant shares the grammar. Docs prefer the /** */
// block directly above a declaration, falling back to contiguous // lines.
func parseJavaScript(content string) Result {
	var res Result
	lines := strings.Split(content, "\n")

	if m := jsBlockDocRe.FindStringSubmatch(content); m != nil {
		res.Description = cleanBlockDoc(m[1])
	}

	for _, m := range jsClassRe.FindAllStringSubmatchIndex(content, -1) {
		start := lineOfOffset(content, m[0])
		res.Declarations = append(res.Declarations, Declaration{
			Kind:      KindClass,
			Name:      content[m[2]:m[3]],
			Signature: strings.TrimSpace(content[m[0]:m[1]]),
			StartLine: start,
			EndLine:   braceBlockEnd(content, lines, m[1]),
			Doc:       jsDocAbove(content, lines, start),
		})
	}

	for _, re := range []*regexp.Regexp{jsFuncRe, jsArrowRe} {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			start := lineOfOffset(content, m[0])
			res.Declarations = append(res.Declarations, Declaration{
				Kind:      KindFunction,
				Name:      content[m[2]:m[3]],
				Signature: strings.TrimSpace(content[m[0]:m[1]]),
				StartLine: start,
				EndLine:   braceBlockEnd(content, lines, m[1]),
				Doc:       jsDocAbove(content, lines, start),
			})
		}
	}

	res.Declarations = dedupeOverloads(res.Declarations)
	return res
}

// jsDocAbove finds the doc for a declaration on the 1-indexed declLine:
// a /** */ block ending directly above it, else contiguous // lines.
func jsDocAbove(content string, lines []string, declLine int) string {
	if declLine < 2 {
		return ""
	}
	before := strings.Join(lines[:declLine-1], "\n")
	// Anchor at the last /** so an earlier doc block cannot be swallowed
	// into the lazy capture.
	if i := strings.LastIndex(before, "/**"); i >= 0 {
		if m := jsDocAboveRe.FindStringSubmatch(before[i:]); m != nil {
			return cleanBlockDoc(m[1])
		}
	}

	var doc []string
	for i := declLine - 2; i >= 0; i-- {
		t := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(t, "//") || strings.HasPrefix(t, "///") {
			break
		}
		doc = append([]string{strings.TrimSpace(t[2:])}, doc...)
	}
	return strings.Join(doc, " ")
}

// cleanBlockDoc strips the leading * decoration from a /** */ body
func cleanBlockDoc(body string) string {
	return collapseWhitespace(jsStarLeadRe.ReplaceAllString(body, ""))
}
