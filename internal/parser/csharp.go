package parser

import (
	"regexp"
	"strings"
)

var (
	csTypeRe        = regexp.MustCompile(`(?m)^\s*(?:public|private|protected|internal)?\s*(?:static|sealed|abstract|partial)?\s*(class|struct|interface|enum)\s+(\w+)`)
	csMethodRe      = regexp.MustCompile(`(?m)^\s*(?:public|private|protected|internal)\s*(?:static|virtual|override|async|new|sealed|abstract)?\s*(?:[\w<>\[\],\.\?]+\s+)+?(\w+)\s*\([^)]*\)\s*(?:where\s+[^;{]+)?\s*\{`)
	csPropRe        = regexp.MustCompile(`(?m)^\s*(?:public|private|protected|internal)?\s*(?:static|new)?\s*([\w<>\[\],\.\?]+)\s+(\w+)\s*\{\s*get;\s*(?:private\s*)?set;\s*\}`)
	csSummaryRe     = regexp.MustCompile(`(?s)<summary>(.*?)</summary>`)
	csFileSummaryRe = regexp.MustCompile(`(?s)^\s*///\s*<summary>(.*?)</summary>`)
	csDocPrefixRe   = regexp.MustCompile(`\s*///\s?`)

	csKeywords = map[string]bool{
		"if": true, "for": true, "foreach": true, "while": true,
		"switch": true, "return": true, "using": true, "lock": true,
		"catch": true,
	}
)

// parseCSharp extracts type definitions, brace-bodied methods, and
// auto-properties. Docs come from the /// block above a member, with the
// <summary> element preferred when present.
func parseCSharp(content string) Result {
	var res Result
	lines := strings.Split(content, "\n")

	res.Description = csharpFileDoc(content)

	for _, m := range csTypeRe.FindAllStringSubmatchIndex(content, -1) {
		start := lineOfOffset(content, m[0])
		kind := KindClass
		if w := content[m[2]:m[3]]; w == "interface" || w == "enum" {
			kind = KindType
		}
		res.Declarations = append(res.Declarations, Declaration{
			Kind:      kind,
			Name:      content[m[4]:m[5]],
			Signature: strings.TrimSpace(content[m[0]:m[1]]),
			StartLine: start,
			EndLine:   braceBlockEnd(content, lines, m[1]),
			Doc:       csharpDocAbove(lines, start),
		})
	}

	for _, m := range csMethodRe.FindAllStringSubmatchIndex(content, -1) {
		name := content[m[2]:m[3]]
		if csKeywords[name] {
			continue
		}
		start := lineOfOffset(content, m[0])
		sig := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(content[m[0]:m[1]]), "{"))
		res.Declarations = append(res.Declarations, Declaration{
			Kind:      KindMethod,
			Name:      name,
			Signature: sig,
			StartLine: start,
			EndLine:   braceBlockEnd(content, lines, m[1]-1),
			Doc:       csharpDocAbove(lines, start),
		})
	}

	for _, m := range csPropRe.FindAllStringSubmatchIndex(content, -1) {
		start := lineOfOffset(content, m[0])
		res.Declarations = append(res.Declarations, Declaration{
			Kind:      KindMethod,
			Name:      content[m[4]:m[5]],
			Signature: strings.TrimSpace(content[m[0]:m[1]]),
			StartLine: start,
			EndLine:   lineOfOffset(content, m[1]-1),
			Doc:       csharpDocAbove(lines, start),
		})
	}

	res.Declarations = dedupeOverloads(res.Declarations)
	return res
}

// csharpFileDoc extracts a file-level description from a leading
// /// <summary> block or a leading /** */ comment.
func csharpFileDoc(content string) string {
	if m := csFileSummaryRe.FindStringSubmatch(content); m != nil {
		s := csDocPrefixRe.ReplaceAllString(m[1], " ")
		return collapseWhitespace(s)
	}
	if m := jsBlockDocRe.FindStringSubmatch(content); m != nil {
		return cleanBlockDoc(m[1])
	}
	return ""
}

// csharpDocAbove reads the /// block above declLine, preferring the
// <summary> element; without one, lines that are XML tags are dropped.
func csharpDocAbove(lines []string, declLine int) string {
	var doc []string
	for i := declLine - 2; i >= 0; i-- {
		t := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(t, "///") {
			break
		}
		doc = append([]string{strings.TrimSpace(t[3:])}, doc...)
	}
	if len(doc) == 0 {
		return ""
	}

	full := strings.Join(doc, " ")
	if m := csSummaryRe.FindStringSubmatch(full); m != nil {
		return collapseWhitespace(m[1])
	}
	var kept []string
	for _, l := range doc {
		if !strings.HasPrefix(l, "<") {
			kept = append(kept, l)
		}
	}
	return collapseWhitespace(strings.Join(kept, " "))
}
