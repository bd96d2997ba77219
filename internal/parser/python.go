package parser

import (
	"regexp"
	"strings"
)

var (
	pyDefRe    = regexp.MustCompile(`(?m)^([ \t]*)(?:async[ \t]+)?def\s+(\w+)\s*\([^)]*\)\s*(?:->\s*[^:]+)?:`)
	pyClassRe  = regexp.MustCompile(`(?m)^([ \t]*)class\s+(\w+)\s*(?:\([^)]*\))?\s*:`)
	pyModDocRe = regexp.MustCompile(`(?s)^("""|''')(.*?)("""|''')`)
	pyDocRe    = regexp.MustCompile(`(?s)^\s*("""|''')(.*?)("""|''')`)
)

// parsePython extracts def and class declarations. A def with indentation is
// reported as a method; docs come from the docstring directly below the
// header.
func parsePython(content string) Result {
	var res Result

	if m := pyModDocRe.FindStringSubmatch(content); m != nil && m[1] == m[3] {
		res.Description = collapseWhitespace(m[2])
	}

	lines := strings.Split(content, "\n")

	for _, m := range pyClassRe.FindAllStringSubmatchIndex(content, -1) {
		start := lineOfOffset(content, m[0])
		indent := m[3] - m[2]
		res.Declarations = append(res.Declarations, Declaration{
			Kind:      KindClass,
			Name:      content[m[4]:m[5]],
			Signature: strings.TrimSpace(content[m[0]:m[1]]),
			StartLine: start,
			EndLine:   pythonBlockEnd(lines, lineOfOffset(content, m[1]), indent),
			Doc:       pythonDocstring(lines, lineOfOffset(content, m[1])),
		})
	}

	for _, m := range pyDefRe.FindAllStringSubmatchIndex(content, -1) {
		start := lineOfOffset(content, m[0])
		indent := m[3] - m[2]
		kind := KindFunction
		if indent > 0 {
			kind = KindMethod
		}
		res.Declarations = append(res.Declarations, Declaration{
			Kind:      kind,
			Name:      content[m[4]:m[5]],
			Signature: strings.TrimSpace(content[m[0]:m[1]]),
			StartLine: start,
			EndLine:   pythonBlockEnd(lines, lineOfOffset(content, m[1]), indent),
			Doc:       pythonDocstring(lines, lineOfOffset(content, m[1])),
		})
	}

	res.Declarations = dedupeOverloads(res.Declarations)
	return res
}

// pythonDocstring returns the docstring starting at or after headerEnd,
// the 1-indexed line where the def/class header's colon sits.
func pythonDocstring(lines []string, headerEnd int) string {
	if headerEnd >= len(lines) {
		return ""
	}
	rest := strings.Join(lines[headerEnd:], "\n")
	m := pyDocRe.FindStringSubmatch(rest)
	if m == nil || m[1] != m[3] {
		return ""
	}
	return collapseWhitespace(m[2])
}

// pythonBlockEnd finds the last line of an indentation-delimited block whose
// header (ending on 1-indexed line headerEnd) sits at the given indent width.
func pythonBlockEnd(lines []string, headerEnd, indent int) int {
	end := headerEnd
	for i := headerEnd; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentWidth(line) <= indent {
			break
		}
		end = i + 1
	}
	return end
}

// indentWidth counts leading whitespace, tabs weighted as 4 columns
func indentWidth(line string) int {
	w := 0
	for _, r := range line {
		switch r {
		case ' ':
			w++
		case '\t':
			w += 4
		default:
			return w
		}
	}
	return w
}
