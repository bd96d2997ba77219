// Package parser extracts declarations and doc text from source files using
// small per-language grammars. Parsers are pure functions over file text and
// never fail hard: malformed input yields whatever declarations were found
// before the trouble spot, with a note describing the rest.
package parser

import (
	"strings"
)

// Language is a closed tag over the supported language families
type Language string

const (
	// LangPython covers the dynamic-scripting family (.py)
	LangPython Language = "python"
	// LangRust covers the systems/compiled family (.rs)
	LangRust Language = "rust"
	// LangCSharp covers the managed-OO family (.cs)
	LangCSharp Language = "csharp"
	// LangJavaScript covers the web-script family (.js, .jsx)
	LangJavaScript Language = "javascript"
	// LangTypeScript is the typed web-script variant (.ts, .tsx)
	LangTypeScript Language = "typescript"
	// LangNone marks files kept in the index without structural parsing
	LangNone Language = ""
)

// Kind classifies a declaration
type Kind string

const (
	KindFunction Kind = "function"
	KindMethod   Kind = "method"
	KindClass    Kind = "class"
	KindType     Kind = "type"
)

// Declaration is one extracted function/method/class/type
type Declaration struct {
	Kind      Kind
	Name      string
	Signature string
	StartLine int // 1-indexed
	EndLine   int // 1-indexed, inclusive
	Doc       string
}

// Result is the outcome of parsing one file
type Result struct {
	Description  string // file-level doc text, if any
	Declarations []Declaration
	Notes        []string // parse anomalies, surfaced into the debug trace
}

// ForExtension maps a file extension (with leading dot, any case) to its
// language family. Unknown extensions map to LangNone.
func ForExtension(ext string) Language {
	switch strings.ToLower(ext) {
	case ".py":
		return LangPython
	case ".rs":
		return LangRust
	case ".cs":
		return LangCSharp
	case ".js", ".jsx":
		return LangJavaScript
	case ".ts", ".tsx":
		return LangTypeScript
	default:
		return LangNone
	}
}

// Parse runs the language's extractor over the file content. LangNone
// returns an empty result: the file stays searchable, just not indexed.
func Parse(lang Language, content string) Result {
	switch lang {
	case LangPython:
		return parsePython(content)
	case LangRust:
		return parseRust(content)
	case LangCSharp:
		return parseCSharp(content)
	case LangJavaScript, LangTypeScript:
		return parseJavaScript(content)
	default:
		return Result{}
	}
}

// lineOfOffset converts a byte offset into a 1-indexed line number
func lineOfOffset(content string, offset int) int {
	return strings.Count(content[:offset], "\n") + 1
}

// collapseWhitespace joins a doc block into one whitespace-normalized line
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// dedupeOverloads merges declarations sharing a name, keeping the first
// occurrence's position. Up to three signatures are joined with " | " plus
// an overload count; up to two distinct doc strings are kept.
func dedupeOverloads(decls []Declaration) []Declaration {
	if len(decls) == 0 {
		return decls
	}

	byName := make(map[string][]Declaration)
	order := make([]string, 0, len(decls))
	for _, d := range decls {
		key := string(d.Kind) + "\x00" + d.Name
		if _, seen := byName[key]; !seen {
			order = append(order, key)
		}
		byName[key] = append(byName[key], d)
	}

	out := make([]Declaration, 0, len(order))
	for _, key := range order {
		group := byName[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}

		merged := group[0]
		signatures := distinct(group, func(d Declaration) string { return d.Signature })
		if len(signatures) > 1 {
			kept := signatures
			if len(kept) > 3 {
				kept = kept[:3]
			}
			merged.Signature = strings.Join(kept, " | ")
			if extra := len(signatures) - 3; extra > 0 {
				merged.Signature += " (and " + itoa(extra) + " more overloads)"
			}
		}
		docs := distinct(group, func(d Declaration) string { return d.Doc })
		if len(docs) > 0 {
			if len(docs) > 2 {
				docs = docs[:2]
			}
			merged.Doc = strings.Join(docs, " | ")
		}
		out = append(out, merged)
	}
	return out
}

// distinct returns the non-empty distinct values of f over group, in order
func distinct(group []Declaration, f func(Declaration) string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range group {
		v := f(d)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
