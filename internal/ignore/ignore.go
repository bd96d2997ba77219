// Package ignore locates ignore-pattern files beneath a scan root and
// compiles them into a path-exclusion matcher.
//
// Syntax is the familiar glob-with-negation form: one pattern per line,
// `#` comments, blank lines skipped, `!` re-includes, a trailing `/` limits
// the pattern to directories. Patterns are scoped to the directory tree
// rooted where the file was found; rules from deeper directories take
// precedence over ancestor rules for paths beneath them.
package ignore

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"pcx/internal/trace"
)

// IgnoreFileNames are the filenames recognized as ignore-pattern files,
// checked in order; patterns from both apply when both exist.
var IgnoreFileNames = []string{".gitignore", ".pcxignore"}

// builtinPatterns are always excluded regardless of ignore files
var builtinPatterns = []string{".git/", ".hg/", ".svn/", ".pcx/"}

// Rule is a single compiled ignore pattern
type Rule struct {
	Pattern  string // glob, relative to the defining directory
	Negate   bool
	DirOnly  bool
	Anchored bool // had a leading or interior slash: match from scope dir only
}

// scope holds the rules contributed by ignore files in one directory
type scope struct {
	dir   string // canonical path relative to root; "" for the root itself
	rules []Rule
}

// RuleSet is the compiled, immutable exclusion matcher for one scan
type RuleSet struct {
	scopes []scope // sorted by depth, shallowest first
}

// Build walks top-down from root collecting ignore files up to maxDepth
// directory levels, plus any extra root-scoped patterns (e.g. from the scan
// manifest). Malformed or unreadable ignore files contribute no rules for
// their scope and are recorded in the trace; Build itself never fails.
func Build(root string, maxDepth int, extra []string, tr *trace.Trace) *RuleSet {
	rs := &RuleSet{}

	rootRules := compile(builtinPatterns)
	rootRules = append(rootRules, compile(extra)...)
	rs.scopes = append(rs.scopes, scope{dir: "", rules: rootRules})

	rs.collect(root, root, 0, maxDepth, tr)

	sort.SliceStable(rs.scopes, func(i, j int) bool {
		return depthOf(rs.scopes[i].dir) < depthOf(rs.scopes[j].dir)
	})
	return rs
}

// collect reads ignore files in dir and recurses into subdirectories that
// are not already excluded by the rules gathered so far.
func (rs *RuleSet) collect(root, dir string, depth, maxDepth int, tr *trace.Trace) {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		rel = ""
	}

	for _, name := range IgnoreFileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				tr.AddPath("ignore", filepath.ToSlash(filepath.Join(rel, name)),
					"unreadable ignore file: %v", err)
			}
			continue
		}
		rules := parse(string(data))
		if len(rules) > 0 {
			rs.addScope(rel, rules)
		}
	}

	if depth >= maxDepth {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		childRel := e.Name()
		if rel != "" {
			childRel = rel + "/" + e.Name()
		}
		if rs.Excluded(childRel, true) {
			continue
		}
		rs.collect(root, filepath.Join(dir, e.Name()), depth+1, maxDepth, tr)
	}
}

func (rs *RuleSet) addScope(dir string, rules []Rule) {
	for i := range rs.scopes {
		if rs.scopes[i].dir == dir {
			rs.scopes[i].rules = append(rs.scopes[i].rules, rules...)
			return
		}
	}
	rs.scopes = append(rs.scopes, scope{dir: dir, rules: rules})
}

// parse compiles the lines of one ignore file
func parse(content string) []Rule {
	var patterns []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		patterns = append(patterns, trimmed)
	}
	return compile(patterns)
}

// compile turns raw pattern lines into Rules, dropping invalid globs
func compile(patterns []string) []Rule {
	var rules []Rule
	for _, p := range patterns {
		r := Rule{}
		if strings.HasPrefix(p, "!") {
			r.Negate = true
			p = p[1:]
		}
		if strings.HasSuffix(p, "/") {
			r.DirOnly = true
			p = strings.TrimSuffix(p, "/")
		}
		if strings.HasPrefix(p, "/") {
			r.Anchored = true
			p = p[1:]
		} else if strings.Contains(p, "/") {
			r.Anchored = true
		}
		if p == "" || !doublestar.ValidatePattern(p) {
			continue
		}
		r.Pattern = p
		rules = append(rules, r)
	}
	return rules
}

// Excluded reports whether the canonical (root-relative, forward-slashed)
// path is excluded from the scan. Rules from the deepest applicable
// directory are evaluated first; within one scope the last matching rule
// wins, as in standard ignore-file semantics.
func (rs *RuleSet) Excluded(relPath string, isDir bool) bool {
	if rs == nil {
		return false
	}
	relPath = strings.Trim(filepath.ToSlash(relPath), "/")
	if relPath == "" || relPath == "." {
		return false
	}

	for i := len(rs.scopes) - 1; i >= 0; i-- {
		sc := &rs.scopes[i]
		sub, ok := pathWithin(relPath, sc.dir)
		if !ok {
			continue
		}
		for j := len(sc.rules) - 1; j >= 0; j-- {
			if sc.rules[j].matches(sub, isDir) {
				return !sc.rules[j].Negate
			}
		}
	}
	return false
}

// matches reports whether the rule matches a path relative to its scope
func (r *Rule) matches(rel string, isDir bool) bool {
	pattern := r.Pattern
	if !r.Anchored {
		pattern = "**/" + r.Pattern
	}

	// Direct match on the path itself. Directory-only patterns never match
	// plain files directly.
	if !r.DirOnly || isDir {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	// A match on an ancestor directory covers everything beneath it.
	// doublestar counts `a/**` as matching `a` itself, so test the proper
	// ancestors rather than appending "/**" to the pattern.
	for parent := rel; ; {
		idx := strings.LastIndex(parent, "/")
		if idx < 0 {
			return false
		}
		parent = parent[:idx]
		if ok, _ := doublestar.Match(pattern, parent); ok {
			return true
		}
	}
}

// pathWithin returns relPath rewritten relative to dir, and whether relPath
// is inside dir at all ("" dir contains everything).
func pathWithin(relPath, dir string) (string, bool) {
	if dir == "" {
		return relPath, true
	}
	if relPath == dir {
		return ".", true
	}
	if strings.HasPrefix(relPath, dir+"/") {
		return relPath[len(dir)+1:], true
	}
	return "", false
}

func depthOf(dir string) int {
	if dir == "" {
		return 0
	}
	return strings.Count(dir, "/") + 1
}
