package parser

// braceBlockEnd finds the last line of a brace-delimited body starting at or
// after the header that ends at byte offset from. Bodies terminated by ';'
// before any '{' (trait methods, interface members, declarations) end on the
// ';' line. The scanner skips string literals and comments so braces inside
// them do not unbalance the count; an unterminated body runs to end of file.
func braceBlockEnd(content string, lines []string, from int) int {
	i := from
	n := len(content)

	for i < n {
		switch content[i] {
		case '{':
			return lineOfOffset(content, matchBrace(content, i))
		case ';':
			return lineOfOffset(content, i)
		case '"', '\'', '`':
			i = skipString(content, i)
		case '/':
			i = skipComment(content, i)
		default:
			i++
		}
	}
	return lineOfOffset(content, from)
}

// matchBrace returns the offset of the '}' closing the '{' at open, or the
// last offset of content when unbalanced.
func matchBrace(content string, open int) int {
	depth := 0
	i := open
	n := len(content)

	for i < n {
		switch content[i] {
		case '{':
			depth++
			i++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
			i++
		case '"', '\'', '`':
			i = skipString(content, i)
		case '/':
			i = skipComment(content, i)
		default:
			i++
		}
	}
	return n - 1
}

// skipString advances past a quoted literal, honoring backslash escapes
func skipString(content string, start int) int {
	quote := content[start]
	i := start + 1
	for i < len(content) {
		switch content[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		default:
			// An unterminated single-line literal is likely a char
			// context like Rust lifetimes; bail at the line break.
			if content[i] == '\n' && quote == '\'' {
				return i
			}
			i++
		}
	}
	return i
}

// skipComment advances past a // or /* comment starting at i, or one byte
// when i is a bare slash.
func skipComment(content string, i int) int {
	n := len(content)
	if i+1 >= n {
		return i + 1
	}
	switch content[i+1] {
	case '/':
		for i < n && content[i] != '\n' {
			i++
		}
		return i
	case '*':
		i += 2
		for i+1 < n {
			if content[i] == '*' && content[i+1] == '/' {
				return i + 2
			}
			i++
		}
		return n
	default:
		return i + 1
	}
}
