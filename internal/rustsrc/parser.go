// Package rustsrc parses Rust contract source into a lightweight syntax
// tree: function items with attributes, parameters, spans, and body text.
// It is a heuristic line/brace parser, not a full grammar; detectors only
// need function boundaries and span-anchored text.
package rustsrc

import (
	"fmt"
	"regexp"
	"strings"
)

// Param is one function parameter, split at the first top-level colon.
type Param struct {
	Name string
	Type string
}

// Function is a function item: a free fn or an impl method.
type Function struct {
	Name       string
	ImplType   string // enclosing impl type, "" for free functions
	Visibility string // "pub", "pub(crate)", or ""
	Attrs      []string
	Params     []Param
	Signature  string // header text up to the parameter close paren
	Body       string // text between the body braces, exclusive
	StartLine  int    // 1-based line of the fn name
	StartCol   int    // 1-based column of the fn name
	BodyLine   int    // line of the opening body brace
	EndLine    int    // line of the closing body brace
}

// LineOfBodyOffset maps a byte offset into Body to its 1-based file line.
func (fn *Function) LineOfBodyOffset(off int) int {
	if off < 0 || off > len(fn.Body) {
		return fn.StartLine
	}
	return fn.BodyLine + strings.Count(fn.Body[:off], "\n")
}

// File is the parsed form of one source file plus its original text.
type File struct {
	Path      string
	Source    string
	Functions []Function

	lines []string
}

// Line returns the raw source line at a 1-based index, "" out of range.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lines) {
		return ""
	}
	return f.lines[n-1]
}

// SnippetAt returns the trimmed line at n.
func (f *File) SnippetAt(n int) string { return strings.TrimSpace(f.Line(n)) }

// HasAttr reports whether the function carries an attribute containing the
// given fragment, e.g. "test", "ink(message)", "private".
func (fn *Function) HasAttr(fragment string) bool {
	for _, a := range fn.Attrs {
		if strings.Contains(strings.ReplaceAll(a, " ", ""), fragment) {
			return true
		}
	}
	return false
}

// IsTest reports whether the function is test code. Attributes cover
// #[test], #[cfg(test)], and #[tokio::test]. Name matching requires a
// test_ prefix or _test suffix; a bare "test" substring is not enough
// (get_latest_price, contest_bid).
func (fn *Function) IsTest() bool {
	if fn.HasAttr("test") {
		return true
	}
	return strings.HasPrefix(fn.Name, "test_") || strings.HasSuffix(fn.Name, "_test")
}

var fnHeader = regexp.MustCompile(`(?m)(pub(?:\s*\([^)]*\))?\s+)?(?:default\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?(?:extern\s+"[^"]*"\s+)?fn\s+([A-Za-z_][A-Za-z0-9_]*)`)

var implHeader = regexp.MustCompile(`(?m)^\s*impl(?:\s*<[^>]*>)?\s+(?:[A-Za-z_][\w:<>, ']*\s+for\s+)?([A-Za-z_][A-Za-z0-9_]*)`)

// Parse builds the syntax tree for one file. Parsing is pure; a file that
// cannot be parsed returns a non-nil error and no tree.
func Parse(path, source string) (*File, error) {
	masked := maskText(source)
	offsets := lineOffsets(source)

	file := &File{
		Path:   path,
		Source: source,
		lines:  strings.Split(source, "\n"),
	}

	implRanges := findImplRanges(masked)

	for _, m := range fnHeader.FindAllStringSubmatchIndex(masked, -1) {
		nameStart, nameEnd := m[4], m[5]
		name := source[nameStart:nameEnd]

		parenOpen := strings.IndexByte(masked[nameEnd:], '(')
		if parenOpen < 0 {
			continue
		}
		parenOpen += nameEnd
		parenClose, ok := matchDelim(masked, parenOpen, '(', ')')
		if !ok {
			return nil, fmt.Errorf("%s: unbalanced parentheses in signature of %q", path, name)
		}

		bodyOpen := strings.IndexByte(masked[parenClose:], '{')
		if bodyOpen < 0 {
			// Trait method declaration without a body; terminated by ';'.
			if semi := strings.IndexByte(masked[parenClose:], ';'); semi >= 0 {
				continue
			}
			return nil, fmt.Errorf("%s: missing body for function %q", path, name)
		}
		// A ';' before the '{' means this header has no body (trait decl).
		if semi := strings.IndexByte(masked[parenClose:], ';'); semi >= 0 && semi < bodyOpen {
			continue
		}
		bodyOpen += parenClose
		bodyClose, ok := matchDelim(masked, bodyOpen, '{', '}')
		if !ok {
			return nil, fmt.Errorf("%s: unbalanced braces in function %q", path, name)
		}

		startLine, startCol := lineCol(offsets, nameStart)
		bodyLine, _ := lineCol(offsets, bodyOpen)
		endLine, _ := lineCol(offsets, bodyClose)

		visibility := ""
		if m[2] >= 0 {
			visibility = strings.TrimSpace(source[m[2]:m[3]])
		}

		fn := Function{
			Name:       name,
			Visibility: visibility,
			Params:     splitParams(source[parenOpen+1:parenClose], masked[parenOpen+1:parenClose]),
			Signature:  strings.TrimSpace(source[m[0]:parenClose+1]),
			Body:       source[bodyOpen+1 : bodyClose],
			StartLine:  startLine,
			StartCol:   startCol,
			BodyLine:   bodyLine,
			EndLine:    endLine,
		}
		fn.Attrs = attrsAbove(file.lines, startLine)
		for _, r := range implRanges {
			if nameStart > r.open && nameStart < r.close {
				fn.ImplType = r.name
			}
		}
		file.Functions = append(file.Functions, fn)
	}

	return file, nil
}

type implRange struct {
	name        string
	open, close int
}

func findImplRanges(masked string) []implRange {
	var out []implRange
	for _, m := range implHeader.FindAllStringSubmatchIndex(masked, -1) {
		open := strings.IndexByte(masked[m[1]:], '{')
		if open < 0 {
			continue
		}
		open += m[1]
		close, ok := matchDelim(masked, open, '{', '}')
		if !ok {
			continue
		}
		out = append(out, implRange{name: masked[m[2]:m[3]], open: open, close: close})
	}
	return out
}

// maskText replaces the contents of comments and string literals with
// spaces, preserving offsets, so structural scanning never trips on a brace
// inside a string or comment.
func maskText(src string) string {
	out := []byte(src)
	i := 0
	n := len(src)
	for i < n {
		switch {
		case strings.HasPrefix(src[i:], "//"):
			for i < n && src[i] != '\n' {
				out[i] = ' '
				i++
			}
		case strings.HasPrefix(src[i:], "/*"):
			depth := 0
			for i < n {
				if strings.HasPrefix(src[i:], "/*") {
					depth++
					out[i], out[i+1] = ' ', ' '
					i += 2
					continue
				}
				if strings.HasPrefix(src[i:], "*/") {
					depth--
					out[i], out[i+1] = ' ', ' '
					i += 2
					if depth == 0 {
						break
					}
					continue
				}
				if src[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
		case src[i] == '"':
			i++
			for i < n {
				if src[i] == '\\' && i+1 < n {
					out[i] = ' '
					if src[i+1] != '\n' {
						out[i+1] = ' '
					}
					i += 2
					continue
				}
				if src[i] == '"' {
					i++
					break
				}
				if src[i] != '\n' {
					out[i] = ' '
				}
				i++
			}
		case src[i] == '\'':
			// Char literal, not a lifetime: closing quote within a few bytes.
			if end := closingCharQuote(src, i); end > 0 {
				for j := i + 1; j < end; j++ {
					out[j] = ' '
				}
				i = end + 1
			} else {
				i++
			}
		default:
			i++
		}
	}
	return string(out)
}

func closingCharQuote(src string, start int) int {
	limit := start + 5
	if limit > len(src)-1 {
		limit = len(src) - 1
	}
	for j := start + 1; j <= limit; j++ {
		if src[j] == '\'' {
			return j
		}
		if src[j] == '\n' {
			return -1
		}
	}
	return -1
}

// matchDelim returns the offset of the delimiter closing the one at open.
func matchDelim(masked string, open int, openCh, closeCh byte) (int, bool) {
	depth := 0
	for i := open; i < len(masked); i++ {
		switch masked[i] {
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// splitParams splits a parameter list on top-level commas using the masked
// text for depth tracking and the original text for values.
func splitParams(raw, masked string) []Param {
	var out []Param
	depth := 0
	start := 0
	flush := func(end int) {
		piece := strings.TrimSpace(raw[start:end])
		if piece == "" {
			return
		}
		p := Param{Name: piece}
		if colon := strings.Index(masked[start:end], ":"); colon >= 0 {
			p.Name = strings.TrimSpace(raw[start : start+colon])
			p.Type = strings.TrimSpace(raw[start+colon+1 : end])
		}
		out = append(out, p)
	}
	for i := 0; i < len(masked); i++ {
		switch masked[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(raw))
	return out
}

// attrsAbove collects the contiguous attribute lines directly above a
// function header, skipping doc comments.
func attrsAbove(lines []string, fnLine int) []string {
	var attrs []string
	for n := fnLine - 1; n >= 1; n-- {
		trimmed := strings.TrimSpace(lines[n-1])
		switch {
		case strings.HasPrefix(trimmed, "#["):
			attrs = append([]string{trimmed}, attrs...)
		case strings.HasPrefix(trimmed, "///") || strings.HasPrefix(trimmed, "//"):
			continue
		default:
			return attrs
		}
	}
	return attrs
}

func lineOffsets(src string) []int {
	offsets := []int{0}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

func lineCol(offsets []int, pos int) (line, col int) {
	lo, hi := 0, len(offsets)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if offsets[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, pos - offsets[lo] + 1
}
