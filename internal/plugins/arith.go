package plugins

import (
	"regexp"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

// arithHit is one suspect arithmetic expression inside a function body.
type arithHit struct {
	line     int
	op       string
	left     string
	right    string
	division bool
}

// binOp matches `left OP right` (including compound assigns) between two
// operands, where an operand is an identifier path, field access, call, or
// numeric literal.
var binOp = regexp.MustCompile(`([\w\.\)\]]+)\s*([+\-*/])=?\s*([\w\.\(\[]+)`)

// uncheckedArithmetic returns the arithmetic expressions in fn that none of
// the safe-shape exclusions cover. Each exclusion is a named predicate so it
// can be tested on its own.
func uncheckedArithmetic(fn *rustsrc.Function) []arithHit {
	if !strings.ContainsAny(fn.Body, "+-*/") {
		return nil
	}
	var hits []arithHit
	seenLine := map[int]bool{}
	visitBodyLines(fn, func(line int, text string) {
		if seenLine[line] {
			return
		}
		if lineUsesCheckedArithmetic(text) ||
			lineIsStringConcat(text) ||
			lineIsLengthArithmetic(text) ||
			lineHasWideningCast(text) {
			return
		}
		for _, m := range binOp.FindAllStringSubmatch(text, -1) {
			left, op, right := m[1], m[2], m[3]
			if !isArithmeticContext(text, op) {
				continue
			}
			// Constant folding and off-by-one shapes are low risk.
			if operandIsLiteral(left) || operandIsLiteral(right) {
				continue
			}
			hits = append(hits, arithHit{
				line:     line,
				op:       op,
				left:     left,
				right:    right,
				division: op == "/",
			})
			seenLine[line] = true
			break
		}
	})
	return hits
}

// lineUsesCheckedArithmetic: checked_add / saturating_sub / wrapping_mul
// families already handle overflow.
func lineUsesCheckedArithmetic(line string) bool {
	return strings.Contains(line, "checked_") ||
		strings.Contains(line, "saturating_") ||
		strings.Contains(line, "wrapping_") ||
		strings.Contains(line, "overflowing_")
}

// lineIsStringConcat: `+` on strings or format plumbing is not numeric.
func lineIsStringConcat(line string) bool {
	return strings.Contains(line, "to_string") ||
		strings.Contains(line, "to_owned") ||
		strings.Contains(line, "String") ||
		strings.Contains(line, "format!") ||
		strings.Contains(line, "as_bytes") ||
		strings.Contains(line, "&str")
}

// lineIsLengthArithmetic: index/length math is bounded by the collection.
func lineIsLengthArithmetic(line string) bool {
	return strings.Contains(line, ".len()") || strings.Contains(line, "as usize")
}

// lineHasWideningCast: operands widened before the operation cannot overflow
// the wider type.
func lineHasWideningCast(line string) bool {
	return strings.Contains(line, "as u128") ||
		strings.Contains(line, "as i128") ||
		strings.Contains(line, "as u256") ||
		strings.Contains(line, "as f64")
}

func operandIsLiteral(operand string) bool {
	if operand == "" {
		return false
	}
	c := operand[0]
	return c >= '0' && c <= '9'
}

// isArithmeticContext filters regex matches that are not arithmetic at all:
// `->` returns, `*` derefs, `/` path-ish text, range `..` artifacts.
func isArithmeticContext(line, op string) bool {
	switch op {
	case "-":
		if strings.Contains(line, "->") && strings.Count(line, "-") == strings.Count(line, "->") {
			return false
		}
	case "*":
		if strings.Contains(line, "&*") || strings.Contains(line, "*const") || strings.Contains(line, "*mut") {
			return false
		}
	case "/":
		if strings.Contains(line, "//") || strings.Contains(line, "*/") {
			return false
		}
	}
	return true
}

// guardedBefore reports whether a comparison guard mentioning either operand
// appears in the body before the given line. Used to skip the classic
// `if a >= b { a - b }` shape.
func guardedBefore(fn *rustsrc.Function, hit arithHit) bool {
	guard := false
	leftRoot := rootIdent(hit.left)
	rightRoot := rootIdent(hit.right)
	visitBodyLines(fn, func(line int, text string) {
		if line >= hit.line || guard {
			return
		}
		if !strings.Contains(text, "if ") && !strings.Contains(text, "assert") &&
			!strings.Contains(text, "require!") && !strings.Contains(text, "ensure!") {
			return
		}
		if !strings.ContainsAny(text, "<>") && !strings.Contains(text, "==") {
			return
		}
		if (leftRoot != "" && strings.Contains(text, leftRoot)) ||
			(rightRoot != "" && strings.Contains(text, rightRoot)) {
			guard = true
		}
	})
	return guard
}

func rootIdent(operand string) string {
	operand = strings.TrimLeft(operand, "(&*")
	if i := strings.IndexAny(operand, ".(["); i > 0 {
		operand = operand[:i]
	}
	if operand == "self" {
		return ""
	}
	return operand
}

// isPackFunction: serialization helpers do bounded offset math.
func isPackFunction(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "pack") ||
		strings.Contains(lower, "serialize") ||
		strings.Contains(lower, "deserialize")
}
