package analysis

import (
	"regexp"
	"strings"

	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/rustsrc"
)

// FuncNode records, for one function, who it calls, who calls it, and which
// security checks its body performs. Scope is strictly intra-file; calls to
// names not defined in the file stay in Calls but resolve to no node.
type FuncNode struct {
	Calls   []string
	Callers []string

	HasSignerCheck     bool
	HasOwnerCheck      bool
	HasInputValidation bool
}

// CallGraph is an adjacency map keyed by function name. Cycles are allowed;
// lookups are depth-limited so they always terminate.
type CallGraph map[string]*FuncNode

var callSite = regexp.MustCompile(`\b([a-z_][a-z0-9_]*)\s*\(`)

// Rust keywords and macro-ish names that look like call sites to the regex.
var notCalls = map[string]bool{
	"if": true, "while": true, "for": true, "match": true, "loop": true,
	"return": true, "fn": true, "let": true, "move": true, "unsafe": true,
	"assert": true, "panic": true, "vec": true, "format": true, "println": true,
	"require": true, "ensure": true, "some": true, "ok": true, "err": true,
}

// BuildCallGraph derives the intra-file call graph from a parsed file.
func BuildCallGraph(file *rustsrc.File) CallGraph {
	graph := CallGraph{}
	for i := range file.Functions {
		fn := &file.Functions[i]
		node := &FuncNode{
			HasSignerCheck:     hasSignerCheck(fn.Body),
			HasOwnerCheck:      hasOwnerCheck(fn.Body),
			HasInputValidation: hasInputValidation(fn.Body),
		}
		seen := map[string]bool{}
		for _, m := range callSite.FindAllStringSubmatch(fn.Body, -1) {
			callee := m[1]
			if callee == fn.Name || notCalls[callee] || seen[callee] {
				continue
			}
			seen[callee] = true
			node.Calls = append(node.Calls, callee)
		}
		graph[fn.Name] = node
	}

	for caller, node := range graph {
		for _, callee := range node.Calls {
			if target, ok := graph[callee]; ok {
				target.Callers = append(target.Callers, caller)
			}
		}
	}
	return graph
}

func hasSignerCheck(body string) bool {
	return strings.Contains(body, "is_signer") ||
		strings.Contains(body, "has_signer") ||
		strings.Contains(body, "Signer<")
}

func hasOwnerCheck(body string) bool {
	return strings.Contains(body, "owner") &&
		(strings.Contains(body, "program_id") || strings.Contains(body, "key") ||
			strings.Contains(body, "caller"))
}

func hasInputValidation(body string) bool {
	for _, p := range []string{"assert!", "assert_eq!", "assert_ne!", "require!", "ensure!", "addr_validate"} {
		if strings.Contains(body, p) {
			return true
		}
	}
	return false
}

func (n *FuncNode) hasCheck(kind model.CheckCategory) bool {
	switch kind {
	case model.CheckSigner:
		return n.HasSignerCheck
	case model.CheckOwner:
		return n.HasOwnerCheck
	case model.CheckInputValidation:
		return n.HasInputValidation
	}
	return false
}

// maxCallerDepth bounds the transitive caller walk so cyclic call
// relationships cannot recurse without end.
const maxCallerDepth = 5

// CallerHasCheck reports whether some caller of target, within this file,
// performs the given check before reaching target (directly or through a
// chain of callers).
func CallerHasCheck(graph CallGraph, target string, kind model.CheckCategory) bool {
	if kind == model.CheckNone {
		return false
	}
	return callerHasCheck(graph, target, kind, map[string]bool{}, 0)
}

func callerHasCheck(graph CallGraph, target string, kind model.CheckCategory, visited map[string]bool, depth int) bool {
	if depth >= maxCallerDepth {
		return false
	}
	node, ok := graph[target]
	if !ok {
		return false
	}
	for _, caller := range node.Callers {
		if caller == target || visited[caller] {
			continue
		}
		callerNode, ok := graph[caller]
		if !ok {
			continue
		}
		if callerNode.hasCheck(kind) {
			return true
		}
		visited[caller] = true
		if callerHasCheck(graph, caller, kind, visited, depth+1) {
			return true
		}
	}
	return false
}

// EveryCallerHasCheck is the suppression predicate: target has at least one
// caller, and every direct caller performs the check, either in its own body
// or by itself being covered by all of its callers. A function with zero
// recorded callers always returns false; it may be an entry point.
func EveryCallerHasCheck(graph CallGraph, target string, kind model.CheckCategory) bool {
	if kind == model.CheckNone {
		return false
	}
	return everyCallerHasCheck(graph, target, kind, map[string]bool{target: true}, 0)
}

func everyCallerHasCheck(graph CallGraph, target string, kind model.CheckCategory, visited map[string]bool, depth int) bool {
	if depth >= maxCallerDepth {
		return false
	}
	node, ok := graph[target]
	if !ok || len(node.Callers) == 0 {
		return false
	}
	for _, caller := range node.Callers {
		callerNode, ok := graph[caller]
		if !ok {
			return false
		}
		if callerNode.hasCheck(kind) {
			continue
		}
		if visited[caller] {
			// A cycle without the check anywhere on it is uncovered.
			return false
		}
		visited[caller] = true
		if !everyCallerHasCheck(graph, caller, kind, visited, depth+1) {
			return false
		}
	}
	return true
}
