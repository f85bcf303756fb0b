// Package constant implements the module constant analyzer: it collects the
// top-level `let` bindings of a module, orders them topologically by their
// cross-references, detects circular dependencies, and evaluates each one
// with a restricted compile-time interpreter so the compiler can fold the
// results into the constant pool at zero runtime cost.
package constant

import (
	"fmt"
	"strings"

	"github.com/flux-lang/flux/ast"
	"github.com/flux-lang/flux/diag"
	"github.com/flux-lang/flux/object"
	"github.com/flux-lang/flux/token"
)

// binding is one module-level `let` statement pending evaluation.
type binding struct {
	name string
	expr ast.Expression
	span token.Span
}

// Module holds the analyzed, evaluated constants of a single `module` block
// (or the implicit top-level module), keyed by unqualified name.
type Module struct {
	Name   string
	Values map[string]object.Object
	Order  []string
}

// Analyzer runs module constant analysis against a qualified-name table
// shared across nested/imported modules (`Module.Name` -> value).
type Analyzer struct {
	Qualified map[string]object.Object
}

// NewAnalyzer returns an Analyzer with an empty qualified-name table.
func NewAnalyzer() *Analyzer {
	return &Analyzer{Qualified: make(map[string]object.Object)}
}

// Analyze collects, orders, and evaluates every top-level `let` statement in
// body, under the given qualified name prefix (empty for the root module).
// Evaluated values are both returned in the Module and inserted into the
// Analyzer's qualified table as "<prefix>.<name>" (or bare "<name>" when
// prefix is empty).
func (a *Analyzer) Analyze(name string, body []ast.Statement) (*Module, diag.Diagnostics) {
	bindings, order, ds := collect(body)
	if ds.HasErrors() {
		return nil, ds
	}

	deps := buildDependencyGraph(bindings)
	evalOrder, cycleErr := topoSort(name, order, deps)
	if cycleErr != nil {
		return nil, diag.Diagnostics{*cycleErr}
	}

	mod := &Module{Name: name, Values: make(map[string]object.Object), Order: evalOrder}
	var diags diag.Diagnostics

	for _, n := range evalOrder {
		b := bindings[n]
		val, err := a.eval(b.expr, mod.Values)
		if err != nil {
			diags = append(diags, *err)
			continue
		}
		mod.Values[n] = val
		a.Qualified[qualify(name, n)] = val
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return mod, diags
}

func qualify(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// collect gathers every top-level *ast.LetStatement into name->binding,
// preserving source order for stable diagnostics and deterministic fallback
// ordering among bindings with no dependency relationship.
func collect(body []ast.Statement) (map[string]binding, []string, diag.Diagnostics) {
	bindings := make(map[string]binding)
	var order []string
	var ds diag.Diagnostics

	for _, stmt := range body {
		let, ok := stmt.(*ast.LetStatement)
		if !ok {
			continue
		}
		if _, exists := bindings[let.Name.Value]; exists {
			ds = append(ds, diag.New(diag.CodeDuplicateGlobal,
				fmt.Sprintf("constant %q redeclared in this module", let.Name.Value), let.Span()))
			continue
		}
		bindings[let.Name.Value] = binding{name: let.Name.Value, expr: let.Value, span: let.Span()}
		order = append(order, let.Name.Value)
	}
	return bindings, order, ds
}

// buildDependencyGraph finds, for each binding, the set of other module
// constant names its initializer references.
func buildDependencyGraph(bindings map[string]binding) map[string][]string {
	deps := make(map[string][]string)
	for name, b := range bindings {
		seen := make(map[string]bool)
		ast.Inspect(b.expr, func(n ast.Node) bool {
			if id, ok := n.(*ast.Identifier); ok {
				if _, isLocal := bindings[id.Value]; isLocal && id.Value != name && !seen[id.Value] {
					seen[id.Value] = true
					deps[name] = append(deps[name], id.Value)
				}
			}
			return true
		})
	}
	return deps
}

// topoSort orders names via Kahn's algorithm over the dependency graph deps
// (name -> names it depends on). On a cycle, it returns a diagnostic naming
// the module and the offending path.
func topoSort(moduleName string, order []string, deps map[string][]string) ([]string, *diag.Diagnostic) {
	indegree := make(map[string]int, len(order))
	dependents := make(map[string][]string)
	for _, n := range order {
		indegree[n] = 0
	}
	for n, ds := range deps {
		indegree[n] = len(ds)
		for _, d := range ds {
			dependents[d] = append(dependents[d], n)
		}
	}

	var queue []string
	for _, n := range order {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	var result []string
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		result = append(result, n)
		for _, dep := range dependents[n] {
			indegree[dep]--
			if indegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(result) != len(order) {
		cycle := findCycle(order, deps)
		return nil, &diag.Diagnostic{
			Code:     diag.CodeCircularConstant,
			Severity: diag.Error,
			Message:  fmt.Sprintf("Circular dependency in module '%s': %s", moduleName, strings.Join(cycle, " → ")),
		}
	}
	return result, nil
}

// findCycle does a DFS to recover one concrete cycle path for the diagnostic
// message, once topoSort has already established that a cycle exists.
func findCycle(order []string, deps map[string][]string) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(order))
	var path []string
	var cycle []string

	var visit func(n string) bool
	visit = func(n string) bool {
		color[n] = gray
		path = append(path, n)
		for _, d := range deps[n] {
			switch color[d] {
			case white:
				if visit(d) {
					return true
				}
			case gray:
				idx := 0
				for i, p := range path {
					if p == d {
						idx = i
						break
					}
				}
				cycle = append(append([]string{}, path[idx:]...), d)
				return true
			}
		}
		path = path[:len(path)-1]
		color[n] = black
		return false
	}

	for _, n := range order {
		if color[n] == white {
			if visit(n) {
				return cycle
			}
		}
	}
	return order
}
