//go:build cgo

package collector

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/huangsam/codetrend/schema"
)

var comprehensions = map[string]bool{
	"list_comprehension":       true,
	"set_comprehension":        true,
	"dictionary_comprehension": true,
	"generator_expression":     true,
}

// funcBlock is the complexity of one function or method.
type funcBlock struct {
	name       string
	classname  string
	isMethod   bool
	lineno     int
	endline    int
	complexity int
	closures   []funcBlock
}

func (f funcBlock) fullname() string {
	if f.classname != "" {
		return f.classname + "." + f.name
	}
	return f.name
}

func (f funcBlock) details() schema.Metrics {
	closures := make([]any, 0, len(f.closures))
	for _, c := range f.closures {
		closures = append(closures, c.name)
	}
	var classname any
	if f.classname != "" {
		classname = f.classname
	}
	return schema.Metrics{
		"name":       f.name,
		"is_method":  f.isMethod,
		"classname":  classname,
		"closures":   closures,
		"complexity": float64(f.complexity),
		"loc":        float64(f.endline - f.lineno),
	}
}

// classBlock is the complexity of one class.
type classBlock struct {
	name    string
	lineno  int
	endline int
	methods []funcBlock
	inner   []classBlock
	real    int
}

// complexity is the mean method complexity, plus one when there is more than
// one method. A class without methods reports its real complexity.
func (c classBlock) complexity() int {
	if len(c.methods) == 0 {
		return c.real
	}
	avg := c.real / len(c.methods)
	if len(c.methods) > 1 {
		avg++
	}
	return avg
}

func (c classBlock) details() schema.Metrics {
	inner := make([]any, 0, len(c.inner))
	for _, ic := range c.inner {
		inner = append(inner, ic.name)
	}
	return schema.Metrics{
		"name":            c.name,
		"inner_classes":   inner,
		"real_complexity": float64(c.real),
		"complexity":      float64(c.complexity()),
		"loc":             float64(c.endline - c.lineno),
	}
}

// ccVisitor accumulates decision points. Functions and classes met during the
// walk are measured separately and not added to the enclosing complexity.
type ccVisitor struct {
	src        []byte
	complexity int
	isMethod   bool
	classname  string
	functions  []funcBlock
	classes    []classBlock
}

func (v *ccVisitor) visit(n *sitter.Node) {
	switch n.Type() {
	case "decorated_definition":
		if def := definition(n); def != nil {
			v.visit(def)
		}
		return
	case "function_definition":
		v.visitFunction(n)
		return
	case "class_definition":
		v.visitClass(n)
		return
	case "if_statement":
		v.complexity += 1 + countChildren(n, "elif_clause")
	case "for_statement", "while_statement":
		v.complexity++
		if n.ChildByFieldName("alternative") != nil {
			v.complexity++
		}
	case "try_statement":
		v.complexity += countChildren(n, "except_clause", "except_group_clause")
		v.complexity += countChildren(n, "else_clause")
	case "match_statement":
		v.complexity += matchBranches(n, v.src)
	case "conditional_expression", "boolean_operator":
		v.complexity++
	default:
		if comprehensions[n.Type()] {
			v.complexity += countChildren(n, "for_in_clause", "if_clause")
			// Only the element expression is walked, not the clauses
			if body := n.ChildByFieldName("body"); body != nil {
				v.visit(body)
			}
			return
		}
	}
	for _, c := range children(n) {
		v.visit(c)
	}
}

func (v *ccVisitor) visitFunction(n *sitter.Node) {
	fn := funcBlock{
		name:       nodeName(n, v.src),
		classname:  v.classname,
		isMethod:   v.isMethod,
		complexity: 1,
	}
	fn.lineno, fn.endline = lineSpan(n)
	for _, stmt := range namedChildren(n.ChildByFieldName("body")) {
		body := &ccVisitor{src: v.src}
		body.visit(stmt)
		fn.closures = append(fn.closures, body.functions...)
		fn.complexity += body.complexity
	}
	v.functions = append(v.functions, fn)
}

func (v *ccVisitor) visitClass(n *sitter.Node) {
	cls := classBlock{name: nodeName(n, v.src), real: 1}
	cls.lineno, cls.endline = lineSpan(n)
	for _, stmt := range namedChildren(n.ChildByFieldName("body")) {
		body := &ccVisitor{src: v.src, isMethod: true, classname: cls.name}
		body.visit(stmt)
		funcs := 0
		for _, m := range body.functions {
			funcs += m.complexity
			cls.endline = max(cls.endline, m.endline)
		}
		cls.methods = append(cls.methods, body.functions...)
		cls.inner = append(cls.inner, body.classes...)
		cls.real += body.complexity + funcs
	}
	v.classes = append(v.classes, cls)
}

// matchBranches counts the cases of a match statement, minus one when a
// case is irrefutable.
func matchBranches(n *sitter.Node, src []byte) int {
	body := n.ChildByFieldName("body")
	if body == nil {
		return 0
	}
	cases, wildcard := 0, false
	for _, c := range namedChildren(body) {
		if c.Type() != "case_clause" {
			continue
		}
		cases++
		if isWildcardCase(c, src) {
			wildcard = true
		}
	}
	if wildcard {
		return max(cases-1, 0)
	}
	return cases
}

// isWildcardCase reports whether a case matches anything: "case _" or a bare capture name.
func isWildcardCase(c *sitter.Node, src []byte) bool {
	var patterns []*sitter.Node
	for _, child := range namedChildren(c) {
		if child.Type() == "case_pattern" {
			patterns = append(patterns, child)
		}
	}
	if len(patterns) != 1 {
		return false
	}
	p := patterns[0]
	if p.Content(src) == "_" {
		return true
	}
	if p.NamedChildCount() != 1 {
		return false
	}
	inner := p.NamedChild(0)
	return inner.Type() == "dotted_name" && inner.NamedChildCount() == 1
}

// nodeName returns the text of the name field of a definition.
func nodeName(n *sitter.Node, src []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return name.Content(src)
	}
	return "<unknown>"
}

// analyzeCyclomatic measures the cyclomatic complexity of every function and
// class. The file total is the sum over all of them.
func analyzeCyclomatic(ctx context.Context, src []byte) (schema.Entry, error) {
	tree, err := parseStrict(ctx, src)
	if err != nil {
		return schema.Entry{}, err
	}
	defer tree.Close()

	module := &ccVisitor{src: src}
	for _, stmt := range namedChildren(tree.RootNode()) {
		module.visit(stmt)
	}

	functions := module.functions
	for _, cls := range module.classes {
		functions = append(functions, cls.methods...)
	}

	detailed := make(map[string]schema.Metrics, len(functions)+len(module.classes))
	total := 0
	for _, cls := range module.classes {
		detailed[cls.name] = cls.details()
		total += cls.complexity()
	}
	for _, fn := range functions {
		detailed[fn.fullname()] = fn.details()
		total += fn.complexity
	}
	return schema.NewFileEntry(schema.Metrics{"complexity": float64(total)}, detailed), nil
}
