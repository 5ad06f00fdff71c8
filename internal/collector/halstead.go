//go:build cgo

package collector

import (
	"context"
	"math"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/huangsam/codetrend/schema"
)

var binaryOperators = map[string]string{
	"+":  "Add",
	"-":  "Sub",
	"*":  "Mult",
	"@":  "MatMult",
	"/":  "Div",
	"%":  "Mod",
	"**": "Pow",
	"<<": "LShift",
	">>": "RShift",
	"|":  "BitOr",
	"^":  "BitXor",
	"&":  "BitAnd",
	"//": "FloorDiv",
}

var unaryOperators = map[string]string{
	"~": "Invert",
	"+": "UAdd",
	"-": "USub",
}

var comparisonOperators = map[string]string{
	"==":     "Eq",
	"!=":     "NotEq",
	"<>":     "NotEq",
	"<":      "Lt",
	"<=":     "LtE",
	">":      "Gt",
	">=":     "GtE",
	"is":     "Is",
	"is not": "IsNot",
	"in":     "In",
	"not in": "NotIn",
}

// halsteadCounts tracks distinct and total operators and operands.
type halsteadCounts struct {
	operatorsSeen map[string]struct{}
	operandsSeen  map[string]struct{}
	operators     int
	operands      int
}

func newHalsteadCounts() *halsteadCounts {
	return &halsteadCounts{
		operatorsSeen: make(map[string]struct{}),
		operandsSeen:  make(map[string]struct{}),
	}
}

func (h *halsteadCounts) merge(other *halsteadCounts) {
	for k := range other.operatorsSeen {
		h.operatorsSeen[k] = struct{}{}
	}
	for k := range other.operandsSeen {
		h.operandsSeen[k] = struct{}{}
	}
	h.operators += other.operators
	h.operands += other.operands
}

func (h *halsteadCounts) vocabulary() int {
	return len(h.operatorsSeen) + len(h.operandsSeen)
}

func (h *halsteadCounts) length() int {
	return h.operators + h.operands
}

func (h *halsteadCounts) volume() float64 {
	vocab := h.vocabulary()
	if vocab == 0 {
		return 0
	}
	return float64(h.length()) * math.Log2(float64(vocab))
}

func (h *halsteadCounts) difficulty() float64 {
	h2 := len(h.operandsSeen)
	if h2 == 0 {
		return 0
	}
	return float64(len(h.operatorsSeen)) * float64(h.operands) / (2 * float64(h2))
}

func (h *halsteadCounts) metrics() schema.Metrics {
	return schema.Metrics{
		"h1":         float64(len(h.operatorsSeen)),
		"h2":         float64(len(h.operandsSeen)),
		"N1":         float64(h.operators),
		"N2":         float64(h.operands),
		"vocabulary": float64(h.vocabulary()),
		"length":     float64(h.length()),
		"volume":     h.volume(),
		"difficulty": h.difficulty(),
		"effort":     h.difficulty() * h.volume(),
	}
}

// halsteadVisitor counts operators and operands. Operands are scoped to the
// enclosing function, so the same name in two functions counts twice.
// A flat visitor ignores function scopes and walks definitions like any other node.
type halsteadVisitor struct {
	src       []byte
	scope     string
	flat      bool
	counts    *halsteadCounts
	functions []halsteadFunc
}

type halsteadFunc struct {
	name    string
	lineno  int
	endline int
	counts  *halsteadCounts
}

func newHalsteadVisitor(src []byte, scope string, flat bool) *halsteadVisitor {
	return &halsteadVisitor{src: src, scope: scope, flat: flat, counts: newHalsteadCounts()}
}

func (v *halsteadVisitor) operator(name string) {
	v.counts.operators++
	v.counts.operatorsSeen[name] = struct{}{}
}

func (v *halsteadVisitor) operand(text string) {
	v.counts.operands++
	v.counts.operandsSeen[v.scope+"\x00"+text] = struct{}{}
}

func (v *halsteadVisitor) visit(n *sitter.Node) {
	switch n.Type() {
	case "decorated_definition":
		if !v.flat {
			if def := definition(n); def != nil {
				v.visit(def)
			}
			return
		}
	case "function_definition":
		if !v.flat {
			v.visitFunction(n)
			return
		}
	case "class_definition":
		if !v.flat {
			for _, stmt := range namedChildren(n.ChildByFieldName("body")) {
				v.visit(stmt)
			}
			return
		}
	case "augmented_assignment":
		if op := n.ChildByFieldName("operator"); op != nil {
			v.operator(binaryOperators[strings.TrimSuffix(op.Type(), "=")])
		}
		v.operand(v.operandText(n.ChildByFieldName("left")))
		v.operand(v.operandText(n.ChildByFieldName("right")))
	case "binary_operator":
		if op := n.ChildByFieldName("operator"); op != nil {
			v.operator(binaryOperators[op.Type()])
		}
		v.operand(v.operandText(n.ChildByFieldName("left")))
		v.operand(v.operandText(n.ChildByFieldName("right")))
	case "unary_operator":
		if op := n.ChildByFieldName("operator"); op != nil {
			v.operator(unaryOperators[op.Type()])
		}
		v.operand(v.operandText(n.ChildByFieldName("argument")))
	case "not_operator":
		v.operator("Not")
		v.operand(v.operandText(n.ChildByFieldName("argument")))
	case "boolean_operator":
		v.visitBoolean(n)
	case "comparison_operator":
		for _, c := range children(n) {
			if c.IsNamed() {
				v.operand(v.operandText(c))
			} else if name, ok := comparisonOperators[c.Type()]; ok {
				v.operator(name)
			}
		}
	}
	for _, c := range children(n) {
		v.visit(c)
	}
}

// visitBoolean counts a chain of the same boolean operator once, with every
// value of the chain as an operand.
func (v *halsteadVisitor) visitBoolean(n *sitter.Node) {
	op := boolOp(n)
	if parent := n.Parent(); parent != nil && parent.Type() == "boolean_operator" && boolOp(parent) == op {
		if left := parent.ChildByFieldName("left"); left != nil && sameNode(left, n) {
			return
		}
	}
	var values []*sitter.Node
	cur := n
	for cur.Type() == "boolean_operator" && boolOp(cur) == op {
		values = append(values, cur.ChildByFieldName("right"))
		cur = cur.ChildByFieldName("left")
	}
	values = append(values, cur)

	if op == "and" {
		v.operator("And")
	} else {
		v.operator("Or")
	}
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			v.operand(values[i].Content(v.src))
		}
	}
}

func boolOp(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	return ""
}

func (v *halsteadVisitor) visitFunction(n *sitter.Node) {
	name := nodeName(n, v.src)
	fv := newHalsteadVisitor(v.src, name, false)
	for _, stmt := range namedChildren(n.ChildByFieldName("body")) {
		fv.visit(stmt)
	}
	fn := halsteadFunc{name: name, counts: fv.counts}
	fn.lineno, fn.endline = lineSpan(n)
	v.functions = append(v.functions, fn)
	v.counts.merge(fv.counts)
}

// operandText names an operand: identifiers and literals by their text,
// attributes by the attribute name, anything else by its source.
func (v *halsteadVisitor) operandText(n *sitter.Node) string {
	n = unwrapParens(n)
	if n == nil {
		return ""
	}
	if n.Type() == "attribute" {
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(v.src)
		}
	}
	return n.Content(v.src)
}

// analyzeHalstead reports the module totals plus one detail per function.
func analyzeHalstead(ctx context.Context, src []byte) (schema.Entry, error) {
	tree, err := parseStrict(ctx, src)
	if err != nil {
		return schema.Entry{}, err
	}
	defer tree.Close()

	module := newHalsteadVisitor(src, "", false)
	for _, stmt := range namedChildren(tree.RootNode()) {
		module.visit(stmt)
	}

	detailed := make(map[string]schema.Metrics, len(module.functions))
	for _, fn := range module.functions {
		m := fn.counts.metrics()
		m["lineno"] = float64(fn.lineno)
		m["endline"] = float64(fn.endline)
		detailed[fn.name] = m
	}
	return schema.NewFileEntry(module.counts.metrics(), detailed), nil
}

func sameNode(a, b *sitter.Node) bool {
	return a.Type() == b.Type() && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
