//go:build cgo

package collector

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/huangsam/codetrend/schema"
)

// simpleStatements count as one logical line each.
var simpleStatements = map[string]bool{
	"expression_statement":    true,
	"return_statement":        true,
	"pass_statement":          true,
	"break_statement":         true,
	"continue_statement":      true,
	"import_statement":        true,
	"import_from_statement":   true,
	"future_import_statement": true,
	"raise_statement":         true,
	"global_statement":        true,
	"nonlocal_statement":      true,
	"delete_statement":        true,
	"assert_statement":        true,
	"print_statement":         true,
	"exec_statement":          true,
	"type_alias_statement":    true,
}

// clauseHeaders are the compound statement lines ending in a colon, plus decorators.
var clauseHeaders = map[string]bool{
	"if_statement":        true,
	"elif_clause":         true,
	"else_clause":         true,
	"for_statement":       true,
	"while_statement":     true,
	"try_statement":       true,
	"except_clause":       true,
	"except_group_clause": true,
	"finally_clause":      true,
	"with_statement":      true,
	"function_definition": true,
	"class_definition":    true,
	"match_statement":     true,
	"case_clause":         true,
	"decorator":           true,
}

type rawCounts struct {
	loc, lloc, sloc, comments, multi, blank, singleComments int
}

func (r rawCounts) metrics() schema.Metrics {
	return schema.Metrics{
		"loc":             float64(r.loc),
		"lloc":            float64(r.lloc),
		"sloc":            float64(r.sloc),
		"comments":        float64(r.comments),
		"multi":           float64(r.multi),
		"blank":           float64(r.blank),
		"single_comments": float64(r.singleComments),
	}
}

// analyzeRaw counts physical, logical, source, comment, blank and string lines.
// Files with syntax errors are still counted on a best-effort tree.
func analyzeRaw(ctx context.Context, src []byte) (schema.Entry, error) {
	lines := splitLines(string(src))
	if len(lines) == 0 {
		return schema.NewFileEntry(rawCounts{}.metrics(), nil), nil
	}
	tree, err := parsePython(ctx, src)
	if err != nil {
		return schema.Entry{}, err
	}
	defer tree.Close()

	counts := countRaw(tree.RootNode(), src, lines)
	return schema.NewFileEntry(counts.metrics(), nil), nil
}

func countRaw(root *sitter.Node, src []byte, lines []string) rawCounts {
	counts := rawCounts{loc: len(lines)}
	multiline := make([]bool, len(lines))
	docstring := make([]bool, len(lines))

	walk(root, func(n *sitter.Node) bool {
		switch {
		case n.Type() == "comment":
			counts.comments++
		case n.Type() == "string":
			start, end := int(n.StartPoint().Row), int(n.EndPoint().Row)
			if end > start {
				for row := start; row <= end && row < len(lines); row++ {
					multiline[row] = true
				}
			}
			return false
		case simpleStatements[n.Type()]:
			counts.lloc++
			if row, ok := lineString(n, src, lines); ok {
				docstring[row] = true
			}
		case clauseHeaders[n.Type()]:
			counts.lloc++
		}
		return true
	})

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case multiline[i]:
			if trimmed == "" {
				counts.blank++
			} else {
				counts.multi++
			}
		case docstring[i]:
			counts.singleComments++
		case trimmed == "":
			counts.blank++
		case strings.HasPrefix(trimmed, "#"):
			counts.singleComments++
		}
	}
	counts.sloc = max(counts.loc-counts.blank-counts.multi-counts.singleComments, 0)
	return counts
}

// lineString reports the row of a statement consisting of a single one-line
// string that is alone on its line.
func lineString(stmt *sitter.Node, src []byte, lines []string) (int, bool) {
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
		return 0, false
	}
	str := stmt.NamedChild(0)
	if str.Type() != "string" || str.StartPoint().Row != str.EndPoint().Row {
		return 0, false
	}
	row := int(str.StartPoint().Row)
	if row >= len(lines) || strings.TrimSpace(lines[row]) != str.Content(src) {
		return 0, false
	}
	return row, true
}

// splitLines splits source into physical lines. A trailing newline does not
// start a new line and carriage returns are dropped.
func splitLines(src string) []string {
	if src == "" {
		return nil
	}
	lines := strings.Split(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
