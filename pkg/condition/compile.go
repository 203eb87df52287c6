package condition

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Program is a compiled condition: either the "else" sentinel (always
// true) or an AST plus the reference expressions it binds by index.
type Program struct {
	AlwaysTrue bool
	Refs       []string
	ast        node
}

// refPattern matches a reference expression exactly as the resolver
// grammar defines it, so it can be located and substituted inside a
// condition string before that string is parsed as an expression.
var refPattern = regexp.MustCompile(
	`\$(?:input(?:\.[A-Za-z_][A-Za-z0-9_]*)*` +
		`|nodes\.[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*` +
		`|state\.[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)`,
)

func placeholderName(i int) string { return fmt.Sprintf("__ref%d__", i) }

func refIndex(ident string) (int, bool) {
	if !strings.HasPrefix(ident, "__ref") || !strings.HasSuffix(ident, "__") {
		return 0, false
	}

	mid := strings.TrimSuffix(strings.TrimPrefix(ident, "__ref"), "__")

	n, err := strconv.Atoi(mid)
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}

// Compile parses a router case condition string. The literal
// string "else" always compiles to an always-true program. Any reference
// expression is pulled out and substituted with a bound placeholder
// identifier before the remainder is parsed against the restricted
// boolean/comparison/arithmetic grammar; any construct outside that
// grammar (calls, attribute access, subscripting, assignment) fails to
// parse and is rejected here, at compile time.
func Compile(expr string) (*Program, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "else" {
		return &Program{AlwaysTrue: true}, nil
	}

	var refs []string

	rewritten := refPattern.ReplaceAllStringFunc(trimmed, func(m string) string {
		name := placeholderName(len(refs))
		refs = append(refs, m)

		return name
	})

	toks, err := lex(rewritten)
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}

	p := &parser{toks: toks, refs: refs}

	ast, err := p.parseExpr()
	if err != nil {
		return nil, fmt.Errorf("condition: %w", err)
	}

	if !p.atEnd() {
		return nil, fmt.Errorf("condition: unexpected trailing token %q", p.peek().lit)
	}

	return &Program{Refs: refs, ast: ast}, nil
}
