package treesitter

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/agentstation/apidrift/pkg/records"
	"github.com/agentstation/apidrift/pkg/sources"
)

const goQuery = `
	(package_clause (package_identifier) @package)
	(function_declaration) @func
	(method_declaration) @func
`

// Go extracts exported functions and methods from Go source files.
type Go struct {
	// Unexported includes unexported functions and methods.
	Unexported bool
}

// NewGo creates a Go symbol source.
func NewGo() *Go {
	return &Go{}
}

// Language implements sources.CodeSymbolSource.
func (g *Go) Language() sources.Language {
	return sources.LanguageGo
}

// Extensions implements sources.CodeSymbolSource.
func (g *Go) Extensions() []string {
	return []string{".go"}
}

// Symbols implements sources.CodeSymbolSource. Names are qualified as
// package.Func or package.Type.Method.
func (g *Go) Symbols(ctx context.Context, path string, content []byte) ([]records.RawCodeSymbol, error) {
	if strings.HasSuffix(path, "_test.go") {
		return nil, nil
	}
	pkg := ""
	return extract(ctx, golang.GetLanguage(), goQuery, "go", path, content, func(capture string, node *sitter.Node, src []byte) (records.RawCodeSymbol, bool) {
		if capture == "package" {
			pkg = node.Content(src)
			return records.RawCodeSymbol{}, false
		}
		return g.function(pkg, node, src)
	})
}

func (g *Go) function(pkg string, node *sitter.Node, src []byte) (records.RawCodeSymbol, bool) {
	name := fieldContent(node, "name", src)
	if name == "" || !g.Unexported && !exported(name) {
		return records.RawCodeSymbol{}, false
	}

	qualified := name
	if node.Type() == "method_declaration" {
		recv := receiverType(node.ChildByFieldName("receiver"), src)
		if recv == "" || !g.Unexported && !exported(recv) {
			return records.RawCodeSymbol{}, false
		}
		qualified = recv + "." + name
	}
	if pkg != "" {
		qualified = pkg + "." + qualified
	}

	sym := records.RawCodeSymbol{
		QualifiedName: qualified,
		ReturnType:    fieldContent(node, "result", src),
		Docstring:     goDocComment(node, src),
		Line:          line(node),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		sym.Parameters = goParams(params, src)
	}
	return sym, true
}

func exported(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// receiverType returns the bare receiver type name: `(s *Server[T])` gives Server.
func receiverType(recv *sitter.Node, src []byte) string {
	if recv == nil {
		return ""
	}
	decl := firstChildOfType(recv, "parameter_declaration")
	if decl == nil {
		return ""
	}
	typ := fieldContent(decl, "type", src)
	typ = strings.TrimLeft(typ, "*")
	if i := strings.IndexByte(typ, '['); i >= 0 {
		typ = typ[:i]
	}
	return strings.TrimSpace(typ)
}

// goParams expands grouped declarations: `a, b int` gives two parameters.
func goParams(list *sitter.Node, src []byte) []records.RawParameter {
	var out []records.RawParameter
	for i := 0; i < int(list.NamedChildCount()); i++ {
		decl := list.NamedChild(i)
		variadic := decl.Type() == "variadic_parameter_declaration"
		if decl.Type() != "parameter_declaration" && !variadic {
			continue
		}
		typ := fieldContent(decl, "type", src)

		var names []string
		for j := 0; j < int(decl.NamedChildCount()); j++ {
			if child := decl.NamedChild(j); child.Type() == "identifier" {
				names = append(names, child.Content(src))
			}
		}
		if len(names) == 0 {
			// Unnamed parameters keep their type; the name is positional.
			names = []string{"_"}
		}
		for _, n := range names {
			out = append(out, records.RawParameter{Name: n, Type: typ, Variadic: variadic})
		}
	}
	return out
}

// goDocComment joins the // comments directly above node.
func goDocComment(node *sitter.Node, src []byte) string {
	var lines []string
	current := node
	for {
		prev := current.PrevSibling()
		if prev == nil || prev.Type() != "comment" || current.StartPoint().Row-prev.EndPoint().Row > 1 {
			break
		}
		lines = append([]string{prev.Content(src)}, lines...)
		current = prev
	}
	for i, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimPrefix(l, "//")
		l = strings.TrimPrefix(l, "/*")
		l = strings.TrimSuffix(l, "*/")
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
