package treesitter

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/agentstation/apidrift/pkg/records"
	"github.com/agentstation/apidrift/pkg/sources"
)

const pythonQuery = `(function_definition) @func`

// Python extracts public functions and methods from Python source files.
type Python struct {
	// Private includes names with a leading underscore.
	Private bool
}

// NewPython creates a Python symbol source.
func NewPython() *Python {
	return &Python{}
}

// Language implements sources.CodeSymbolSource.
func (p *Python) Language() sources.Language {
	return sources.LanguagePython
}

// Extensions implements sources.CodeSymbolSource.
func (p *Python) Extensions() []string {
	return []string{".py", ".pyi"}
}

// Symbols implements sources.CodeSymbolSource. Names are qualified as
// module.func or module.Class.method; functions nested in functions are
// skipped.
func (p *Python) Symbols(ctx context.Context, path string, content []byte) ([]records.RawCodeSymbol, error) {
	module := moduleName(path)
	return extract(ctx, python.GetLanguage(), pythonQuery, "python", path, content, func(_ string, node *sitter.Node, src []byte) (records.RawCodeSymbol, bool) {
		return p.function(module, node, src)
	})
}

func (p *Python) function(module string, node *sitter.Node, src []byte) (records.RawCodeSymbol, bool) {
	name := fieldContent(node, "name", src)
	if name == "" || !p.Private && private(name) {
		return records.RawCodeSymbol{}, false
	}

	var classes []string
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		switch parent.Type() {
		case "function_definition", "lambda":
			return records.RawCodeSymbol{}, false
		case "class_definition":
			cls := fieldContent(parent, "name", src)
			if !p.Private && private(cls) {
				return records.RawCodeSymbol{}, false
			}
			classes = append([]string{cls}, classes...)
		}
	}

	parts := append([]string{module}, classes...)
	sym := records.RawCodeSymbol{
		QualifiedName: strings.Join(append(parts, name), "."),
		ReturnType:    fieldContent(node, "return_type", src),
		Docstring:     pyDocstring(node, src),
		Line:          line(node),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		sym.Parameters = pyParams(params, src, len(classes) > 0)
	}
	return sym, true
}

// private reports a single leading underscore; dunder names are public.
func private(name string) bool {
	return strings.HasPrefix(name, "_") && !(strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"))
}

// moduleName derives the dotted module path from a file path relative to
// the source root: a/util.py is a.util and a/__init__.py is a. Absolute
// paths carry no root, so only the file itself names the module.
func moduleName(path string) string {
	if filepath.IsAbs(path) {
		path = filepath.Base(path)
	}
	path = strings.TrimSuffix(filepath.ToSlash(filepath.Clean(path)), filepath.Ext(path))

	var parts []string
	for _, part := range strings.Split(path, "/") {
		if part != "" && part != "." && part != ".." {
			parts = append(parts, part)
		}
	}
	if len(parts) > 1 && parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}

// pyParams converts a parameters node. The receiver of a method (self or
// cls) is dropped, as are the bare * and / markers.
func pyParams(list *sitter.Node, src []byte, method bool) []records.RawParameter {
	var out []records.RawParameter
	for i := 0; i < int(list.NamedChildCount()); i++ {
		child := list.NamedChild(i)
		var p records.RawParameter
		switch child.Type() {
		case "identifier":
			p.Name = child.Content(src)
		case "typed_parameter":
			p.Type = fieldContent(child, "type", src)
			if inner := child.NamedChild(0); inner != nil {
				p.Name, p.Variadic = splatName(inner, src)
			}
		case "default_parameter":
			p.Name = fieldContent(child, "name", src)
			p.Default = fieldContent(child, "value", src)
		case "typed_default_parameter":
			p.Name = fieldContent(child, "name", src)
			p.Type = fieldContent(child, "type", src)
			p.Default = fieldContent(child, "value", src)
		case "list_splat_pattern", "dictionary_splat_pattern":
			p.Name, p.Variadic = splatName(child, src)
		default:
			continue
		}
		if method && len(out) == 0 && i == 0 && (p.Name == "self" || p.Name == "cls") {
			continue
		}
		out = append(out, p)
	}
	return out
}

func splatName(node *sitter.Node, src []byte) (string, bool) {
	switch node.Type() {
	case "list_splat_pattern", "dictionary_splat_pattern":
		return strings.TrimLeft(node.Content(src), "*"), true
	}
	return node.Content(src), false
}

// pyDocstring returns the string literal opening a function body.
func pyDocstring(node *sitter.Node, src []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return unquote(str.Content(src))
}

func unquote(s string) string {
	s = strings.TrimLeft(s, "rRuUbBfF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			s = s[len(q) : len(s)-len(q)]
			break
		}
	}
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}
