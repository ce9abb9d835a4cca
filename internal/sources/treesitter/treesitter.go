// Package treesitter implements code symbol sources for Go and Python on
// top of tree-sitter grammars.
package treesitter

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/records"
)

// visitor turns one query capture into a symbol; ok is false to skip it.
type visitor func(capture string, node *sitter.Node, src []byte) (records.RawCodeSymbol, bool)

// extract parses src and runs query over it, calling visit per capture.
func extract(ctx context.Context, lang *sitter.Language, query, format, path string, src []byte, visit visitor) ([]records.RawCodeSymbol, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewParseError(format, path, "failed to parse", err)
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(query), lang)
	if err != nil {
		return nil, errors.NewParseError(format, path, "invalid query", err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	var out []records.RawCodeSymbol
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			sym, ok := visit(q.CaptureNameForId(c.Index), c.Node, src)
			if !ok {
				continue
			}
			sym.FilePath = path
			out = append(out, sym)
		}
	}
	return out, nil
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// fieldContent returns the trimmed content of a named field, or "".
func fieldContent(node *sitter.Node, field string, src []byte) string {
	if child := node.ChildByFieldName(field); child != nil {
		return strings.TrimSpace(child.Content(src))
	}
	return ""
}

// firstChildOfType returns the first named child with type typ.
func firstChildOfType(node *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}
