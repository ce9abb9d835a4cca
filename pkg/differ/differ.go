package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/apidrift/pkg/records"
)

// Differ handles change detection between signatures.
type Differ interface {
	// Signatures compares a documented signature with an implemented one.
	Signatures(doc, code records.Signature) *SignatureChangeset
}

// differ is the default implementation of Differ.
type differ struct {
	ignoreFields map[string]bool
	typeAliases  bool
}

// New creates a Differ with default settings.
func New(opts ...Option) Differ {
	d := &differ{
		ignoreFields: make(map[string]bool),
		typeAliases:  true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Signatures compares parameters by name. Types, defaults and return types
// are only compared when both sides declare them.
func (d *differ) Signatures(doc, code records.Signature) *SignatureChangeset {
	cs := &SignatureChangeset{}

	codeByName := make(map[string]records.Parameter, len(code.Parameters))
	for _, p := range code.Parameters {
		if _, dup := codeByName[p.Name]; !dup {
			codeByName[p.Name] = p
		}
	}
	docByName := make(map[string]records.Parameter, len(doc.Parameters))
	for _, p := range doc.Parameters {
		if _, dup := docByName[p.Name]; !dup {
			docByName[p.Name] = p
		}
	}

	var sharedDocOrder []string
	for _, dp := range doc.Parameters {
		cp, ok := codeByName[dp.Name]
		if !ok {
			cs.Removed = append(cs.Removed, dp)
			continue
		}
		sharedDocOrder = append(sharedDocOrder, dp.Name)
		d.compareParam(cs, dp, cp)
	}

	var sharedCodeOrder []string
	for _, cp := range code.Parameters {
		if _, ok := docByName[cp.Name]; !ok {
			cs.Added = append(cs.Added, cp)
			continue
		}
		sharedCodeOrder = append(sharedCodeOrder, cp.Name)
	}

	if !d.ignoreFields["order"] && !sameOrder(sharedDocOrder, sharedCodeOrder) {
		cs.Reordered = true
	}

	if !d.ignoreFields["return_type"] && doc.ReturnType != "" && code.ReturnType != "" &&
		d.normalizeType(doc.ReturnType) != d.normalizeType(code.ReturnType) {
		cs.ReturnType = &FieldChange{
			Path:     "return_type",
			OldValue: doc.ReturnType,
			NewValue: code.ReturnType,
			Type:     ChangeTypeUpdate,
		}
	}

	return cs
}

func (d *differ) compareParam(cs *SignatureChangeset, dp, cp records.Parameter) {
	if !d.ignoreFields["type"] && dp.Typed() && cp.Typed() && d.normalizeType(dp.Type) != d.normalizeType(cp.Type) {
		cs.Types = append(cs.Types, FieldChange{
			Path:     "parameters." + dp.Name + ".type",
			OldValue: dp.Type,
			NewValue: cp.Type,
			Type:     ChangeTypeUpdate,
		})
	}
	if !d.ignoreFields["default"] && dp.Default != "" && cp.Default != "" && normalizeValue(dp.Default) != normalizeValue(cp.Default) {
		cs.Defaults = append(cs.Defaults, FieldChange{
			Path:     "parameters." + dp.Name + ".default",
			OldValue: dp.Default,
			NewValue: cp.Default,
			Type:     ChangeTypeUpdate,
		})
	}
	if !d.ignoreFields["variadic"] && dp.Variadic != cp.Variadic {
		cs.Variadic = append(cs.Variadic, FieldChange{
			Path:     "parameters." + dp.Name + ".variadic",
			OldValue: fmt.Sprintf("%v", dp.Variadic),
			NewValue: fmt.Sprintf("%v", cp.Variadic),
			Type:     ChangeTypeUpdate,
		})
	}
}

// typeAliases folds spellings that name the same type across languages.
var typeAliases = map[string]string{
	"boolean": "bool",
	"string":  "str",
	"integer": "int",
	"double":  "float",
	"void":    "none",
	"null":    "none",
	"nil":     "none",
}

func (d *differ) normalizeType(t string) string {
	t = strings.Join(strings.Fields(t), "")
	if !d.typeAliases {
		return t
	}
	lower := strings.ToLower(t)
	if alias, ok := typeAliases[lower]; ok {
		return alias
	}
	if lower == "none" {
		return "none"
	}
	return t
}

// valueAliases folds boolean and null literals spelled differently across
// languages. Quoted strings never reach it.
var valueAliases = map[string]string{
	"true":      "true",
	"false":     "false",
	"none":      "null",
	"null":      "null",
	"nil":       "null",
	"nullptr":   "null",
	"undefined": "null",
}

func normalizeValue(v string) string {
	v = strings.Join(strings.Fields(v), "")
	if alias, ok := valueAliases[strings.ToLower(v)]; ok {
		return alias
	}
	return strings.Trim(v, `"'`)
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Render formats both signatures as a unified diff, documentation first.
//
//	--- documentation
//	+++ code
//	-move_local_x(delta: float)
//	+move_local_x(delta: float, snap: bool = False) -> None
func Render(doc, code records.Record) string {
	docLine := doc.RenderSignature()
	codeLine := code.RenderSignature()

	var b strings.Builder
	b.WriteString("--- documentation\n")
	b.WriteString("+++ code\n")
	if docLine == codeLine {
		b.WriteString(" " + docLine + "\n")
		return b.String()
	}
	b.WriteString("-" + docLine + "\n")
	b.WriteString("+" + codeLine + "\n")
	return b.String()
}
