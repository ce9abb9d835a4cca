package records

import (
	"strings"
	"unicode"
)

// nameSeparators split a qualified identity into module/class segments.
var nameSeparators = []string{".", "::", "#", "/", ":"}

// LastSegment returns the part of a qualified name after the last
// `.`, `::`, `#`, `/` or `:` separator.
func LastSegment(name string) string {
	name = strings.TrimSpace(name)
	cut := -1
	for _, sep := range nameSeparators {
		if i := strings.LastIndex(name, sep); i >= 0 && i+len(sep) > cut {
			cut = i + len(sep)
		}
	}
	if cut < 0 {
		return name
	}
	return name[cut:]
}

// NormalizeName reduces an identity to its fallback matching key: the last
// segment, camelCase split into words, lowercased, with `_`, `-` and spaces
// collapsed into a single `_`.
//
//	Node2D.moveLocalX  -> move_local_x
//	net::HTTPServer    -> http_server
//	Vector2#length     -> length
func NormalizeName(name string) string {
	seg := []rune(LastSegment(name))
	var b strings.Builder
	for i, r := range seg {
		if unicode.IsUpper(r) && i > 0 {
			prev := seg[i-1]
			nextLower := i+1 < len(seg) && unicode.IsLower(seg[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteRune('_')
			}
		}
		switch {
		case r == '-' || r == ' ' || r == '\t':
			b.WriteRune('_')
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}

	// collapse runs of underscores
	var out strings.Builder
	lastUnderscore := false
	for _, r := range b.String() {
		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}
		out.WriteRune(r)
	}
	return strings.Trim(out.String(), "_")
}
