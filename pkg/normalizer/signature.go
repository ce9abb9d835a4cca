package normalizer

import (
	"regexp"
	"strings"

	"github.com/agentstation/apidrift/pkg/records"
)

var (
	// callRe finds a possibly qualified name followed by an opening paren.
	callRe = regexp.MustCompile(`([A-Za-z_$][\w$]*(?:(?:\.|::|#)[A-Za-z_$][\w$]*)*)\s*\(`)

	identRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

	// headingRe matches a markdown or underlined heading token.
	headingRe = regexp.MustCompile(`^#{1,6}\s*` + "`?" + `([A-Za-z_$][\w$]*(?:(?:\.|::|#)[A-Za-z_$][\w$]*)*)`)
)

// keywords are names that precede a paren without being a declaration.
var keywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "return": true,
	"func": true, "function": true, "def": true, "catch": true, "elif": true,
	"with": true, "lambda": true, "super": true, "print": true, "sizeof": true,
	"typeof": true, "assert": true, "not": true, "and": true, "or": true,
}

// cModifiers are stripped from the prefix of a `ret name(args)` declaration.
var cModifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "static": true,
	"virtual": true, "inline": true, "const": true, "final": true,
	"abstract": true, "extern": true, "override": true, "async": true,
	"export": true, "synchronized": true, "constexpr": true,
}

type form int

const (
	formPlain form = iota // name(args)
	formArrow             // name(args) -> ret, def name(args) -> ret:
	formGo                // func name(args) ret
	formColon             // name(args): ret
	formCLike             // ret name(args)
)

// parsedSignature is the result of scanning a code block.
type parsedSignature struct {
	name      string
	signature records.Signature
	// fragment is true when a declaration was found but its argument list
	// could not be parsed.
	fragment bool
}

// parseSignature extracts a best-effort signature from a code block. When
// hint is non-empty, a declaration whose last name segment matches the
// hint's last segment is preferred over the first declaration found.
func parseSignature(block, hint string, receivers map[string]bool) (parsedSignature, bool) {
	if strings.TrimSpace(block) == "" {
		return parsedSignature{}, false
	}

	var candidates []parsedSignature
	want := records.LastSegment(hint)
	for _, loc := range callRe.FindAllStringSubmatchIndex(block, -1) {
		name := block[loc[2]:loc[3]]
		if keywords[name] {
			continue
		}
		prefix := linePrefix(block, loc[0])
		if isCallSite(prefix) {
			continue
		}
		args, rest, ok := balanced(block, loc[1])
		if !ok {
			continue
		}
		candidates = append(candidates, buildSignature(name, prefix, args, rest, receivers))
	}
	if len(candidates) == 0 {
		return parsedSignature{}, false
	}

	// Prefer a parsed declaration of the hinted name, then any parsed
	// declaration, then the hinted fragment, then the first fragment.
	best, bestRank := 0, 4
	for i, c := range candidates {
		rank := 3
		matches := want != "" && records.LastSegment(c.name) == want
		switch {
		case matches && !c.fragment:
			rank = 0
		case !c.fragment:
			rank = 1
		case matches:
			rank = 2
		}
		if rank < bestRank {
			best, bestRank = i, rank
		}
	}
	return candidates[best], true
}

// buildSignature determines the declaration form and parses its parts.
func buildSignature(name, prefix, args, rest string, receivers map[string]bool) parsedSignature {
	f := formPlain
	trimmedPrefix := strings.TrimSpace(prefix)
	fields := strings.Fields(trimmedPrefix)
	tail := strings.TrimLeft(rest, " \t")
	switch {
	case len(fields) > 0 && fields[len(fields)-1] == "def":
		f = formArrow
	case len(fields) > 0 && fields[0] == "func":
		f = formGo
	case strings.HasPrefix(tail, "->"):
		f = formArrow
	case strings.HasPrefix(tail, ":") && !strings.HasPrefix(tail, "::"):
		f = formColon
	case len(fields) > 0 && fields[len(fields)-1] != "function":
		f = formCLike
	}

	sig := records.Signature{Parsed: true}
	switch f {
	case formArrow:
		if strings.HasPrefix(tail, "->") {
			sig.ReturnType = cleanReturn(tail[2:])
		}
	case formColon:
		sig.ReturnType = cleanReturn(tail[1:])
	case formGo:
		sig.ReturnType = cleanReturn(tail)
	case formCLike:
		sig.ReturnType = cReturn(fields)
	}

	params, ok := parseParams(args, f == formCLike, f == formGo, receivers)
	if !ok {
		return parsedSignature{name: name, signature: records.Signature{}, fragment: true}
	}
	sig.Parameters = params
	return parsedSignature{name: name, signature: sig}
}

// parseParams splits an argument list on top-level commas and parses each
// argument. It reports false when any argument is not a declaration.
func parseParams(args string, typeFirst, goStyle bool, receivers map[string]bool) ([]records.Parameter, bool) {
	parts := splitTopLevel(args, ',')
	params := make([]records.Parameter, 0, len(parts))
	for i, raw := range parts {
		raw = strings.TrimSpace(raw)
		if raw == "" || raw == "*" || raw == "/" {
			continue
		}
		p, ok := parseParam(raw, typeFirst)
		if !ok {
			return nil, false
		}
		if i == 0 && receivers[p.Name] && p.Type == "" {
			continue
		}
		params = append(params, p)
	}
	if goStyle {
		// `x, y int` declares both x and y as int.
		for i := len(params) - 2; i >= 0; i-- {
			if params[i].Type == "" && params[i+1].Type != "" && !params[i].Variadic {
				params[i].Type = params[i+1].Type
			}
		}
	}
	if len(params) == 0 {
		return nil, true
	}
	return params, true
}

func parseParam(raw string, typeFirst bool) (records.Parameter, bool) {
	var p records.Parameter

	if idx := indexTopLevel(raw, '='); idx >= 0 {
		p.Default = strings.TrimSpace(raw[idx+1:])
		raw = strings.TrimSpace(raw[:idx])
	}

	switch {
	case strings.HasPrefix(raw, "**"):
		p.Variadic = true
		raw = raw[2:]
	case strings.HasPrefix(raw, "*"):
		p.Variadic = true
		raw = raw[1:]
	case strings.HasPrefix(raw, "..."):
		p.Variadic = true
		raw = raw[3:]
	}
	raw = strings.TrimSpace(raw)

	if idx := indexTopLevel(raw, ':'); idx >= 0 {
		p.Name = strings.TrimSpace(raw[:idx])
		p.Type = strings.TrimSpace(raw[idx+1:])
	} else if fields := strings.Fields(raw); len(fields) > 1 {
		if typeFirst {
			name := fields[len(fields)-1]
			typ := strings.Join(fields[:len(fields)-1], " ")
			for len(name) > 0 && (name[0] == '*' || name[0] == '&') {
				typ += string(name[0])
				name = name[1:]
			}
			p.Name, p.Type = name, typ
		} else {
			p.Name = fields[0]
			p.Type = strings.Join(fields[1:], " ")
		}
	} else {
		p.Name = raw
	}

	if strings.HasPrefix(p.Type, "...") {
		p.Variadic = true
		p.Type = strings.TrimPrefix(p.Type, "...")
	}
	p.Name = strings.TrimSuffix(p.Name, "?")
	if !identRe.MatchString(p.Name) {
		return records.Parameter{}, false
	}
	return p, true
}

// balanced returns the text between the paren opened just before start and
// its matching close, plus the remainder of that line.
func balanced(s string, start int) (inner, rest string, ok bool) {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				rest = s[i+1:]
				if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
					rest = rest[:nl]
				}
				return s[start:i], rest, true
			}
		}
	}
	return "", "", false
}

// splitTopLevel splits s on sep outside of brackets and quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, last := 0, 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'' || c == '`':
			quote = c
		case c == '(' || c == '[' || c == '{' || c == '<':
			depth++
		case (c == ')' || c == ']' || c == '}' || c == '>') && depth > 0:
			depth--
		case c == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// indexTopLevel returns the first index of c outside brackets, or -1.
func indexTopLevel(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case c:
			if depth == 0 {
				if c == ':' && i+1 < len(s) && s[i+1] == ':' {
					i++
					continue
				}
				return i
			}
		}
	}
	return -1
}

func linePrefix(s string, pos int) string {
	start := strings.LastIndexByte(s[:pos], '\n') + 1
	return s[start:pos]
}

// isCallSite reports whether the text before a name marks it as a call
// rather than a declaration, e.g. `x = foo(` or `return foo(`.
func isCallSite(prefix string) bool {
	p := strings.TrimSpace(prefix)
	if p == "" {
		return false
	}
	if strings.HasPrefix(p, "#") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, ">>>") {
		return true
	}
	switch p[len(p)-1] {
	case '=', '(', ',', '.', '+', '-', '!', '|':
		return true
	}
	fields := strings.Fields(p)
	switch fields[len(fields)-1] {
	case "new", "return", "await", "yield", "class", "struct", "interface", "throw", "raise":
		return true
	}
	return false
}

func cleanReturn(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "{")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ";")
	s = strings.TrimSuffix(s, ":")
	return strings.TrimSpace(s)
}

func cReturn(prefixFields []string) string {
	kept := make([]string, 0, len(prefixFields))
	for _, f := range prefixFields {
		if !cModifiers[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// headingIdentity returns the first heading-like token in prose text.
func headingIdentity(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if m := headingRe.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	// Fall back to a leading call-like token: "rotate(angle) rotates the node".
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if loc := callRe.FindStringSubmatchIndex(line); loc != nil && loc[0] == 0 && !keywords[line[loc[2]:loc[3]]] {
			return line[loc[2]:loc[3]]
		}
		break
	}
	return ""
}
