// Package normalizer converts raw documentation entries and code symbols
// into canonical records.
//
// Normalization is total: garbage input never panics and never returns an
// error. Entries without a derivable identity are skipped and counted;
// entries with a missing part are emitted and counted as partial.
package normalizer

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agentstation/apidrift/pkg/records"
)

// Stats counts what happened to the raw input.
type Stats struct {
	Total   int `json:"total" yaml:"total"`
	Emitted int `json:"emitted" yaml:"emitted"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Partial int `json:"partial" yaml:"partial"`
}

// Add returns the sum of two stats.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Total:   s.Total + o.Total,
		Emitted: s.Emitted + o.Emitted,
		Skipped: s.Skipped + o.Skipped,
		Partial: s.Partial + o.Partial,
	}
}

// Result is the output of a normalization pass.
type Result struct {
	Records []records.Record
	Stats   Stats
}

// Docs returns the documentation records, in input order.
func (r Result) Docs() []records.Record {
	docs, _ := records.Split(r.Records)
	return docs
}

// Code returns the code records, in input order.
func (r Result) Code() []records.Record {
	_, code := records.Split(r.Records)
	return code
}

// Normalizer holds normalization settings. It is safe for concurrent use.
type Normalizer struct {
	opts *options
}

// New creates a Normalizer.
func New(opts ...Option) (*Normalizer, error) {
	o, err := defaultOptions().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &Normalizer{opts: o}, nil
}

// Fingerprint identifies the settings that shape a Result. Two normalizers
// with equal fingerprints produce equal results for the same input.
func (n *Normalizer) Fingerprint() string {
	receivers := make([]string, 0, len(n.opts.receivers))
	for name, ok := range n.opts.receivers {
		if ok {
			receivers = append(receivers, name)
		}
	}
	sort.Strings(receivers)
	return fmt.Sprintf("r=%s;d=%d;c=%d", strings.Join(receivers, ","), n.opts.maxDescription, n.opts.maxCodeBlock)
}

var defaultNormalizer = &Normalizer{opts: defaultOptions()}

// Normalize normalizes both sides with default settings.
func Normalize(docs []records.RawDocEntry, code []records.RawCodeSymbol) Result {
	return defaultNormalizer.Normalize(docs, code)
}

// NormalizeDocs normalizes documentation entries with default settings.
func NormalizeDocs(docs []records.RawDocEntry) Result {
	return defaultNormalizer.NormalizeDocs(docs)
}

// NormalizeCode normalizes code symbols with default settings.
func NormalizeCode(code []records.RawCodeSymbol) Result {
	return defaultNormalizer.NormalizeCode(code)
}

// Normalize normalizes documentation entries followed by code symbols.
func (n *Normalizer) Normalize(docs []records.RawDocEntry, code []records.RawCodeSymbol) Result {
	d := n.NormalizeDocs(docs)
	c := n.NormalizeCode(code)
	out := make([]records.Record, 0, len(d.Records)+len(c.Records))
	out = append(out, d.Records...)
	out = append(out, c.Records...)
	return Result{Records: out, Stats: d.Stats.Add(c.Stats)}
}

// NormalizeDocs normalizes documentation entries.
func (n *Normalizer) NormalizeDocs(docs []records.RawDocEntry) Result {
	res := Result{Records: make([]records.Record, 0, len(docs))}
	for _, entry := range docs {
		res.Stats.Total++
		rec, partial, ok := n.docRecord(entry)
		if !ok {
			res.Stats.Skipped++
			continue
		}
		res.Stats.Emitted++
		if partial {
			res.Stats.Partial++
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

// NormalizeCode normalizes code symbols.
func (n *Normalizer) NormalizeCode(code []records.RawCodeSymbol) Result {
	res := Result{Records: make([]records.Record, 0, len(code))}
	for _, sym := range code {
		res.Stats.Total++
		rec, partial, ok := n.codeRecord(sym)
		if !ok {
			res.Stats.Skipped++
			continue
		}
		res.Stats.Emitted++
		if partial {
			res.Stats.Partial++
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func (n *Normalizer) docRecord(entry records.RawDocEntry) (rec records.Record, partial, ok bool) {
	hint := cleanHint(entry.IdentityHint)
	block := entry.CodeBlock
	if n.opts.maxCodeBlock > 0 && len(block) > n.opts.maxCodeBlock {
		block = block[:n.opts.maxCodeBlock]
	}

	parsed, found := parseSignature(block, hint, n.opts.receivers)

	identity := hint
	if identity == "" && found {
		identity = parsed.name
	}
	if identity == "" {
		identity = headingIdentity(entry.Text)
	}
	if identity == "" {
		return records.Record{}, false, false
	}

	sig := records.Signature{}
	switch {
	case strings.TrimSpace(entry.CodeBlock) == "":
		partial = true
	case !found || parsed.fragment:
		partial = true
	default:
		sig = parsed.signature
	}

	rec = records.Record{
		Identity:    identity,
		Signature:   sig,
		Description: n.truncate(firstParagraph(stripHeadings(entry.Text))),
		Origin:      records.OriginDocumentation,
		Location:    records.Location{Source: entry.SourceURL, Anchor: entry.Anchor},
	}
	return rec, partial, true
}

func (n *Normalizer) codeRecord(sym records.RawCodeSymbol) (rec records.Record, partial, ok bool) {
	identity := strings.TrimSpace(sym.QualifiedName)
	if identity == "" {
		return records.Record{}, false, false
	}

	sig := records.Signature{
		ReturnType: strings.TrimSpace(sym.ReturnType),
		Parsed:     true,
	}
	for i, rp := range sym.Parameters {
		p := records.Parameter{
			Name:     strings.TrimSpace(rp.Name),
			Type:     strings.TrimSpace(rp.Type),
			Default:  strings.TrimSpace(rp.Default),
			Variadic: rp.Variadic,
		}
		for _, prefix := range []string{"**", "*", "..."} {
			if strings.HasPrefix(p.Name, prefix) {
				p.Name = strings.TrimPrefix(p.Name, prefix)
				p.Variadic = true
				break
			}
		}
		if p.Name == "" {
			partial = true
			continue
		}
		if i == 0 && n.opts.receivers[p.Name] && p.Type == "" && !p.Variadic {
			continue
		}
		sig.Parameters = append(sig.Parameters, p)
	}

	loc := records.Location{Source: sym.FilePath}
	if sym.Line > 0 {
		loc.Anchor = fmt.Sprintf("L%d", sym.Line)
	}

	rec = records.Record{
		Identity:    identity,
		Signature:   sig,
		Description: n.truncate(firstParagraph(sym.Docstring)),
		Origin:      records.OriginCode,
		Location:    loc,
	}
	return rec, partial, true
}

func (n *Normalizer) truncate(s string) string {
	if n.opts.maxDescription <= 0 || utf8.RuneCountInString(s) <= n.opts.maxDescription {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n.opts.maxDescription]))
}

// cleanHint trims a hint and drops a trailing argument list: `rotate()` → `rotate`.
func cleanHint(hint string) string {
	hint = strings.TrimSpace(hint)
	hint = strings.Trim(hint, "`")
	if i := strings.IndexByte(hint, '('); i > 0 {
		hint = hint[:i]
	}
	return strings.TrimSpace(hint)
}

// firstParagraph returns the first blank-line separated paragraph with
// internal whitespace collapsed.
func firstParagraph(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, para := range strings.Split(text, "\n\n") {
		if p := strings.Join(strings.Fields(para), " "); p != "" {
			return p
		}
	}
	return ""
}

// stripHeadings removes markdown heading lines from prose.
func stripHeadings(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			kept = append(kept, "")
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
