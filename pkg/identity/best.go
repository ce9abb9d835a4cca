package identity

import (
	"github.com/agentstation/apidrift/pkg/records"
)

// BestPair picks the doc/code pair a group is classified on: the pair with
// the highest parameter-name overlap, ties broken by the doc record with the
// longest description, then the code record with the most typed parameters,
// then input order. For a one-sided group the missing side is nil and the
// other side is BestOf its records.
func BestPair(g Group) (doc, code *records.Record) {
	switch {
	case !g.HasDocs() && !g.HasCode():
		return nil, nil
	case !g.HasCode():
		return BestOf(g.DocRecords), nil
	case !g.HasDocs():
		return nil, BestOf(g.CodeRecords)
	}

	bi, bj := 0, 0
	best := pairScore(g.DocRecords[0], g.CodeRecords[0])
	for i, d := range g.DocRecords {
		for j, c := range g.CodeRecords {
			if s := pairScore(d, c); s.beats(best) {
				best, bi, bj = s, i, j
			}
		}
	}
	return g.DocRecords[bi].Ptr(), g.CodeRecords[bj].Ptr()
}

// BestOf returns the record with the fullest signature: most typed
// parameters, then most parameters, then a parsed signature, then input
// order. It returns nil for an empty slice.
func BestOf(recs []records.Record) *records.Record {
	if len(recs) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(recs); i++ {
		if fuller(recs[i].Signature, recs[best].Signature) {
			best = i
		}
	}
	return recs[best].Ptr()
}

func fuller(a, b records.Signature) bool {
	if at, bt := a.TypedCount(), b.TypedCount(); at != bt {
		return at > bt
	}
	if len(a.Parameters) != len(b.Parameters) {
		return len(a.Parameters) > len(b.Parameters)
	}
	return a.Parsed && !b.Parsed
}

type score struct {
	overlap int
	docDesc int
	typed   int
}

func (s score) beats(o score) bool {
	if s.overlap != o.overlap {
		return s.overlap > o.overlap
	}
	if s.docDesc != o.docDesc {
		return s.docDesc > o.docDesc
	}
	return s.typed > o.typed
}

func pairScore(doc, code records.Record) score {
	return score{
		overlap: nameOverlap(doc.Signature, code.Signature),
		docDesc: len([]rune(doc.Description)),
		typed:   code.Signature.TypedCount(),
	}
}

// nameOverlap counts doc parameter names that also appear in the code signature.
func nameOverlap(doc, code records.Signature) int {
	names := make(map[string]int, len(code.Parameters))
	for _, p := range code.Parameters {
		names[p.Name]++
	}
	n := 0
	for _, p := range doc.Parameters {
		if names[p.Name] > 0 {
			names[p.Name]--
			n++
		}
	}
	return n
}
