package conflicts_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/differ"
	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/records"
)

func moveLocalXDoc() records.Record {
	return records.Record{
		Identity:    "Node2D.move_local_x",
		Origin:      records.OriginDocumentation,
		Description: "Moves the node locally",
		Signature: records.Signature{
			Parameters: []records.Parameter{{Name: "delta", Type: "float"}},
			Parsed:     true,
		},
		Location: records.Location{Source: "https://docs.example.com/node2d", Anchor: "move_local_x"},
	}
}

func moveLocalXCode() records.Record {
	return records.Record{
		Identity:    "Node2D.move_local_x",
		Origin:      records.OriginCode,
		Description: "Moves locally, optionally snapping to grid",
		Signature: records.Signature{
			Parameters: []records.Parameter{
				{Name: "delta", Type: "float"},
				{Name: "snap", Type: "bool", Default: "False"},
			},
			ReturnType: "None",
			Parsed:     true,
		},
		Location: records.Location{Source: "scene/node2d.py", Anchor: "L42"},
	}
}

func group(docs []records.Record, code []records.Record) identity.Group {
	id := ""
	if len(docs) > 0 {
		id = docs[0].Identity
	} else if len(code) > 0 {
		id = code[0].Identity
	}
	return identity.Group{Identity: id, DocRecords: docs, CodeRecords: code}
}

func TestClassifyMoveLocalX(t *testing.T) {
	got := conflicts.Classify(group([]records.Record{moveLocalXDoc()}, []records.Record{moveLocalXCode()}))

	require.Len(t, got, 1)
	c := got[0]
	assert.Equal(t, conflicts.KindSignatureMismatch, c.Kind)
	assert.Equal(t, conflicts.SeverityMedium, c.Severity)
	assert.Equal(t, "Node2D.move_local_x", c.Identity)
	require.NotNil(t, c.DocRecord)
	require.NotNil(t, c.CodeRecord)
	assert.Contains(t, c.Suggestion, "-Node2D.move_local_x(delta: float)")
	assert.Contains(t, c.Suggestion, "+Node2D.move_local_x(delta: float, snap: bool = False) -> None")
	assert.Contains(t, c.Suggestion, "code adds snap")
}

func TestClassifyRotateMissingInCode(t *testing.T) {
	rotate := records.Record{
		Identity:  "Node2D.rotate",
		Origin:    records.OriginDocumentation,
		Signature: records.Signature{Parameters: []records.Parameter{{Name: "angle", Type: "float"}}, Parsed: true},
	}
	got := conflicts.Classify(group([]records.Record{rotate}, nil))

	require.Len(t, got, 1)
	assert.Equal(t, conflicts.KindMissingInCode, got[0].Kind)
	assert.Equal(t, conflicts.SeverityHigh, got[0].Severity)
	assert.Equal(t, conflicts.SuggestionMissingInCode, got[0].Suggestion)
	assert.NotNil(t, got[0].DocRecord)
	assert.Nil(t, got[0].CodeRecord)
}

func TestClassifyMissingInDocs(t *testing.T) {
	got := conflicts.Classify(group(nil, []records.Record{moveLocalXCode()}))

	require.Len(t, got, 1)
	assert.Equal(t, conflicts.KindMissingInDocs, got[0].Kind)
	assert.Equal(t, conflicts.SeverityMedium, got[0].Severity)
	assert.Equal(t, conflicts.SuggestionMissingInDocs, got[0].Suggestion)
	assert.Nil(t, got[0].DocRecord)
}

func TestClassifyCleanMatch(t *testing.T) {
	doc := moveLocalXCode()
	doc.Origin = records.OriginDocumentation
	doc.Description = "Moves locally; optionally snapping to grid."

	got := conflicts.Classify(group([]records.Record{doc}, []records.Record{moveLocalXCode()}))
	assert.Nil(t, got)
}

func TestClassifySignatureSeverities(t *testing.T) {
	tests := []struct {
		name     string
		doc      []records.Parameter
		docRet   string
		code     []records.Parameter
		codeRet  string
		severity conflicts.Severity
	}{
		{
			name:     "type conflict on shared parameter",
			doc:      []records.Parameter{{Name: "delta", Type: "float"}},
			code:     []records.Parameter{{Name: "delta", Type: "int"}},
			severity: conflicts.SeverityHigh,
		},
		{
			name:     "documented parameter missing in code",
			doc:      []records.Parameter{{Name: "delta"}, {Name: "snap"}},
			code:     []records.Parameter{{Name: "delta"}},
			severity: conflicts.SeverityHigh,
		},
		{
			name:     "return type conflict",
			docRet:   "Vector2",
			codeRet:  "float",
			severity: conflicts.SeverityHigh,
		},
		{
			name:     "reordered",
			doc:      []records.Parameter{{Name: "a"}, {Name: "b"}},
			code:     []records.Parameter{{Name: "b"}, {Name: "a"}},
			severity: conflicts.SeverityMedium,
		},
		{
			name:     "extra and conflicting picks highest",
			doc:      []records.Parameter{{Name: "a", Type: "int"}},
			code:     []records.Parameter{{Name: "a", Type: "str"}, {Name: "b"}},
			severity: conflicts.SeverityHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := records.Record{Identity: "f", Origin: records.OriginDocumentation, Signature: records.Signature{Parameters: tt.doc, ReturnType: tt.docRet, Parsed: true}}
			code := records.Record{Identity: "f", Origin: records.OriginCode, Signature: records.Signature{Parameters: tt.code, ReturnType: tt.codeRet, Parsed: true}}
			got := conflicts.Classify(group([]records.Record{doc}, []records.Record{code}))
			require.Len(t, got, 1)
			assert.Equal(t, conflicts.KindSignatureMismatch, got[0].Kind)
			assert.Equal(t, tt.severity, got[0].Severity)
		})
	}
}

func TestClassifyUnparsedDocSkipsSignature(t *testing.T) {
	doc := records.Record{Identity: "f", Origin: records.OriginDocumentation, Description: "Does something quite specific"}
	code := moveLocalXCode()
	code.Identity = "f"

	got := conflicts.Classify(group([]records.Record{doc}, []records.Record{code}))
	require.Len(t, got, 1)
	assert.Equal(t, conflicts.KindDescriptionMismatch, got[0].Kind)
	assert.Equal(t, conflicts.SeverityLow, got[0].Severity)
}

func TestClassifyDescriptionThreshold(t *testing.T) {
	doc := moveLocalXCode()
	doc.Origin = records.OriginDocumentation
	doc.Description = "Short."
	code := moveLocalXCode()
	code.Description = "Something entirely different and long"

	assert.Empty(t, conflicts.Classify(group([]records.Record{doc}, []records.Record{code})))

	doc.Description = "Exactly ten"
	got := conflicts.Classify(group([]records.Record{doc}, []records.Record{code}))
	require.Len(t, got, 1)
	assert.Equal(t, conflicts.KindDescriptionMismatch, got[0].Kind)
}

func TestClassifyDeterministic(t *testing.T) {
	g := group(
		[]records.Record{moveLocalXDoc(), moveLocalXDoc()},
		[]records.Record{moveLocalXCode()},
	)
	first := conflicts.Classify(g)
	second := conflicts.Classify(g)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Classify() not deterministic (-first +second):\n%s", diff)
	}
}

func TestClassifierRules(t *testing.T) {
	c := &conflicts.Classifier{
		Rules: &conflicts.Rules{
			MissingInDocs:     &conflicts.Rule{Severity: conflicts.SeverityPtr(conflicts.SeverityInfo)},
			SignatureMismatch: &conflicts.Rule{Ignore: true},
		},
	}

	got := c.Classify(group(nil, []records.Record{moveLocalXCode()}))
	require.Len(t, got, 1)
	assert.Equal(t, conflicts.SeverityInfo, got[0].Severity)

	got = c.Classify(group([]records.Record{moveLocalXDoc()}, []records.Record{moveLocalXCode()}))
	assert.Empty(t, got)
}

func TestClassifierCustomDiffer(t *testing.T) {
	c := &conflicts.Classifier{Differ: differ.New(differ.WithIgnoredFields("type"))}
	doc := records.Record{Identity: "f", Origin: records.OriginDocumentation, Signature: records.Signature{Parameters: []records.Parameter{{Name: "a", Type: "int"}}, Parsed: true}}
	code := records.Record{Identity: "f", Origin: records.OriginCode, Signature: records.Signature{Parameters: []records.Parameter{{Name: "a", Type: "str"}}, Parsed: true}}
	assert.Empty(t, c.Classify(group([]records.Record{doc}, []records.Record{code})))
}

func TestClassifyAllIndexAligned(t *testing.T) {
	groups := []identity.Group{
		group([]records.Record{moveLocalXDoc()}, nil),
		group(nil, nil),
		group(nil, []records.Record{moveLocalXCode()}),
	}
	got := conflicts.ClassifyAll(groups)
	require.Len(t, got, 3)
	assert.Equal(t, conflicts.KindMissingInCode, got[0][0].Kind)
	assert.Empty(t, got[1])
	assert.Equal(t, conflicts.KindMissingInDocs, got[2][0].Kind)
}

func TestParseRules(t *testing.T) {
	rules, err := conflicts.ParseRules(map[string]string{
		"missing_in_docs":      "LOW",
		"description_mismatch": "ignore",
	})
	require.NoError(t, err)
	require.NotNil(t, rules.MissingInDocs)
	assert.Equal(t, conflicts.SeverityLow, *rules.MissingInDocs.Severity)
	assert.True(t, rules.DescriptionMismatch.Ignore)
	assert.Nil(t, rules.MissingInCode)

	empty, err := conflicts.ParseRules(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = conflicts.ParseRules(map[string]string{"typo": "high"})
	assert.True(t, errors.IsValidationError(err))

	_, err = conflicts.ParseRules(map[string]string{"missing_in_code": "critical"})
	assert.True(t, errors.IsValidationError(err))
}

func TestSeverityRank(t *testing.T) {
	assert.Equal(t, 0, conflicts.SeverityHigh.Rank())
	assert.Equal(t, 3, conflicts.SeverityInfo.Rank())
	assert.False(t, conflicts.Severity("critical").Valid())
	assert.True(t, conflicts.KindDescriptionMismatch.Valid())
	assert.False(t, conflicts.Kind("other").Valid())
}
