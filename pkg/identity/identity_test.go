package identity_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/identity"
	"github.com/agentstation/apidrift/pkg/records"
)

func docRec(id string, params ...string) records.Record {
	return rec(id, records.OriginDocumentation, params...)
}

func codeRec(id string, params ...string) records.Record {
	return rec(id, records.OriginCode, params...)
}

// rec builds a record; each param is "name" or "name:type".
func rec(id string, origin records.Origin, params ...string) records.Record {
	sig := records.Signature{Parsed: true}
	for _, p := range params {
		name, typ, _ := strings.Cut(p, ":")
		sig.Parameters = append(sig.Parameters, records.Parameter{Name: name, Type: typ})
	}
	return records.Record{Identity: id, Origin: origin, Signature: sig}
}

func identities(groups []identity.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Identity
	}
	return out
}

func TestMatchExact(t *testing.T) {
	groups, err := identity.Match(
		[]records.Record{docRec("Node2D.rotate"), docRec("Node2D.move_local_x")},
		[]records.Record{codeRec("Node2D.move_local_x"), codeRec("Node2D.scale")},
	)
	require.NoError(t, err)
	require.Equal(t, []string{"Node2D.move_local_x", "Node2D.rotate", "Node2D.scale"}, identities(groups))

	assert.Equal(t, identity.MatchedExact, groups[0].MatchedBy)
	assert.Len(t, groups[0].DocRecords, 1)
	assert.Len(t, groups[0].CodeRecords, 1)

	assert.Equal(t, identity.MatchedNone, groups[1].MatchedBy)
	assert.True(t, groups[1].OneSided())
	assert.True(t, groups[1].HasDocs())

	assert.True(t, groups[2].HasCode())
	assert.False(t, groups[2].HasDocs())
}

func TestMatchIsCaseSensitiveThenFallsBack(t *testing.T) {
	groups, err := identity.Match(
		[]records.Record{docRec("Node2D.moveLocalX")},
		[]records.Record{codeRec("scene.node2d.move_local_x")},
	)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "scene.node2d.move_local_x", g.Identity)
	assert.Equal(t, identity.MatchedNormalized, g.MatchedBy)
	assert.Equal(t, "Node2D.moveLocalX", g.DocRecords[0].Identity)
	assert.Equal(t, []string{"Node2D.moveLocalX", "scene.node2d.move_local_x"}, g.Identities())
}

func TestMatchAmbiguousFallbackStaysUnmatched(t *testing.T) {
	tests := []struct {
		name string
		docs []records.Record
		code []records.Record
	}{
		{
			name: "two code candidates",
			docs: []records.Record{docRec("a.rotate")},
			code: []records.Record{codeRec("b.Rotate"), codeRec("c.rotate_")},
		},
		{
			name: "two doc candidates",
			docs: []records.Record{docRec("a.rotate"), docRec("b.Rotate")},
			code: []records.Record{codeRec("c.rotate")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := identity.Match(tt.docs, tt.code)
			require.NoError(t, err)
			assert.Len(t, groups, len(tt.docs)+len(tt.code))
			for _, g := range groups {
				assert.True(t, g.OneSided(), g.Identity)
				assert.Equal(t, identity.MatchedNone, g.MatchedBy)
			}
		})
	}
}

func TestMatchKeepsDuplicatesAndOverloads(t *testing.T) {
	groups, err := identity.Match(
		[]records.Record{docRec("f", "a"), docRec("f", "a", "b")},
		[]records.Record{codeRec("f", "a:int"), codeRec("f", "a:int", "b:int")},
	)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].DocRecords, 2)
	assert.Len(t, groups[0].CodeRecords, 2)
}

func TestMatchWithExclusions(t *testing.T) {
	res, err := identity.MatchWithOptions(
		[]records.Record{docRec("_private.helper"), docRec("rotate")},
		[]records.Record{codeRec("_private.helper"), codeRec("test_rotate"), codeRec("rotate")},
		identity.WithExclusions("_private.*", `^test_`),
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"rotate"}, identities(res.Groups))
	require.Len(t, res.Excluded, 3)
	assert.Equal(t, records.OriginDocumentation, res.Excluded[0].Origin)

	_, err = identity.MatchWithOptions(nil, nil, identity.WithExclusions("(bad"))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestMatchWithoutFallback(t *testing.T) {
	groups, err := identity.MatchWithOptions(
		[]records.Record{docRec("a.rotate")},
		[]records.Record{codeRec("b.rotate")},
		identity.WithFallback(false),
	)
	require.NoError(t, err)
	assert.Len(t, groups.Groups, 2)
}

func TestMatchConservesRecords(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"rotate", "Rotate", "scale", "a.scale", "move_local_x", "moveLocalX", "x.y.z", "z"}

	for iter := range 50 {
		var docs, code []records.Record
		for range rng.Intn(10) {
			docs = append(docs, docRec(names[rng.Intn(len(names))], "p"))
		}
		for range rng.Intn(10) {
			code = append(code, codeRec(names[rng.Intn(len(names))], "p:int"))
		}

		groups, err := identity.Match(docs, code)
		require.NoError(t, err, "iteration %d", iter)

		var gotDocs, gotCode int
		docIDs := map[string]int{}
		for _, g := range groups {
			gotDocs += len(g.DocRecords)
			gotCode += len(g.CodeRecords)
			for _, r := range g.DocRecords {
				docIDs[r.Identity]++
			}
		}
		assert.Equal(t, len(docs), gotDocs)
		assert.Equal(t, len(code), gotCode)

		wantIDs := map[string]int{}
		for _, r := range docs {
			wantIDs[r.Identity]++
		}
		assert.Equal(t, wantIDs, docIDs)

		for i := 1; i < len(groups); i++ {
			assert.Less(t, groups[i-1].Identity, groups[i].Identity)
		}
	}
}

func TestBestPair(t *testing.T) {
	t.Run("highest overlap wins", func(t *testing.T) {
		g := identity.Group{
			DocRecords:  []records.Record{docRec("f", "x"), docRec("f", "a", "b")},
			CodeRecords: []records.Record{codeRec("f", "a:int"), codeRec("f", "a:int", "b:int", "c:int")},
		}
		d, c := identity.BestPair(g)
		require.NotNil(t, d)
		require.NotNil(t, c)
		assert.Equal(t, []string{"a", "b"}, d.Signature.Names())
		assert.Equal(t, []string{"a", "b", "c"}, c.Signature.Names())
	})

	t.Run("ties broken by doc description then typed code params", func(t *testing.T) {
		short := docRec("f", "a")
		short.Description = "short"
		long := docRec("f", "a")
		long.Description = "a longer description"
		untyped := codeRec("f", "a")
		typed := codeRec("f", "a:int")

		d, c := identity.BestPair(identity.Group{
			DocRecords:  []records.Record{short, long},
			CodeRecords: []records.Record{untyped, typed},
		})
		assert.Equal(t, "a longer description", d.Description)
		assert.Equal(t, "int", c.Signature.Parameters[0].Type)
	})

	t.Run("input order on full tie", func(t *testing.T) {
		first := codeRec("f", "a")
		first.Location.Source = "first.py"
		second := codeRec("f", "a")
		second.Location.Source = "second.py"
		_, c := identity.BestPair(identity.Group{
			DocRecords:  []records.Record{docRec("f", "a")},
			CodeRecords: []records.Record{first, second},
		})
		assert.Equal(t, "first.py", c.Location.Source)
	})

	t.Run("one sided", func(t *testing.T) {
		d, c := identity.BestPair(identity.Group{DocRecords: []records.Record{docRec("f"), docRec("f", "a:int")}})
		assert.Nil(t, c)
		assert.Equal(t, []string{"a"}, d.Signature.Names())

		d, c = identity.BestPair(identity.Group{})
		assert.Nil(t, d)
		assert.Nil(t, c)
	})

	t.Run("returns copies", func(t *testing.T) {
		g := identity.Group{DocRecords: []records.Record{docRec("f", "a")}, CodeRecords: []records.Record{codeRec("f", "a:int")}}
		d, _ := identity.BestPair(g)
		d.Signature.Parameters[0].Name = "changed"
		assert.Equal(t, "a", g.DocRecords[0].Signature.Parameters[0].Name)
	})
}

func TestBestOf(t *testing.T) {
	unparsed := records.Record{Identity: "f", Origin: records.OriginDocumentation}
	parsedEmpty := records.Record{Identity: "f", Origin: records.OriginDocumentation, Signature: records.Signature{Parsed: true}}

	assert.Nil(t, identity.BestOf(nil))
	assert.True(t, identity.BestOf([]records.Record{unparsed, parsedEmpty}).Signature.Parsed)
	assert.Equal(t, []string{"a", "b"}, identity.BestOf([]records.Record{docRec("f", "a:int"), docRec("f", "a:int", "b")}).Signature.Names())
	assert.Equal(t, []string{"a"}, identity.BestOf([]records.Record{docRec("f", "x", "y"), docRec("f", "a:int")}).Signature.Names())
}
