package authority_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/apidrift/pkg/authority"
	"github.com/agentstation/apidrift/pkg/records"
)

func TestDefaults(t *testing.T) {
	a := authority.New()

	sig := a.Find("signature_mismatch")
	require.NotNil(t, sig)
	assert.Equal(t, records.OriginCode, sig.Origin)

	desc := a.Find("description_mismatch")
	require.NotNil(t, desc)
	assert.Equal(t, records.OriginDocumentation, desc.Origin)

	clean := a.Decide()
	require.NotNil(t, clean)
	assert.Equal(t, authority.PathClean, clean.Path)
	assert.Equal(t, records.OriginCode, clean.Origin)

	unknown := a.Find("missing_in_code")
	require.NotNil(t, unknown)
	assert.Equal(t, authority.PathFallback, unknown.Path)
}

func TestDecidePicksHighestPriority(t *testing.T) {
	a := authority.New()
	f := a.Decide("description_mismatch", "signature_mismatch")
	require.NotNil(t, f)
	assert.Equal(t, "signature_mismatch", f.Path)
}

func TestNewOverridesDefaults(t *testing.T) {
	a := authority.New(
		authority.Field{Path: "signature_mismatch", Origin: records.OriginDocumentation, Priority: 100},
		authority.Field{Path: "custom_*", Origin: records.OriginDocumentation, Priority: 5},
	)
	assert.Equal(t, records.OriginDocumentation, a.Find("signature_mismatch").Origin)
	assert.Equal(t, "custom_*", a.Find("custom_kind").Path)

	assert.Equal(t, "signature_mismatch", a.Decide("custom_kind", "signature_mismatch").Path)
	assert.Equal(t, authority.PathFallback, a.Find("missing_in_docs").Path)
}

func TestMatchesPattern(t *testing.T) {
	assert.True(t, authority.MatchesPattern("clean", "clean"))
	assert.True(t, authority.MatchesPattern("signature_mismatch", "signature_*"))
	assert.True(t, authority.MatchesPattern("anything", "*"))
	assert.True(t, authority.MatchesPattern("abc", "a?c"))
	assert.False(t, authority.MatchesPattern("abc", "[bad"))
	assert.False(t, authority.MatchesPattern("clean", "signature_*"))
}

func TestByFieldSpecificity(t *testing.T) {
	fields := []authority.Field{
		{Path: "*", Origin: records.OriginCode, Priority: 1},
		{Path: "sig*", Origin: records.OriginDocumentation, Priority: 1},
	}
	f := authority.ByField("signature_mismatch", fields)
	require.NotNil(t, f)
	assert.Equal(t, records.OriginDocumentation, f.Origin)

	assert.Nil(t, authority.ByField("x", nil))
}
