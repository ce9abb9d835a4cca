package provenance_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/apidrift/pkg/provenance"
	"github.com/agentstation/apidrift/pkg/records"
)

func TestTracker(t *testing.T) {
	tr := provenance.NewTracker(true)
	tr.Track("rotate", provenance.Resolution{Resolver: "rule_based", Origin: records.OriginDocumentation, Reason: "only available record"})
	tr.Track("move", provenance.Resolution{Resolver: "ai_assisted", Origin: records.OriginCode, Reason: "rewritten", Fallback: true, Error: "timeout"})

	got := tr.Find("rotate")
	require.Len(t, got, 1)
	assert.Equal(t, "rule_based", got[0].Resolver)

	m := tr.Map()
	assert.Len(t, m, 2)
	m["rotate"][0].Resolver = "mutated"
	assert.Equal(t, "rule_based", tr.Find("rotate")[0].Resolver)

	stats := provenance.Summarize(tr.Map())
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Fallbacks)
	assert.Equal(t, 1, stats.ByResolver["ai_assisted"])

	tr.Clear()
	assert.Empty(t, tr.Map())
}

func TestDisabledTracker(t *testing.T) {
	tr := provenance.NewTracker(false)
	tr.Track("x", provenance.Resolution{Resolver: "rule_based"})
	assert.Nil(t, tr.Find("x"))
	assert.Nil(t, tr.Map())
}

func TestTrackerConcurrent(t *testing.T) {
	tr := provenance.NewTracker(true)
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Track("same", provenance.Resolution{Resolver: "ai_assisted"})
		}()
	}
	wg.Wait()
	assert.Len(t, tr.Find("same"), 20)
}

func TestResolutionString(t *testing.T) {
	r := provenance.Resolution{Resolver: "ai_assisted", Origin: records.OriginCode, Reason: "code is ground truth", Fallback: true, Error: "invalid JSON"}
	assert.Equal(t, "ai_assisted chose code: code is ground truth (fallback: invalid JSON)", r.String())
}

func TestMapString(t *testing.T) {
	m := provenance.Map{
		"b": {{Resolver: "rule_based", Origin: records.OriginCode, Reason: "r"}},
		"a": {{Resolver: "rule_based", Origin: records.OriginDocumentation, Reason: "r"}},
	}
	out := m.String()
	assert.Contains(t, out, "Provenance Report")
	assert.Less(t, indexOf(out, "\na\n"), indexOf(out, "\nb\n"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.yaml")

	missing, err := provenance.Load(path)
	require.NoError(t, err)
	assert.Nil(t, missing)

	m := provenance.Map{"Node2D.rotate": {{Resolver: "rule_based", Origin: records.OriginDocumentation, Reason: "only available record"}}}
	require.NoError(t, provenance.Save(path, m))

	loaded, err := provenance.Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, m, loaded.Provenance)
}
