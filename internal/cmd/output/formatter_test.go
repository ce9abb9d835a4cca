package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/apidrift/internal/cmd/table"
	"github.com/agentstation/apidrift/pkg/errors"
)

func TestWrite(t *testing.T) {
	data := table.Data{
		Headers:         []string{"Metric", "Count"},
		Rows:            [][]string{{"Entries", "4"}},
		ColumnAlignment: []table.Align{table.AlignLeft, table.AlignRight},
	}
	raw := map[string]int{"total": 4}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatTable, raw, data))
	assert.Contains(t, buf.String(), "Entries")
	assert.Contains(t, buf.String(), "4")

	buf.Reset()
	require.NoError(t, Write(&buf, FormatJSON, raw, data))
	assert.JSONEq(t, `{"total":4}`, buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, FormatYAML, raw, data))
	assert.Equal(t, "total: 4\n", buf.String())
}

func TestTableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, []int{1, 2}))
	assert.JSONEq(t, `[1,2]`, buf.String())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("wide")
	assert.True(t, errors.IsUnsupportedFormat(err))

	assert.Equal(t, FormatYAML, DetectFormat("yaml"))
}
