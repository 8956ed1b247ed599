package reports

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteXLSX_RoundTrip(t *testing.T) {
	table, err := Build(TypeSources, dataset(sampleLeads()))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Sources"}, f.GetSheetList())
	rows, err := f.GetRows("Sources")
	require.NoError(t, err)
	require.Len(t, rows, len(table.Rows)+1)
	assert.Equal(t, table.Header, rows[0])
	assert.Equal(t, []string{"Website", "6", "0", "0", "0.0", "0"}, rows[1])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Agent Performance", sheetName("Agent Performance"))
	assert.Equal(t, "Leads 2024-03", sheetName("Leads [2024/03]"))
	assert.Equal(t, "Report", sheetName("  "))
	assert.Len(t, sheetName("A very long report title that Excel will not accept"), maxSheetName)
}
