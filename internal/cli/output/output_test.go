package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "TABLE": FormatTable, "json": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrintTable(t *testing.T) {
	table := NewTableData("Name", "Size")
	table.AddRow("a.csv", "5 B")
	table.AddRow("b.csv", "1.0 KiB")

	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, table))
	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "SIZE")
	assert.Contains(t, out, "a.csv")
	assert.Contains(t, out, "1.0 KiB")
}

func TestPrintFormats(t *testing.T) {
	data := map[string]any{"path": "/a", "length": 3}

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatJSON, data, nil, ""))
	assert.JSONEq(t, `{"path":"/a","length":3}`, buf.String())

	buf.Reset()
	require.NoError(t, Print(&buf, FormatYAML, data, nil, ""))
	assert.Contains(t, buf.String(), "path: /a")

	buf.Reset()
	require.NoError(t, Print(&buf, FormatTable, data, NewTableData("X"), "nothing here"))
	assert.Equal(t, "nothing here\n", buf.String())
}

func TestSimpleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SimpleTable(&buf, [][2]string{{"Owner", "alice"}, {"Group", "staff"}}))
	assert.Contains(t, buf.String(), "alice")
	assert.Contains(t, buf.String(), "Group")
}
