package tabular

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords_ByteOrderMark(t *testing.T) {
	records, err := ReadRecords(strings.NewReader("\ufeffa,b\n1,2\n"), ',')

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, records)
}

func TestReadRecords_TrimsLeadingSpace(t *testing.T) {
	records, err := ReadRecords(strings.NewReader("a, b,  c\n"), ',')

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b", "c"}}, records)
}

func TestReadRecords_Tabs(t *testing.T) {
	records, err := ReadRecords(strings.NewReader("a\tb\n1\t2\n"), '\t')

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, records)
}

func TestReadRecords_LazyQuotes(t *testing.T) {
	records, err := ReadRecords(strings.NewReader("name,note\nx,say \"hi\"\n"), ',')

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, `say "hi"`, records[1][1])
}
