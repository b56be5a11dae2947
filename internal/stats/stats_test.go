package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector()

	c.Record([]byte("one\n"))
	c.Record([]byte("two\n"))
	c.Record([]byte("three"))

	require.EqualValues(t, 3, c.Lines())
	require.EqualValues(t, 13, c.Bytes())
}

func TestCollector_Summary(t *testing.T) {
	c := NewCollector()
	c.Record([]byte("a\n"))
	c.Record([]byte("b\n"))

	s := c.Summary()
	require.Contains(t, s, "2 lines")
	require.Contains(t, s, "4 bytes")
}

func TestProcessRSS(t *testing.T) {
	rss, err := processRSS()
	require.NoError(t, err)
	require.Positive(t, rss)
}
