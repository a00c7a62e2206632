package shuffle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunAssignsIDsInFirstSeenOrder(t *testing.T) {
	in := "a.test/\tb.test/\nb.test/\tc.test/\n"
	res, err := Run(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []string{"a.test/", "b.test/", "c.test/"}, res.URLs)
	require.Equal(t, []Edge{{Source: 0, Dest: 1}, {Source: 1, Dest: 2}}, res.Edges)
}

func TestRunDedupesRepeatedEdges(t *testing.T) {
	in := "a.test/\tb.test/\na.test/\tb.test/\na.test/\tb.test/\n"
	res, err := Run(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, res.Edges, 1)
	assert.Equal(t, Edge{Source: 0, Dest: 1}, res.Edges[0])
}

func TestRunSkipsMalformedLines(t *testing.T) {
	in := "not-a-valid-line\na.test/\tb.test/\n\n"
	res, err := Run(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.test/", "b.test/"}, res.URLs)
	assert.Len(t, res.Edges, 1)
}

func TestWriteURLTableFormatsIDTabURL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteURLTable(&buf, []string{"x.test/", "y.test/"}))
	assert.Equal(t, "0\tx.test/\n1\ty.test/\n", buf.String())
}

func TestWriteEdgeListFormatsSourceTabDest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEdgeList(&buf, []Edge{{Source: 0, Dest: 1}, {Source: 1, Dest: 0}}))
	assert.Equal(t, "0\t1\n1\t0\n", buf.String())
}

func TestRunOnEmptyInputYieldsEmptyResult(t *testing.T) {
	res, err := Run(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, res.URLs)
	assert.Empty(t, res.Edges)
}
