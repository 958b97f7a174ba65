package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) [][]string {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	return rows
}

func TestStreamCSV(t *testing.T) {
	input := "name,state,lat,lon\n" +
		"Stowe,VT,44.5303,-72.7814\n" +
		"Killington,VT,43.6045,-72.8201\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "state", "lat", "lon"}, rows[0])
	assert.Equal(t, []string{"Stowe", "VT", "44.5303", "-72.7814"}, rows[1])
}

func TestStreamCSV_SkipHeader(t *testing.T) {
	input := "name,state\nJay Peak,VT\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{SkipHeader: true})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Jay Peak", "VT"}, rows[0])
}

func TestStreamCSV_DelimiterAndComment(t *testing.T) {
	input := "# catalog export 2026-01\n" +
		"Sugarbush|VT|2600\n" +
		"Wachusett|MA|1000\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{
		Delimiter: '|',
		Comment:   '#',
	})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Sugarbush", "VT", "2600"}, rows[0])
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	input := " Stowe , VT \n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{TrimSpace: true})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Stowe", "VT"}, rows[0])
}

func TestStreamCSV_VariableFieldCounts(t *testing.T) {
	input := "Stowe,VT,44.5303,-72.7814\nMad River Glen,VT\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 4)
	assert.Len(t, rows[1], 2)
}

func TestStreamCSV_MalformedQuoting(t *testing.T) {
	input := "name,note\nStowe,\"unterminated\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})
	for range rowCh {
	}

	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestStreamCSV_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\nc,d\n"), CSVOptions{})
	for range rowCh {
	}

	err := <-errCh
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context cancelled")
}
