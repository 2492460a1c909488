package leaderboard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, Flatten(sampleRecords())))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Rank", "Name", "Category", "Score", "Recorded At"}, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "cy", rows[1][1])
	assert.Equal(t, "math", rows[1][2])
	assert.Equal(t, "100", rows[1][3])
	assert.Equal(t, "dee", rows[4][1])
}

func TestWriteWorkbookEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
