package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erenakay1/CV-Analizer/internal"
)

var jobs = []internal.JobRecord{
	{Rank: 1, Title: "Go Developer", Company: "Acme", Location: "Istanbul", URL: "https://jobs.example/1", MatchScore: 95, MatchReasons: []string{"3 skills match: Go, SQL, AWS", "Located in Istanbul"}},
	{Rank: 2, Title: "SRE", Company: "Beta", Location: "Remote", URL: "#", MatchScore: 45},
}

func TestWorkbook(t *testing.T) {
	data, err := Workbook(jobs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{Sheet}, f.GetSheetList())

	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "Go Developer", rows[1][1])
	assert.Equal(t, "95", rows[1][7])
	assert.Equal(t, "3 skills match: Go, SQL, AWS\nLocated in Istanbul", rows[1][8])
	assert.Equal(t, "SRE", rows[2][1])

	link, target, err := f.GetCellHyperLink(Sheet, "J2")
	require.NoError(t, err)
	assert.True(t, link)
	assert.Equal(t, "https://jobs.example/1", target)

	link, _, err = f.GetCellHyperLink(Sheet, "J3")
	require.NoError(t, err)
	assert.False(t, link)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.xlsx")
	require.NoError(t, WriteFile(path, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(Sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
