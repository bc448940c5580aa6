package export_test

import (
	"bytes"
	"testing"

	"hirematrix-backend/pkg/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWorkbook(t *testing.T) {
	score := 80
	var missing *int

	data, err := export.Workbook(export.Sheet{
		Name:    "Interviews",
		Headers: []string{"Candidate", "Technical", "Communication"},
		Widths:  []float64{30, 12, 12},
		Rows: [][]interface{}{
			{"Jane", &score, missing},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Interviews"}, f.GetSheetList())

	rows, err := f.GetRows("Interviews")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Candidate", "Technical", "Communication"}, rows[0])
	assert.Equal(t, "Jane", rows[1][0])
	assert.Equal(t, "80", rows[1][1])
}

func TestWorkbookRequiresSheet(t *testing.T) {
	_, err := export.Workbook()
	assert.Error(t, err)
}
