package decoder

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// TestCandidateOffsets tests header-row detection over banner-padded sheets
func TestCandidateOffsets(t *testing.T) {
	t.Run("header under title banner", func(t *testing.T) {
		sheet := Sheet{
			Name: "Sem 6",
			Rows: [][]string{
				{"ABC College of Engineering"},
				{"Attendance Proforma - Semester 6"},
				{},
				{"Roll No", "Subject Code", "Conducted", "Attended"},
				{"ST001", "CS301", "40", "32"},
			},
		}
		offsets := sheet.CandidateOffsets()
		// Row 1 mentions "attendance" and row 3 is the real header; both
		// are candidates, in scan order.
		assert.Equal(t, []int{1, 3}, offsets)
	})

	t.Run("no plausible header", func(t *testing.T) {
		sheet := Sheet{
			Name: "Notes",
			Rows: [][]string{
				{"Lorem", "Ipsum"},
				{"1", "2"},
			},
		}
		assert.Empty(t, sheet.CandidateOffsets())
	})

	t.Run("header with nothing below is skipped", func(t *testing.T) {
		sheet := Sheet{
			Name: "Empty",
			Rows: [][]string{
				{"Roll No", "Subject Code"},
				{},
			},
		}
		assert.Empty(t, sheet.CandidateOffsets())
	})
}

// TestTableAt tests table materialization at a header offset
func TestTableAt(t *testing.T) {
	sheet := Sheet{
		Name: "Sem 6",
		Rows: [][]string{
			{"Banner"},
			{"Roll No", "", "Subject Code", "Conducted", "Attended"},
			{"ST001", "ignored", "CS301", "40", "32"},
			{},
			{"ST002", "", "CS301", "40"},
		},
	}

	labels, rows := sheet.TableAt(1)
	assert.Equal(t, []string{"Roll No", "Subject Code", "Conducted", "Attended"}, labels,
		"blank labels dropped")
	require.Len(t, rows, 2, "blank rows skipped")

	assert.Equal(t, "ST001", rows[0]["Roll No"])
	assert.Equal(t, "CS301", rows[0]["Subject Code"])
	assert.Equal(t, "40", rows[0]["Conducted"])
	assert.Equal(t, "32", rows[0]["Attended"])

	_, ok := rows[1]["Attended"]
	assert.False(t, ok, "ragged row omits missing cells")

	t.Run("out of range offset", func(t *testing.T) {
		labels, rows := sheet.TableAt(99)
		assert.Nil(t, labels)
		assert.Nil(t, rows)
	})
}

// TestDecodeFile round-trips a workbook through excelize
func TestDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"Department of CSE"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Roll No", "Subject Code", "Conducted", "Attended"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"ST001", "CS301T", 40, 32}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A4", &[]interface{}{"ST001", "CS301L", 20, 15}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	decoder := NewExcelDecoder(nil)
	sheets, err := decoder.DecodeFile(path)
	require.NoError(t, err)
	require.Len(t, sheets, 1)

	offsets := sheets[0].CandidateOffsets()
	require.NotEmpty(t, offsets)
	assert.Equal(t, 1, offsets[0])

	labels, rows := sheets[0].TableAt(offsets[0])
	assert.Equal(t, []string{"Roll No", "Subject Code", "Conducted", "Attended"}, labels)
	require.Len(t, rows, 2)
	assert.Equal(t, "CS301T", rows[0]["Subject Code"])
	assert.Equal(t, "40", rows[0]["Conducted"])
}
