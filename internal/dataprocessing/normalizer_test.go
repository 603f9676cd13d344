package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapping(t *testing.T) *HeaderMapping {
	t.Helper()
	resolver := NewResolver(nil)
	mapping, err := resolver.Resolve([]string{
		"Roll No", "Student Name", "Subject Code", "Subject Name",
		"Conducted", "Attended", "OD", "ML",
	})
	require.NoError(t, err)
	return mapping
}

func row(id, name, code, subjectName, conducted, attended, od, ml string) RawRow {
	return RawRow{
		"Roll No":      id,
		"Student Name": name,
		"Subject Code": code,
		"Subject Name": subjectName,
		"Conducted":    conducted,
		"Attended":     attended,
		"OD":           od,
		"ML":           ml,
	}
}

// TestNormalize tests row normalization and the skip rules
func TestNormalize(t *testing.T) {
	normalizer := NewNormalizer(nil)
	mapping := testMapping(t)

	t.Run("valid row", func(t *testing.T) {
		records := normalizer.Normalize([]RawRow{
			row("ST001", "Asha", "cs301t", "Data Structures", "40", "32", "2", "1"),
		}, mapping)
		require.Len(t, records, 1)

		rec := records[0]
		assert.Equal(t, "ST001", rec.StudentID)
		assert.Equal(t, "Asha", rec.StudentName)
		assert.Equal(t, "CS301T", rec.SubjectCode, "subject code is upper-cased")
		assert.Equal(t, "Data Structures", rec.SubjectName)
		assert.Equal(t, 40, rec.ClassesConducted)
		assert.Equal(t, 32, rec.ClassesAttended)
		assert.Equal(t, 2, rec.ODCount)
		assert.Equal(t, 1, rec.MLCount)
	})

	t.Run("float stored counts truncate", func(t *testing.T) {
		records := normalizer.Normalize([]RawRow{
			row("ST001", "", "CS301", "", "40.0", "32.9", "", ""),
		}, mapping)
		require.Len(t, records, 1)
		assert.Equal(t, 40, records[0].ClassesConducted)
		assert.Equal(t, 32, records[0].ClassesAttended)
		assert.Equal(t, 0, records[0].ODCount)
		assert.Equal(t, 0, records[0].MLCount)
	})

	t.Run("skip rules", func(t *testing.T) {
		tests := []struct {
			name string
			row  RawRow
		}{
			{"blank student id", row("", "x", "CS1", "", "10", "5", "", "")},
			{"nan student id", row("nan", "x", "CS1", "", "10", "5", "", "")},
			{"single char student id", row("A", "x", "CS1", "", "10", "5", "", "")},
			{"blank subject code", row("ST001", "x", "", "", "10", "5", "", "")},
			{"nan subject code", row("ST001", "x", "nan", "", "10", "5", "", "")},
			{"non-numeric conducted", row("ST001", "x", "CS1", "", "forty", "5", "", "")},
			{"non-numeric attended", row("ST001", "x", "CS1", "", "10", "five", "", "")},
			{"non-numeric od", row("ST001", "x", "CS1", "", "10", "5", "two", "")},
			{"attended exceeds conducted", row("ST001", "x", "CS1", "", "10", "12", "", "")},
			{"negative attended", row("ST001", "x", "CS1", "", "10", "-1", "", "")},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				records := normalizer.Normalize([]RawRow{tt.row}, mapping)
				assert.Empty(t, records)
			})
		}
	})

	t.Run("invalid row shrinks output by exactly one", func(t *testing.T) {
		rows := []RawRow{
			row("ST001", "", "CS1", "", "10", "8", "", ""),
			row("ST002", "", "CS1", "", "10", "12", "", ""), // attended > conducted
			row("ST003", "", "CS1", "", "10", "9", "", ""),
		}
		records := normalizer.Normalize(rows, mapping)
		assert.Len(t, records, len(rows)-1)
	})

	t.Run("empty input yields empty valid output", func(t *testing.T) {
		records := normalizer.Normalize(nil, mapping)
		assert.Empty(t, records)
	})
}

// TestNormalizeWithoutOptionalColumns verifies defaults when OD/ML columns
// are absent from the source table
func TestNormalizeWithoutOptionalColumns(t *testing.T) {
	resolver := NewResolver(nil)
	mapping, err := resolver.Resolve([]string{"Roll No", "Subject Code", "Conducted", "Attended"})
	require.NoError(t, err)

	normalizer := NewNormalizer(nil)
	records := normalizer.Normalize([]RawRow{
		{"Roll No": "ST001", "Subject Code": "CS101", "Conducted": "30", "Attended": "21"},
	}, mapping)

	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].ODCount)
	assert.Equal(t, 0, records[0].MLCount)
	assert.Empty(t, records[0].StudentName)
}
