package dataprocessing

import (
	"log/slog"
	"strconv"
	"strings"

	"proformacli/pkg/contracts/domain"
)

// Normalizer converts raw rows into canonical attendance records using a
// resolved header mapping. Invalid rows are dropped silently; callers report
// counts, not per-row diagnostics.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a record normalizer.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize produces the records for one table. The returned slice preserves
// row order. An empty result is a valid outcome the caller must handle.
func (n *Normalizer) Normalize(rows []RawRow, mapping *HeaderMapping) []domain.AttendanceRecord {
	records := make([]domain.AttendanceRecord, 0, len(rows))
	dropped := 0

	for _, row := range rows {
		record, ok := n.normalizeRow(row, mapping)
		if !ok {
			dropped++
			continue
		}
		records = append(records, record)
	}

	n.logger.Debug("rows normalized",
		slog.Int("total", len(rows)),
		slog.Int("parsed", len(records)),
		slog.Int("dropped", dropped))
	return records
}

// normalizeRow applies the skip rules: blank/"nan"/too-short student id,
// blank/"nan" subject code, failed numeric coercion, or a violated
// attended ≤ conducted invariant all reject the row.
func (n *Normalizer) normalizeRow(row RawRow, mapping *HeaderMapping) (domain.AttendanceRecord, bool) {
	studentID := n.textField(row, mapping, FieldStudentID)
	if isMissing(studentID) || len(studentID) < 2 {
		return domain.AttendanceRecord{}, false
	}
	subjectCode := n.textField(row, mapping, FieldSubjectCode)
	if isMissing(subjectCode) {
		return domain.AttendanceRecord{}, false
	}

	conducted, ok := n.countField(row, mapping, FieldClassesConducted)
	if !ok {
		return domain.AttendanceRecord{}, false
	}
	attended, ok := n.countField(row, mapping, FieldClassesAttended)
	if !ok {
		return domain.AttendanceRecord{}, false
	}
	od, ok := n.countField(row, mapping, FieldODCount)
	if !ok {
		return domain.AttendanceRecord{}, false
	}
	ml, ok := n.countField(row, mapping, FieldMLCount)
	if !ok {
		return domain.AttendanceRecord{}, false
	}

	record := domain.AttendanceRecord{
		StudentID:        studentID,
		StudentName:      n.textField(row, mapping, FieldStudentName),
		SubjectCode:      strings.ToUpper(subjectCode),
		SubjectName:      n.textField(row, mapping, FieldSubjectName),
		ClassesConducted: conducted,
		ClassesAttended:  attended,
		ODCount:          od,
		MLCount:          ml,
	}
	if !record.IsValid() {
		return domain.AttendanceRecord{}, false
	}
	return record, true
}

// textField returns the trimmed cell for a mapped field, or "" when the
// field is unmapped or the cell absent.
func (n *Normalizer) textField(row RawRow, mapping *HeaderMapping, field string) string {
	label, ok := mapping.Label(field)
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[label])
}

// countField coerces a numeric cell via float-then-truncate so spreadsheet
// values stored as floats ("12.0") survive. Absent or unmapped cells count
// as zero; unparseable text fails the row.
func (n *Normalizer) countField(row RawRow, mapping *HeaderMapping, field string) (int, bool) {
	label, ok := mapping.Label(field)
	if !ok {
		return 0, true
	}
	cell := strings.TrimSpace(row[label])
	if cell == "" || strings.EqualFold(cell, "nan") {
		return 0, true
	}
	// Thousands separators occur in some institutional exports.
	cell = strings.ReplaceAll(cell, ",", "")
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, false
	}
	return int(value), true
}

// isMissing reports a blank cell or the literal "nan" pandas-style export
// artifact.
func isMissing(value string) bool {
	return value == "" || strings.EqualFold(value, "nan")
}
