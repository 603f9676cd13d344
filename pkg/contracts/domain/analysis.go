package domain

import (
	"time"
)

// AnalysisResult is the cohort-level output of one analysis run over an
// uploaded attendance file.
type AnalysisResult struct {
	UploadID      string    `json:"upload_id"`
	ProcessedAt   time.Time `json:"processed_at"`
	Regulation    string    `json:"regulation"`
	TotalStudents int       `json:"total_students"`
	TotalSubjects int       `json:"total_subjects"`

	// Row accounting: callers report "parsed N of M rows" rather than
	// per-row diagnostics.
	TotalRows     int `json:"total_rows"`
	ParsedRecords int `json:"parsed_records"`

	Students             []StudentAttendance  `json:"students"`
	CategoryDistribution CategoryDistribution `json:"category_distribution"`
}

// CriticalStudents returns the students whose overall category is critical,
// preserving the result's student order.
func (a *AnalysisResult) CriticalStudents() []StudentAttendance {
	var out []StudentAttendance
	for _, s := range a.Students {
		if s.OverallCategory == CategoryCritical {
			out = append(out, s)
		}
	}
	return out
}

// Upload describes a stored attendance file awaiting or under analysis.
type Upload struct {
	ID         string    `json:"id" validate:"required,uuid"`
	Filename   string    `json:"filename"`
	Path       string    `json:"-"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}
