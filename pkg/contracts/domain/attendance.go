package domain

import (
	"strings"
)

// AttendanceRecord is a single normalized attendance row: one student in one
// raw subject. Records are immutable once constructed; invalid rows are
// rejected during normalization, never clamped.
type AttendanceRecord struct {
	StudentID        string `json:"student_id" validate:"required,min=2"`
	StudentName      string `json:"student_name,omitempty"`
	SubjectCode      string `json:"subject_code" validate:"required"`
	SubjectName      string `json:"subject_name,omitempty"`
	ClassesConducted int    `json:"classes_conducted" validate:"min=0"`
	ClassesAttended  int    `json:"classes_attended" validate:"min=0"`
	ODCount          int    `json:"od_count" validate:"min=0"`
	MLCount          int    `json:"ml_count" validate:"min=0"`
}

// IsValid checks the structural invariants of a record. Attended must never
// exceed conducted.
func (r AttendanceRecord) IsValid() bool {
	return len(strings.TrimSpace(r.StudentID)) >= 2 &&
		strings.TrimSpace(r.SubjectCode) != "" &&
		r.ClassesConducted >= 0 &&
		r.ClassesAttended >= 0 &&
		r.ClassesAttended <= r.ClassesConducted &&
		r.ODCount >= 0 && r.MLCount >= 0
}

// SubjectComponent is the per-source breakdown of one member of a combined
// subject (e.g. the theory or lab part), carrying its own percentage.
type SubjectComponent struct {
	SubjectCode      string  `json:"subject_code"`
	SubjectName      string  `json:"subject_name,omitempty"`
	ClassesConducted int     `json:"classes_conducted"`
	ClassesAttended  int     `json:"classes_attended"`
	ODCount          int     `json:"od_count"`
	MLCount          int     `json:"ml_count"`
	Percentage       float64 `json:"percentage"`
}

// SubjectAttendance is one logical subject for one student after theory/lab
// merging. The computed fields are populated by the attendance engine.
type SubjectAttendance struct {
	SubjectCode  string             `json:"subject_code"`
	SubjectName  string             `json:"subject_name,omitempty"`
	IsCombined   bool               `json:"is_combined"`
	CombinedFrom []string           `json:"combined_from,omitempty"`
	Components   []SubjectComponent `json:"components,omitempty"`

	ClassesConducted int `json:"classes_conducted"`
	ClassesAttended  int `json:"classes_attended"`
	ODCount          int `json:"od_count"`
	MLCount          int `json:"ml_count"`

	OriginalPercentage float64  `json:"original_percentage"`
	ODMLAdjusted       bool     `json:"od_ml_adjusted"`
	FinalPercentage    float64  `json:"final_percentage"`
	Category           Category `json:"category"`
	CategoryLabel      string   `json:"category_label"`
	CategoryColor      string   `json:"category_color"`
}

// AdjustedAttended returns the attended count that feeds the student-level
// aggregation: the capped adjusted count when the OD/ML adjustment was
// applied, the raw count otherwise.
func (s SubjectAttendance) AdjustedAttended() int {
	if !s.ODMLAdjusted {
		return s.ClassesAttended
	}
	adjusted := s.ClassesAttended + s.ODCount + s.MLCount
	if adjusted > s.ClassesConducted {
		return s.ClassesConducted
	}
	return adjusted
}

// StudentAttendance is the complete merged and adjusted attendance picture
// for one student in one analysis run.
type StudentAttendance struct {
	StudentID         string              `json:"student_id"`
	StudentName       string              `json:"student_name,omitempty"`
	Subjects          []SubjectAttendance `json:"subjects"`
	OverallPercentage float64             `json:"overall_percentage"`
	OverallCategory   Category            `json:"overall_category"`
}

// Category is one of the four fixed attendance risk tiers.
type Category string

const (
	CategoryCritical Category = "critical"
	CategoryDanger   Category = "danger"
	CategoryBorder   Category = "border"
	CategorySafe     Category = "safe"
)

// Categories lists the four tiers in ascending order of attendance.
func Categories() []Category {
	return []Category{CategoryCritical, CategoryDanger, CategoryBorder, CategorySafe}
}

// IsValid reports whether c is one of the four known tiers.
func (c Category) IsValid() bool {
	switch c {
	case CategoryCritical, CategoryDanger, CategoryBorder, CategorySafe:
		return true
	}
	return false
}

// String returns the category key.
func (c Category) String() string {
	return string(c)
}

// CategoryDistribution counts students per overall category. Always fully
// populated, zero-filled for absent categories.
type CategoryDistribution map[Category]int

// NewCategoryDistribution returns a zero-filled distribution over the four
// fixed categories.
func NewCategoryDistribution() CategoryDistribution {
	dist := make(CategoryDistribution, 4)
	for _, c := range Categories() {
		dist[c] = 0
	}
	return dist
}
