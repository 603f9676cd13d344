package attendance

import (
	"log/slog"
	"math"

	"proformacli/pkg/contracts/domain"
)

// Percentage computes an attendance percentage rounded to two decimal
// places. Zero conducted classes yield 0, not a division error.
func Percentage(attended, conducted int) float64 {
	if conducted == 0 {
		return 0.0
	}
	pct := float64(attended) / float64(conducted) * 100
	return math.Round(pct*100) / 100
}

// Engine applies the OD/ML adjustment rule, assigns risk categories, and
// aggregates per-student and cohort summaries. Holds only immutable
// configuration.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// NewEngine creates an attendance engine with the given rule set.
func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// AdjustSubject computes the subject's original percentage, applies the
// OD/ML boost when warranted, and fills in the category fields.
//
// The boost applies only when adjustment is enabled, the raw percentage is
// below the threshold, and the subject carries at least one approved
// absence. There is no lower bound: a deeply critical subject with enough
// OD/ML can climb straight to safe. The boosted attended count is capped at
// the conducted count.
func (e *Engine) AdjustSubject(subject *domain.SubjectAttendance) {
	subject.OriginalPercentage = Percentage(subject.ClassesAttended, subject.ClassesConducted)

	shouldAdjust := e.cfg.EnableAdjustment &&
		subject.OriginalPercentage < e.cfg.AdjustmentThreshold &&
		(subject.ODCount > 0 || subject.MLCount > 0)

	if shouldAdjust {
		adjusted := subject.ClassesAttended + subject.ODCount + subject.MLCount
		if adjusted > subject.ClassesConducted {
			adjusted = subject.ClassesConducted
		}
		subject.FinalPercentage = Percentage(adjusted, subject.ClassesConducted)
		subject.ODMLAdjusted = true
	} else {
		subject.FinalPercentage = subject.OriginalPercentage
		subject.ODMLAdjusted = false
	}

	category := CategoryFor(subject.FinalPercentage)
	rule := RuleFor(category)
	subject.Category = category
	subject.CategoryLabel = rule.Label
	subject.CategoryColor = rule.Color
}

// ComputeStudent adjusts every subject and derives the student's overall
// standing. The overall percentage is not an average of subject percentages:
// it is a re-derived ratio of summed attended counts (adjusted where the
// subject was adjusted, raw otherwise) over summed raw conducted counts.
// A student with zero subjects is critical at 0%.
func (e *Engine) ComputeStudent(studentID, studentName string, subjects []domain.SubjectAttendance) domain.StudentAttendance {
	student := domain.StudentAttendance{
		StudentID:   studentID,
		StudentName: studentName,
		Subjects:    subjects,
	}

	if len(subjects) == 0 {
		student.OverallPercentage = 0.0
		student.OverallCategory = domain.CategoryCritical
		return student
	}

	totalConducted := 0
	totalAttended := 0
	for i := range student.Subjects {
		e.AdjustSubject(&student.Subjects[i])
		totalConducted += student.Subjects[i].ClassesConducted
		totalAttended += student.Subjects[i].AdjustedAttended()
	}

	student.OverallPercentage = Percentage(totalAttended, totalConducted)
	student.OverallCategory = CategoryFor(student.OverallPercentage)
	return student
}

// Distribution tallies overall categories across a cohort into the four
// fixed buckets, zero-filled.
func (e *Engine) Distribution(students []domain.StudentAttendance) domain.CategoryDistribution {
	dist := domain.NewCategoryDistribution()
	for _, s := range students {
		if _, ok := dist[s.OverallCategory]; ok {
			dist[s.OverallCategory]++
		}
	}
	return dist
}
