package attendance

import (
	"log/slog"
	"strings"

	"proformacli/pkg/contracts/domain"
)

// Merger groups a student's raw subject rows into logical subjects under a
// regulation policy and aggregates each group. Holds no state beyond its
// policy; safe for concurrent use.
type Merger struct {
	policy Policy
	logger *slog.Logger
}

// NewMerger creates a merger for the given regulation policy.
func NewMerger(policy Policy, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{policy: policy, logger: logger}
}

// StudentGroup is one student's merged subjects in first-encounter order,
// prior to percentage computation.
type StudentGroup struct {
	StudentID   string
	StudentName string
	Subjects    []domain.SubjectAttendance
}

// ExtractBaseCode derives the merge key and component kind from a raw
// subject code under the given policy. Pure function of its inputs.
//
// Under PolicyCurrent a bare code that happens to end in the lab marker is
// still parsed as a lab fragment of its stripped prefix, even when no theory
// row exists; the upstream regulation leaves that case ambiguous and this
// implementation deliberately does not special-case it.
func ExtractBaseCode(code string, policy Policy) (string, SubjectKind) {
	code = strings.ToUpper(strings.TrimSpace(code))

	if policy == PolicyCurrent {
		if strings.HasSuffix(code, labMarker) {
			return strings.TrimSuffix(code, labMarker), KindLab
		}
		return code, KindTheory
	}

	// Legacy: drop the regulation suffix before marker detection, then
	// re-append it so bases differing only in that suffix compare equal.
	clean := code
	for _, s := range regulationSuffixes {
		clean = strings.ReplaceAll(clean, s, "")
	}
	suffix := ""
	if i := strings.Index(code, "-R"); i >= 0 {
		suffix = code[i:]
	}

	switch {
	case strings.HasSuffix(clean, theoryMarker):
		return strings.TrimSuffix(clean, theoryMarker) + suffix, KindTheory
	case strings.HasSuffix(clean, labMarker):
		return strings.TrimSuffix(clean, labMarker) + suffix, KindLab
	default:
		return code, KindStandalone
	}
}

// Merge partitions the records per student by base code and aggregates each
// partition into one SubjectAttendance. Students appear in first-encounter
// order (callers sort by id for stable output); subjects within a student
// follow first-encounter order during grouping.
func (m *Merger) Merge(records []domain.AttendanceRecord) []StudentGroup {
	type subjectBucket struct {
		base    string
		records []domain.AttendanceRecord
	}
	type studentBucket struct {
		id     string
		name   string
		order  []*subjectBucket
		byBase map[string]*subjectBucket
	}

	var order []*studentBucket
	students := make(map[string]*studentBucket)

	for _, rec := range records {
		student, ok := students[rec.StudentID]
		if !ok {
			student = &studentBucket{
				id:     rec.StudentID,
				byBase: make(map[string]*subjectBucket),
			}
			students[rec.StudentID] = student
			order = append(order, student)
		}
		if student.name == "" {
			student.name = rec.StudentName
		}

		base, _ := ExtractBaseCode(rec.SubjectCode, m.policy)
		bucket, ok := student.byBase[base]
		if !ok {
			bucket = &subjectBucket{base: base}
			student.byBase[base] = bucket
			student.order = append(student.order, bucket)
		}
		bucket.records = append(bucket.records, rec)
	}

	groups := make([]StudentGroup, 0, len(order))
	for _, student := range order {
		subjects := make([]domain.SubjectAttendance, 0, len(student.order))
		for _, bucket := range student.order {
			subjects = append(subjects, m.mergeGroup(bucket.records))
		}
		groups = append(groups, StudentGroup{
			StudentID:   student.id,
			StudentName: student.name,
			Subjects:    subjects,
		})
	}

	m.logger.Debug("subjects merged",
		slog.String("policy", m.policy.String()),
		slog.Int("records", len(records)),
		slog.Int("students", len(groups)))
	return groups
}

// mergeGroup aggregates one non-empty partition. An empty partition means
// the grouping step itself is broken, which is a defect, not an input
// problem.
func (m *Merger) mergeGroup(records []domain.AttendanceRecord) domain.SubjectAttendance {
	if len(records) == 0 {
		panic("attendance: merge invoked on empty record group")
	}

	if len(records) == 1 {
		rec := records[0]
		return domain.SubjectAttendance{
			SubjectCode:      rec.SubjectCode,
			SubjectName:      rec.SubjectName,
			ClassesConducted: rec.ClassesConducted,
			ClassesAttended:  rec.ClassesAttended,
			ODCount:          rec.ODCount,
			MLCount:          rec.MLCount,
		}
	}

	base, _ := ExtractBaseCode(records[0].SubjectCode, m.policy)
	merged := domain.SubjectAttendance{
		SubjectCode:  base,
		IsCombined:   true,
		CombinedFrom: make([]string, 0, len(records)),
		Components:   make([]domain.SubjectComponent, 0, len(records)),
	}

	for _, rec := range records {
		merged.CombinedFrom = append(merged.CombinedFrom, rec.SubjectCode)
		merged.Components = append(merged.Components, domain.SubjectComponent{
			SubjectCode:      rec.SubjectCode,
			SubjectName:      rec.SubjectName,
			ClassesConducted: rec.ClassesConducted,
			ClassesAttended:  rec.ClassesAttended,
			ODCount:          rec.ODCount,
			MLCount:          rec.MLCount,
			Percentage:       Percentage(rec.ClassesAttended, rec.ClassesConducted),
		})
		merged.ClassesConducted += rec.ClassesConducted
		merged.ClassesAttended += rec.ClassesAttended
		merged.ODCount += rec.ODCount
		merged.MLCount += rec.MLCount

		if merged.SubjectName == "" {
			merged.SubjectName = rec.SubjectName
		}
	}
	return merged
}
