package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"
)

// Similarity thresholds and scores for header matching.
const (
	scoreExact     = 1.0
	scoreContains  = 0.9
	matchThreshold = 0.6
)

// fieldPatterns lists the known header phrasings for each canonical field.
// Static, process-wide, read-only.
var fieldPatterns = map[string][]string{
	FieldStudentID: {
		"student id", "roll", "roll no", "roll number", "rollno", "regno",
		"reg no", "regn", "regn.", "regn no", "registration",
		"student number", "id", "student_id", "roll_no",
	},
	FieldStudentName: {
		"student name", "name", "student", "full name",
		"student_name", "studentname",
	},
	FieldSubjectCode: {
		"subject code", "course code", "sub code", "code", "subject",
		"course", "subject_code", "subjectcode", "coursecode",
	},
	FieldSubjectName: {
		"subject name", "course name", "sub name", "coursename",
		"subjectname", "subject_name", "course_name",
	},
	FieldClassesConducted: {
		"conducted", "total class", "classes conducted", "total hours",
		"no. of hours conducted", "no.of hours conducted", "hours conducted",
		"classes held", "total", "no of classes", "classes_conducted",
		"total_classes", "no of hours", "hours held",
	},
	FieldClassesAttended: {
		"attended", "present", "no. of hours attended", "no.of hours attended",
		"hours attended", "classes attended", "attend", "no of hours attended",
		"attendance", "no. of present", "present class", "classes_attended",
		"no of attended",
	},
	FieldODCount: {
		"od", "on duty", "onduty", "on-duty", "duty", "od count",
		"od_count", "on_duty",
	},
	FieldMLCount: {
		"ml", "medical", "medical leave", "medicalleave", "medical-leave",
		"ml count", "ml_count", "medical_leave",
	},
}

// resolutionOrder fixes the field priority. Identity and count columns are
// least ambiguous and must be locked in first so that later, vaguer patterns
// cannot steal them.
var resolutionOrder = []string{
	FieldStudentID,
	FieldSubjectCode,
	FieldClassesConducted,
	FieldClassesAttended,
	FieldStudentName,
	FieldSubjectName,
	FieldODCount,
	FieldMLCount,
}

// requiredFields must all resolve for a table to be usable.
var requiredFields = []string{
	FieldStudentID,
	FieldSubjectCode,
	FieldClassesConducted,
	FieldClassesAttended,
}

// Resolver maps raw column labels to canonical field names. Stateless per
// call and safe to invoke repeatedly against different header-row candidates.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a header resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{logger: logger}
}

// Resolve builds a HeaderMapping for one table's column labels.
//
// Fields are processed in a fixed priority order; for each field the best
// scoring unclaimed label wins, greedily and without backtracking. Ties break
// toward the first label in original column order. A match below the
// acceptance threshold leaves the field unmapped. If any required field
// remains unmapped the table is unusable and ErrUnresolvableHeaders is
// returned; the caller may retry with a different header-row candidate.
func (r *Resolver) Resolve(labels []string) (*HeaderMapping, error) {
	mapping := &HeaderMapping{fields: make(map[string]string, len(resolutionOrder))}
	claimed := make(map[string]bool, len(labels))

	for _, field := range resolutionOrder {
		label, score := bestMatch(labels, fieldPatterns[field], claimed)
		if label == "" {
			mapping.Matches = append(mapping.Matches, FieldMatch{Field: field})
			r.logger.Debug("header field unmapped", slog.String("field", field))
			continue
		}
		mapping.fields[field] = label
		claimed[label] = true
		mapping.Matches = append(mapping.Matches, FieldMatch{
			Field:      field,
			Label:      label,
			Confidence: score,
		})
		r.logger.Debug("header field mapped",
			slog.String("field", field),
			slog.String("label", label),
			slog.Float64("confidence", score))
	}

	var missing []string
	for _, field := range requiredFields {
		if !mapping.Has(field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrUnresolvableHeaders, strings.Join(missing, ", "))
	}
	return mapping, nil
}

// bestMatch finds the highest scoring unclaimed label for a pattern list.
// Returns ("", 0) when nothing reaches the acceptance threshold. The strict
// greater-than comparison makes earlier labels win ties, so resolution is
// independent of pattern order but deterministic in column order.
func bestMatch(labels, patterns []string, claimed map[string]bool) (string, float64) {
	var best string
	var bestScore float64

	for _, label := range labels {
		if claimed[label] {
			continue
		}
		for _, pattern := range patterns {
			if score := matchScore(label, pattern); score > bestScore {
				bestScore = score
				best = label
			}
		}
	}
	if bestScore < matchThreshold {
		return "", 0
	}
	return best, bestScore
}

// matchScore computes the similarity between a column label and a pattern
// phrase: exact case/whitespace-insensitive match scores 1.0, substring
// containment either direction 0.9, otherwise a normalized subsequence
// ratio in [0,1].
func matchScore(label, pattern string) float64 {
	a := strings.ToLower(strings.TrimSpace(label))
	b := strings.ToLower(strings.TrimSpace(pattern))

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return scoreExact
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return scoreContains
	}
	return similarityRatio(a, b)
}

// similarityRatio is the classic 2*M/T sequence-match ratio, with M the
// length of the longest common subsequence and T the combined length.
func similarityRatio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	if len(ra)+len(rb) == 0 {
		return 0
	}

	// LCS over two rows of DP state.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return 2 * float64(prev[len(rb)]) / float64(len(ra)+len(rb))
}
