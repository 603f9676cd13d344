package dataprocessing

import (
	"errors"
)

// Canonical field names. These are the only keys a HeaderMapping may claim.
const (
	FieldStudentID        = "student_id"
	FieldStudentName      = "student_name"
	FieldSubjectCode      = "subject_code"
	FieldSubjectName      = "subject_name"
	FieldClassesConducted = "classes_conducted"
	FieldClassesAttended  = "classes_attended"
	FieldODCount          = "od_count"
	FieldMLCount          = "ml_count"
)

var (
	// ErrUnresolvableHeaders indicates one or more required fields could not
	// be matched above the acceptance threshold. Blocks all downstream
	// processing for the table.
	ErrUnresolvableHeaders = errors.New("could not identify required attendance columns")

	// ErrNoValidRecords indicates normalization produced zero usable records
	// even though headers resolved.
	ErrNoValidRecords = errors.New("no valid attendance records found")
)

// RawRow is one table row as produced by the decoding layer: an arbitrary
// column label mapped to the raw cell text. Ephemeral; consumed immediately
// by the normalizer.
type RawRow map[string]string

// FieldMatch records which label matched a canonical field and at what
// confidence. Diagnostic only.
type FieldMatch struct {
	Field      string  `json:"field"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// HeaderMapping maps canonical field names to the raw column labels that
// were claimed for them. One label is used at most once and one field is
// claimed at most once. Built fresh per table and discarded afterwards.
type HeaderMapping struct {
	fields map[string]string

	// Matches holds per-field diagnostics in resolution order, including
	// fields that were left unmapped (Label empty, Confidence 0).
	Matches []FieldMatch
}

// Label returns the raw column label claimed for the given canonical field.
func (m *HeaderMapping) Label(field string) (string, bool) {
	label, ok := m.fields[field]
	return label, ok
}

// Has reports whether the canonical field was mapped.
func (m *HeaderMapping) Has(field string) bool {
	_, ok := m.fields[field]
	return ok
}

// Len returns the number of mapped fields.
func (m *HeaderMapping) Len() int {
	return len(m.fields)
}
