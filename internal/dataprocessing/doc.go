// Package dataprocessing normalizes raw attendance tables into canonical
// records. It is the first half of the analysis pipeline.
//
// # Architecture
//
// The package is organized into two components:
//
// 1. Resolver: maps arbitrary column headers to canonical field names using
// fuzzy similarity scoring against curated pattern lists
// 2. Normalizer: converts raw label→value rows into validated
// domain.AttendanceRecord values, dropping malformed rows
//
// # Data Flow
//
//	column labels → Resolver → HeaderMapping
//	raw rows + HeaderMapping → Normalizer → []domain.AttendanceRecord
//
// Header resolution runs once per table; normalization once per row. Both
// components are stateless apart from their loggers and safe to call from
// concurrent analyses.
//
// # Error Handling
//
// Resolution failure for a required field surfaces as ErrUnresolvableHeaders
// so callers can retry with a different header-row candidate. Individual bad
// rows are never surfaced as errors; they only shrink the output. A run that
// yields zero records is reported by the caller as ErrNoValidRecords,
// distinct from unresolvable headers.
package dataprocessing
