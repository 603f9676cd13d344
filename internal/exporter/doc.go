// Package exporter renders analysis results as downloadable spreadsheet
// reports. The workbook carries a cohort summary, a per-subject detail
// sheet colored by risk category, and a critical-students sheet.
package exporter
