// Package http contains the chi HTTP handlers for the attendance analysis
// API: upload intake, analysis runs and retrieval, report downloads, and
// health checks. Errors are rendered as RFC 7807 problem documents.
package http
