// Package services wires the decoding, header resolution, normalization,
// merging and attendance computation stages into the operations the
// transport layer and CLI expose: accepting uploads, running analyses,
// and answering health checks.
package services
