// Package files stores uploaded workbooks on disk and tracks them by
// generated identifier so later analysis and report requests can find
// the original file.
package files
