// Package decoder reads attendance workbooks into raw tabular form for the
// normalization pipeline. It owns the header-row search: institutional
// exports bury the header under title banners and merged cells at varying
// offsets, so each sheet exposes an ordered list of candidate header offsets
// for the caller to try until header resolution succeeds.
package decoder
