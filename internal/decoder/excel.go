package decoder

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"proformacli/internal/dataprocessing"
)

// maxHeaderScan bounds how deep into a sheet the header-row search looks.
const maxHeaderScan = 25

// headerKeywords mark a row as a plausible attendance header.
var headerKeywords = []string{
	"student", "roll", "regno", "subject", "course", "attend", "class",
}

// Sheet is one worksheet's raw cell grid.
type Sheet struct {
	Name string
	Rows [][]string
}

// ExcelDecoder reads .xlsx/.xls workbooks into Sheets.
type ExcelDecoder struct {
	logger *slog.Logger
}

// NewExcelDecoder creates a workbook decoder.
func NewExcelDecoder(logger *slog.Logger) *ExcelDecoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelDecoder{logger: logger}
}

// DecodeFile opens a workbook from disk and returns its sheets.
func (d *ExcelDecoder) DecodeFile(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return d.decode(f)
}

// Decode reads a workbook from a stream and returns its sheets.
func (d *ExcelDecoder) Decode(r io.Reader) ([]Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return d.decode(f)
}

func (d *ExcelDecoder) decode(f *excelize.File) ([]Sheet, error) {
	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			d.logger.Warn("skipping unreadable sheet",
				slog.String("sheet", name),
				slog.String("error", err.Error()))
			continue
		}
		if len(rows) < 2 {
			continue
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook contains no data sheets")
	}

	d.logger.Debug("workbook decoded", slog.Int("sheets", len(sheets)))
	return sheets, nil
}

// CandidateOffsets returns the row offsets that look like attendance header
// rows, in scan order. Offsets beyond maxHeaderScan are never considered.
func (s Sheet) CandidateOffsets() []int {
	var offsets []int
	limit := len(s.Rows)
	if limit > maxHeaderScan {
		limit = maxHeaderScan
	}
	for i := 0; i < limit; i++ {
		if !looksLikeHeader(s.Rows[i]) {
			continue
		}
		// A header with no data rows beneath it is a dead end.
		if !hasDataBelow(s.Rows, i) {
			continue
		}
		offsets = append(offsets, i)
	}
	return offsets
}

// TableAt materializes the table anchored at the given header offset: the
// header row becomes the label list and every following row a RawRow keyed
// by those labels. Blank labels are dropped; ragged rows are padded by
// omission.
func (s Sheet) TableAt(offset int) ([]string, []dataprocessing.RawRow) {
	if offset < 0 || offset >= len(s.Rows) {
		return nil, nil
	}

	var labels []string
	header := s.Rows[offset]
	columns := make([]int, 0, len(header))
	for i, cell := range header {
		label := strings.TrimSpace(cell)
		if label == "" {
			continue
		}
		labels = append(labels, label)
		columns = append(columns, i)
	}

	rows := make([]dataprocessing.RawRow, 0, len(s.Rows)-offset-1)
	for _, raw := range s.Rows[offset+1:] {
		if isBlankRow(raw) {
			continue
		}
		row := make(dataprocessing.RawRow, len(labels))
		for j, col := range columns {
			if col < len(raw) {
				row[labels[j]] = raw[col]
			}
		}
		rows = append(rows, row)
	}
	return labels, rows
}

func looksLikeHeader(row []string) bool {
	text := strings.ToLower(strings.Join(row, " "))
	for _, kw := range headerKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func hasDataBelow(rows [][]string, offset int) bool {
	for _, row := range rows[offset+1:] {
		if !isBlankRow(row) {
			return true
		}
	}
	return false
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
