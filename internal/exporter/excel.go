package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"proformacli/internal/attendance"
	"proformacli/pkg/contracts/domain"
)

const (
	sheetSummary  = "Summary"
	sheetDetails  = "Student Details"
	sheetCritical = "Critical Students"
)

// ExcelExporter renders an analysis result into a styled workbook.
type ExcelExporter struct {
	logger *slog.Logger
}

// NewExcelExporter creates a new exporter.
func NewExcelExporter(logger *slog.Logger) *ExcelExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelExporter{logger: logger}
}

// Export builds the report workbook for a result. The caller owns the
// returned file and must Close it.
func (e *ExcelExporter) Export(result *domain.AnalysisResult) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetSheetName("Sheet1", sheetSummary)
	if _, err := f.NewSheet(sheetDetails); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet %s: %w", sheetDetails, err)
	}
	if _, err := f.NewSheet(sheetCritical); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet %s: %w", sheetCritical, err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := e.writeSummary(f, result, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeDetails(f, result, headerStyle); err != nil {
		f.Close()
		return nil, err
	}
	if err := e.writeCritical(f, result, headerStyle); err != nil {
		f.Close()
		return nil, err
	}

	e.logger.Info("Report workbook generated",
		slog.String("upload_id", result.UploadID),
		slog.Int("students", result.TotalStudents))

	return f, nil
}

// ExportTo writes the report workbook directly to w.
func (e *ExcelExporter) ExportTo(w io.Writer, result *domain.AnalysisResult) error {
	f, err := e.Export(result)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write report workbook: %w", err)
	}
	return nil
}

func (e *ExcelExporter) writeSummary(f *excelize.File, result *domain.AnalysisResult, headerStyle int) error {
	rows := [][]interface{}{
		{"Attendance Analysis Report", ""},
		{"", ""},
		{"Processed At", result.ProcessedAt.Format("2006-01-02 15:04:05")},
		{"Regulation", strings.ToUpper(result.Regulation)},
		{"Total Students", result.TotalStudents},
		{"Total Subjects", result.TotalSubjects},
		{"Rows Parsed", fmt.Sprintf("%d of %d", result.ParsedRecords, result.TotalRows)},
		{"", ""},
		{"Category", "Students"},
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	f.SetRowStyle(sheetSummary, 9, 9, headerStyle)

	row := 10
	for _, category := range domain.Categories() {
		rule := attendance.RuleFor(category)
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{rule.Label, result.CategoryDistribution[category]}
		if err := f.SetSheetRow(sheetSummary, cell, &values); err != nil {
			return fmt.Errorf("failed to write distribution row: %w", err)
		}
		if err := e.fillCell(f, sheetSummary, fmt.Sprintf("A%d", row), rule.Color); err != nil {
			return err
		}
		row++
	}

	f.SetColWidth(sheetSummary, "A", "A", 25)
	f.SetColWidth(sheetSummary, "B", "B", 22)
	return nil
}

func (e *ExcelExporter) writeDetails(f *excelize.File, result *domain.AnalysisResult, headerStyle int) error {
	headers := []interface{}{
		"Student ID", "Student Name", "Subject", "Conducted", "Attended",
		"OD", "ML", "Original %", "Adjusted", "Final %", "Category",
	}
	if err := f.SetSheetRow(sheetDetails, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write detail headers: %w", err)
	}
	f.SetRowStyle(sheetDetails, 1, 1, headerStyle)

	row := 2
	for _, student := range result.Students {
		for _, subject := range student.Subjects {
			adjusted := "No"
			if subject.ODMLAdjusted {
				adjusted = "Yes"
			}
			values := []interface{}{
				student.StudentID,
				student.StudentName,
				subject.SubjectCode,
				subject.ClassesConducted,
				subject.ClassesAttended,
				subject.ODCount,
				subject.MLCount,
				subject.OriginalPercentage,
				adjusted,
				subject.FinalPercentage,
				subject.CategoryLabel,
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheetDetails, cell, &values); err != nil {
				return fmt.Errorf("failed to write detail row: %w", err)
			}
			if err := e.fillCell(f, sheetDetails, fmt.Sprintf("K%d", row), subject.CategoryColor); err != nil {
				return err
			}
			row++
		}
	}

	f.SetColWidth(sheetDetails, "A", "B", 18)
	f.SetColWidth(sheetDetails, "C", "C", 16)
	f.SetColWidth(sheetDetails, "D", "J", 11)
	f.SetColWidth(sheetDetails, "K", "K", 18)
	return nil
}

func (e *ExcelExporter) writeCritical(f *excelize.File, result *domain.AnalysisResult, headerStyle int) error {
	headers := []interface{}{"Student ID", "Student Name", "Overall %", "Subjects Below 65%"}
	if err := f.SetSheetRow(sheetCritical, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write critical headers: %w", err)
	}
	f.SetRowStyle(sheetCritical, 1, 1, headerStyle)

	criticalColor := attendance.RuleFor(domain.CategoryCritical).Color

	row := 2
	for _, student := range result.CriticalStudents() {
		var below []string
		for _, subject := range student.Subjects {
			if subject.Category == domain.CategoryCritical {
				below = append(below, subject.SubjectCode)
			}
		}
		values := []interface{}{
			student.StudentID,
			student.StudentName,
			student.OverallPercentage,
			strings.Join(below, ", "),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheetCritical, cell, &values); err != nil {
			return fmt.Errorf("failed to write critical row: %w", err)
		}
		if err := e.fillCell(f, sheetCritical, fmt.Sprintf("C%d", row), criticalColor); err != nil {
			return err
		}
		row++
	}

	f.SetColWidth(sheetCritical, "A", "B", 18)
	f.SetColWidth(sheetCritical, "C", "C", 12)
	f.SetColWidth(sheetCritical, "D", "D", 40)
	return nil
}

func (e *ExcelExporter) fillCell(f *excelize.File, sheet, cell, color string) error {
	if color == "" {
		return nil
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create fill style: %w", err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("failed to apply fill style: %w", err)
	}
	return nil
}
