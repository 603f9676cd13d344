package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"proformacli/internal/attendance"
	"proformacli/internal/config"
	"proformacli/internal/decoder"
	"proformacli/internal/exporter"
	"proformacli/internal/infrastructure"
	"proformacli/internal/services"
	"proformacli/internal/validation"
	"proformacli/pkg/contracts/domain"
)

func main() {
	filePath := flag.String("file", "", "path to the attendance workbook (.xlsx)")
	regulation := flag.String("regulation", "", "merge policy: legacy or current (defaults to configured value)")
	threshold := flag.Float64("threshold", 0, "OD/ML adjustment threshold override (0 keeps configured value)")
	outputDir := flag.String("out", "", "directory for the styled report (empty skips the report)")
	flag.Parse()

	if *filePath == "" {
		slog.Error("Missing required -file flag")
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.Default()
	if *threshold > 0 {
		cfg.Attendance.AdjustmentThreshold = *threshold
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()
	slog.SetDefault(logger)

	validator := validation.NewFileValidator(cfg.Upload, logger)
	if err := validator.ValidateWorkbookFile(*filePath); err != nil {
		logger.Error("Workbook rejected", "path", *filePath, "error", err)
		os.Exit(1)
	}

	info, err := os.Stat(*filePath)
	if err != nil {
		logger.Error("Failed to stat workbook", "path", *filePath, "error", err)
		os.Exit(1)
	}

	upload := domain.Upload{
		ID:         uuid.New().String(),
		Filename:   filepath.Base(*filePath),
		Path:       *filePath,
		Size:       info.Size(),
		UploadedAt: time.Now(),
	}

	svc := services.NewAnalysisService(decoder.NewExcelDecoder(logger), cfg.Attendance, logger)

	ctx := context.Background()
	result, err := svc.Analyze(ctx, upload, *regulation)
	if err != nil {
		logger.Error("Analysis failed", "path", *filePath, "error", err)
		os.Exit(1)
	}

	printSummary(result)

	if *outputDir != "" {
		if err := validator.ValidateOutputDirectory(*outputDir); err != nil {
			logger.Error("Output directory not writable", "dir", *outputDir, "error", err)
			os.Exit(1)
		}
		reportPath := filepath.Join(*outputDir,
			fmt.Sprintf("attendance-report-%s.xlsx", time.Now().Format("20060102")))
		out, err := os.Create(reportPath)
		if err != nil {
			logger.Error("Failed to create report file", "path", reportPath, "error", err)
			os.Exit(1)
		}
		exportErr := exporter.NewExcelExporter(logger).ExportTo(out, result)
		if closeErr := out.Close(); exportErr == nil {
			exportErr = closeErr
		}
		if exportErr != nil {
			logger.Error("Failed to write report", "path", reportPath, "error", exportErr)
			os.Exit(1)
		}
		logger.Info("Report written", "path", reportPath)
	}
}

func printSummary(result *domain.AnalysisResult) {
	fmt.Printf("Regulation:     %s\n", result.Regulation)
	fmt.Printf("Rows parsed:    %d of %d\n", result.ParsedRecords, result.TotalRows)
	fmt.Printf("Students:       %d\n", result.TotalStudents)
	fmt.Printf("Subjects:       %d\n", result.TotalSubjects)
	fmt.Println()

	fmt.Println("Category distribution:")
	for _, category := range domain.Categories() {
		rule := attendance.RuleFor(category)
		fmt.Printf("  %-22s %d\n", rule.Label, result.CategoryDistribution[category])
	}

	critical := result.CriticalStudents()
	if len(critical) == 0 {
		fmt.Println("\nNo students in the critical band.")
		return
	}

	fmt.Printf("\nCritical students (%d):\n", len(critical))
	for _, student := range critical {
		fmt.Printf("  %-12s %-30s %6.2f%%\n",
			student.StudentID, student.StudentName, student.OverallPercentage)
		for _, subject := range student.Subjects {
			if subject.Category == domain.CategoryCritical {
				fmt.Printf("    %-12s %6.2f%%\n", subject.SubjectCode, subject.FinalPercentage)
			}
		}
	}
}
