package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jperrin/job-set-match/internal/ledger"
	"github.com/jperrin/job-set-match/internal/models"
)

// ToExcel writes the current batch of analyses and the API usage totals to
// an Excel workbook at outputPath.
func ToExcel(analyses []models.Analysis, usage ledger.APIUsage, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	summarySheet := "Summary"
	offersSheet := "Ranked Offers"
	costsSheet := "API Costs"

	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(offersSheet)
	f.NewSheet(costsSheet)

	if err := createSummarySheet(f, summarySheet, analyses); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createRankedOffersSheet(f, offersSheet, analyses); err != nil {
		return fmt.Errorf("failed to create ranked offers sheet: %w", err)
	}
	if err := createCostsSheet(f, costsSheet, usage); err != nil {
		return fmt.Errorf("failed to create costs sheet: %w", err)
	}

	// Direct save, with a buffer write fallback for filesystems that reject
	// the streamed save.
	if err := f.SaveAs(outputPath); err != nil {
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
}

func createSummarySheet(f *excelize.File, sheetName string, analyses []models.Analysis) error {
	f.SetColWidth(sheetName, "A", "A", 30)
	f.SetColWidth(sheetName, "B", "B", 50)

	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Job Offer Analysis Report")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), header)
	f.MergeCell(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row += 2

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Generated:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), time.Now().Format("2006-01-02 15:04:05"))
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Offers Analyzed:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), len(analyses))
	row++

	recommended := 0
	withLetter := 0
	var totalNote float64
	for _, a := range analyses {
		if a.StrategicRecommendations.ShouldApply.Decision {
			recommended++
		}
		if a.CoverLetter != nil {
			withLetter++
		}
		totalNote += a.NoteTotal
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Recommended Applications:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), recommended)
	row++

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Cover Letters Generated:")
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), withLetter)
	row++

	if len(analyses) > 0 {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Average Total Note:")
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), labelStyle)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), fmt.Sprintf("%.1f", totalNote/float64(len(analyses))))
	}

	return nil
}

func createRankedOffersSheet(f *excelize.File, sheetName string, analyses []models.Analysis) error {
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 25)
	f.SetColWidth(sheetName, "C", "C", 30)
	f.SetColWidth(sheetName, "D", "D", 20)
	f.SetColWidth(sheetName, "E", "E", 12)
	f.SetColWidth(sheetName, "F", "F", 12)
	f.SetColWidth(sheetName, "G", "G", 12)
	f.SetColWidth(sheetName, "H", "H", 40)

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	applyStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	})
	skipStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"FFC7CE"}, Pattern: 1},
	})

	headers := []string{"Rank", "Company", "Position", "Location", "Total Note", "Chance", "Apply?", "File"}
	for col, h := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, header)
	}

	ranked := make([]models.Analysis, len(analyses))
	copy(ranked, analyses)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].NoteTotal > ranked[j].NoteTotal
	})

	for i, a := range ranked {
		row := i + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), a.JobSummary.JobCompany)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), a.JobSummary.JobTitle)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), a.JobSummary.JobLocation)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), fmt.Sprintf("%.1f", a.NoteTotal))
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("%.1f", a.StrategicRecommendations.ShouldApply.ChanceRating))
		decision := "non"
		style := skipStyle
		if a.StrategicRecommendations.ShouldApply.Decision {
			decision = "oui"
			style = applyStyle
		}
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), decision)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), a.FileName)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("H%d", row), style)
	}

	if len(ranked) > 0 {
		f.AutoFilter(sheetName, fmt.Sprintf("A1:H%d", len(ranked)+1), []excelize.AutoFilterOptions{})
	}
	f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

func createCostsSheet(f *excelize.File, sheetName string, usage ledger.APIUsage) error {
	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 15)

	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	f.SetCellValue(sheetName, "A1", "Metric")
	f.SetCellValue(sheetName, "B1", "Value")
	f.SetCellStyle(sheetName, "A1", "B1", header)

	rows := []struct {
		label string
		value interface{}
	}{
		{"Requests", usage.RequestsCount},
		{"Analysis Costs ($)", usage.AnalysisCosts},
		{"Cover Letter Costs ($)", usage.CoverLetterCosts},
		{"Total Cost ($)", usage.TotalCost},
	}
	for i, r := range rows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+2), r.label)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+2), r.value)
	}

	return nil
}
