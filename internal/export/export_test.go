package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jperrin/job-set-match/internal/ledger"
	"github.com/jperrin/job-set-match/internal/models"
)

func sampleAnalysis() models.Analysis {
	return models.Analysis{
		JobSummary: models.JobSummary{
			JobTitle:    "Data Engineer",
			JobCompany:  "TechCo",
			JobLocation: "Paris",
			JobOverview: "Construction de pipelines de données",
		},
		CareerFitAnalysis: models.CareerFitAnalysis{
			CareerAnalysis:          []string{"Bon alignement avec la trajectoire"},
			CareerDevelopmentRating: 8,
		},
		ProfileMatchAssessment: models.ProfileMatchAssessment{
			ProfileMatchAnalysis:     []string{"Profil adapté"},
			MatchCompatibilityRating: 7,
		},
		CompetitiveProfile: models.CompetitiveProfile{
			CompetitiveAnalysis:      []string{"Expérience rare sur le marché"},
			SuccessProbabilityRating: 6,
		},
		StrategicRecommendations: models.StrategicRecommendations{
			ShouldApply: models.ShouldApply{
				Decision:     true,
				Explanation:  "Candidature recommandée",
				ChanceRating: 7.5,
			},
			KeyPointsInJobOffer: []string{"Python", "GCP"},
			PreparationSteps:    "Réviser les pipelines",
		},
		OfferContent: "Texte complet de l'offre",
		FileName:     "techco_data_engineer_20250314150926.pdf",
		NoteTotal:    28.5,
	}
}

func TestMarkdown(t *testing.T) {
	a := sampleAnalysis()
	a.CoverLetter = &models.CoverLetter{Content: "Madame, Monsieur,"}

	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	got := Markdown(&a, now)

	for _, want := range []string{
		"status: applied",
		"applied: 2025-03-14",
		"Texte complet de l'offre",
		"# Analyse",
		"### Résumé de l'offre",
		"**Entreprise**: TechCo",
		"✅ oui - 7.5/10",
		"# Lettre de motivation",
		"Madame, Monsieur,",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Markdown output missing %q", want)
		}
	}
}

func TestMarkdownWithoutCoverLetter(t *testing.T) {
	a := sampleAnalysis()

	got := Markdown(&a, time.Now())

	if !strings.Contains(got, "# Lettre de motivation") {
		t.Error("Expected cover letter heading even without a letter")
	}
	if !strings.Contains(got, "- Aucun facteur identifié") {
		t.Error("Expected failure factor placeholder")
	}
}

func TestSummaryDecisionIcon(t *testing.T) {
	a := sampleAnalysis()
	a.StrategicRecommendations.ShouldApply.Decision = false

	if !strings.Contains(Summary(&a), "❌ non") {
		t.Error("Expected negative decision marker")
	}
}

func TestToExcel(t *testing.T) {
	low := sampleAnalysis()
	low.FileName = "other_offer.pdf"
	low.JobSummary.JobCompany = "OtherCo"
	low.NoteTotal = 12
	low.StrategicRecommendations.ShouldApply.Decision = false

	analyses := []models.Analysis{low, sampleAnalysis()}
	usage := ledger.APIUsage{
		TotalCost:        0.07,
		AnalysisCosts:    0.05,
		CoverLetterCosts: 0.02,
		RequestsCount:    3,
	}

	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := ToExcel(analyses, usage, path); err != nil {
		t.Fatalf("ToExcel failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("Failed to reopen workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Summary", "Ranked Offers", "API Costs"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("Expected sheet %q", sheet)
		}
	}

	// Highest note must rank first.
	company, err := f.GetCellValue("Ranked Offers", "B2")
	if err != nil {
		t.Fatalf("Failed to read cell: %v", err)
	}
	if company != "TechCo" {
		t.Errorf("Expected TechCo ranked first, got %q", company)
	}

	requests, err := f.GetCellValue("API Costs", "B2")
	if err != nil {
		t.Fatalf("Failed to read cell: %v", err)
	}
	if requests != "3" {
		t.Errorf("Expected 3 requests in costs sheet, got %q", requests)
	}
}

func TestToExcelAppendsExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report")
	if err := ToExcel(nil, ledger.APIUsage{}, path); err != nil {
		t.Fatalf("ToExcel failed: %v", err)
	}

	if _, err := os.Stat(path + ".xlsx"); err != nil {
		t.Errorf("Expected .xlsx extension to be appended: %v", err)
	}
}
