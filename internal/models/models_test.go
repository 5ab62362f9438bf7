package models

import (
	"encoding/json"
	"strings"
	"testing"
)

const sampleResponse = `{
  "jobSummary": {
    "jobTitle": "Data Engineer",
    "jobCompany": "TechCo",
    "jobLocation": "Paris",
    "jobOverview": "Build data pipelines",
    "jobFailureFactors": ["High turnover"],
    "jobPainPointsAnalysis": ["Legacy stack"]
  },
  "careerFitAnalysis": {
    "careerAnalysis": ["Good growth potential"],
    "careerDevelopmentRating": 8
  },
  "profileMatchAssessment": {
    "profileMatchAnalysis": ["Strong match on Python"],
    "matchCompatibilityRating": 7
  },
  "competitiveProfile": {
    "competitiveAnalysis": ["Rare combination of skills"],
    "successProbabilityRating": 6
  },
  "strategicRecommendations": {
    "shouldApply": {
      "decision": true,
      "explanation": "Worth applying",
      "chanceRating": 7.5
    },
    "keyPointsInJobOffer": ["Cloud migration"],
    "matchingPointsWithProfile": ["Team leadership"],
    "keyWordsToUse": ["dbt", "Airflow"],
    "preparationSteps": "Review their blog",
    "interviewFocusAreas": "Data modeling"
  },
  "offerContent": "Full offer text"
}`

func TestParseAnalysis(t *testing.T) {
	a, err := ParseAnalysis([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("Failed to parse analysis: %v", err)
	}

	if a.JobSummary.JobCompany != "TechCo" {
		t.Errorf("Expected company 'TechCo', got '%s'", a.JobSummary.JobCompany)
	}
	if a.CareerFitAnalysis.CareerDevelopmentRating != 8 {
		t.Errorf("Expected career rating 8, got %f", a.CareerFitAnalysis.CareerDevelopmentRating)
	}
	if !a.StrategicRecommendations.ShouldApply.Decision {
		t.Error("Expected shouldApply decision true")
	}
	if a.OfferContent != "Full offer text" {
		t.Errorf("Expected offer content preserved, got '%s'", a.OfferContent)
	}
}

func TestParseAnalysisMissingSection(t *testing.T) {
	truncated := strings.Replace(sampleResponse, `"competitiveProfile"`, `"somethingElse"`, 1)

	if _, err := ParseAnalysis([]byte(truncated)); err == nil {
		t.Error("Expected error for missing competitiveProfile section")
	}
}

func TestParseAnalysisInvalidJSON(t *testing.T) {
	if _, err := ParseAnalysis([]byte("not json at all")); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestComputeNoteTotal(t *testing.T) {
	a, err := ParseAnalysis([]byte(sampleResponse))
	if err != nil {
		t.Fatalf("Failed to parse analysis: %v", err)
	}

	// 8 + 7 + 6 + 7.5
	expected := 28.5
	if got := a.ComputeNoteTotal(); got != expected {
		t.Errorf("Expected note total %f, got %f", expected, got)
	}
}

func TestDefaultsForMissingFields(t *testing.T) {
	minimal := `{
      "jobSummary": {"jobTitle": "X", "jobCompany": "Y"},
      "careerFitAnalysis": {},
      "profileMatchAssessment": {},
      "competitiveProfile": {},
      "strategicRecommendations": {}
    }`

	a, err := ParseAnalysis([]byte(minimal))
	if err != nil {
		t.Fatalf("Failed to parse minimal analysis: %v", err)
	}

	if got := a.JobSummary.FailureFactors(); len(got) != 1 || got[0] != "Aucun facteur identifié" {
		t.Errorf("Expected failure factor placeholder, got %v", got)
	}
	if got := a.StrategicRecommendations.KeyWords(); len(got) != 1 || got[0] != "Aucun" {
		t.Errorf("Expected keyword placeholder, got %v", got)
	}
	if a.ComputeNoteTotal() != 0 {
		t.Errorf("Expected zero note total, got %f", a.ComputeNoteTotal())
	}
}

func TestAnalysisEnvelopeSerialization(t *testing.T) {
	a := Analysis{
		FileName:     "techco_data_engineer_20250101120000.pdf",
		NoteTotal:    28.5,
		AnalysisCost: 0.05,
		CoverLetter: &CoverLetter{
			Content:        "Madame, Monsieur,",
			GeneratedAt:    "2025-01-01T12:00:00Z",
			GenerationCost: 0.01,
		},
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Failed to marshal analysis: %v", err)
	}

	for _, key := range []string{`"file_name"`, `"note_total"`, `"analysis_cost"`, `"forget"`, `"cover_letter"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected serialized analysis to contain %s", key)
		}
	}

	var decoded Analysis
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal analysis: %v", err)
	}
	if decoded.CoverLetter == nil || decoded.CoverLetter.Content != "Madame, Monsieur," {
		t.Error("Cover letter did not round-trip")
	}
}
