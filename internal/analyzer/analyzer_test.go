package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jperrin/job-set-match/internal/models"
)

var existingLetter = models.CoverLetter{Content: "lettre existante"}

const validResponse = `{
  "jobSummary": {"jobTitle": "Data Engineer", "jobCompany": "TechCo", "jobLocation": "Paris", "jobOverview": "Pipelines", "jobFailureFactors": [], "jobPainPointsAnalysis": []},
  "careerFitAnalysis": {"careerAnalysis": ["Bon alignement"], "careerDevelopmentRating": 8},
  "profileMatchAssessment": {"profileMatchAnalysis": ["Profil adapté"], "matchCompatibilityRating": 7},
  "competitiveProfile": {"competitiveAnalysis": ["Expérience rare"], "successProbabilityRating": 6},
  "strategicRecommendations": {"shouldApply": {"decision": true, "explanation": "Postulez", "chanceRating": 7.5}, "keyPointsInJobOffer": [], "matchingPointsWithProfile": [], "keyWordsToUse": [], "preparationSteps": "", "interviewFocusAreas": ""},
  "offerContent": "Offre complète"
}`

type fakeLLM struct {
	mu           sync.Mutex
	analyzeResp  string
	analyzeErr   error
	repairResp   string
	repairCalls  int
	letterResp   string
	letterErr    error
	letterPrompt string
	concurrent   atomic.Int32
	maxObserved  atomic.Int32
}

func (f *fakeLLM) AnalyzeDocument(ctx context.Context, pdfData []byte) (string, int32, error) {
	cur := f.concurrent.Add(1)
	defer f.concurrent.Add(-1)
	for {
		old := f.maxObserved.Load()
		if cur <= old || f.maxObserved.CompareAndSwap(old, cur) {
			break
		}
	}
	if f.analyzeErr != nil {
		return "", 0, f.analyzeErr
	}
	return f.analyzeResp, 1000, nil
}

func (f *fakeLLM) GenerateCoverLetter(ctx context.Context, prompt string) (string, int32, error) {
	f.mu.Lock()
	f.letterPrompt = prompt
	f.mu.Unlock()
	if f.letterErr != nil {
		return "", 0, f.letterErr
	}
	return f.letterResp, 500, nil
}

func (f *fakeLLM) RepairJSON(ctx context.Context, malformed string) (string, int32, error) {
	f.mu.Lock()
	f.repairCalls++
	f.mu.Unlock()
	return f.repairResp, 200, nil
}

func writeTestPDF(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0644); err != nil {
		t.Fatalf("Failed to write test PDF: %v", err)
	}
	return path
}

func TestAnalyzePDF(t *testing.T) {
	llm := &fakeLLM{analyzeResp: validResponse}
	a := New(llm, 0.00001, 3)

	analysis, err := a.AnalyzePDF(context.Background(), writeTestPDF(t, "offer.pdf"))
	if err != nil {
		t.Fatalf("AnalyzePDF failed: %v", err)
	}

	if analysis.FileName != "offer.pdf" {
		t.Errorf("Expected file name offer.pdf, got %q", analysis.FileName)
	}
	if analysis.NoteTotal != 28.5 {
		t.Errorf("Expected note total 28.5, got %f", analysis.NoteTotal)
	}
	if analysis.AnalysisCost != 0.01 {
		t.Errorf("Expected cost 0.01 for 1000 tokens, got %f", analysis.AnalysisCost)
	}
	if analysis.OfferContent != "Offre complète" {
		t.Errorf("Expected offer content preserved, got %q", analysis.OfferContent)
	}
}

func TestAnalyzePDFStripsFences(t *testing.T) {
	llm := &fakeLLM{analyzeResp: "```json\n" + validResponse + "\n```"}
	a := New(llm, 0.00001, 3)

	if _, err := a.AnalyzePDF(context.Background(), writeTestPDF(t, "offer.pdf")); err != nil {
		t.Fatalf("Expected fenced response to parse, got: %v", err)
	}
}

func TestAnalyzePDFRepairsMalformedResponse(t *testing.T) {
	llm := &fakeLLM{analyzeResp: "sorry, here is the analysis: {", repairResp: validResponse}
	a := New(llm, 0.00001, 3)

	analysis, err := a.AnalyzePDF(context.Background(), writeTestPDF(t, "offer.pdf"))
	if err != nil {
		t.Fatalf("Expected repair to recover the analysis, got: %v", err)
	}
	if llm.repairCalls != 1 {
		t.Errorf("Expected exactly one repair call, got %d", llm.repairCalls)
	}
	// 1000 analysis tokens + 200 repair tokens
	if analysis.AnalysisCost != 0.012 {
		t.Errorf("Expected repair tokens included in cost, got %f", analysis.AnalysisCost)
	}
}

func TestAnalyzePDFFailsWhenRepairUnusable(t *testing.T) {
	llm := &fakeLLM{analyzeResp: "not json", repairResp: "still not json"}
	a := New(llm, 0.00001, 3)

	if _, err := a.AnalyzePDF(context.Background(), writeTestPDF(t, "offer.pdf")); err == nil {
		t.Fatal("Expected error when repair response is still malformed")
	}
}

func TestAnalyzePDFMissingFile(t *testing.T) {
	a := New(&fakeLLM{analyzeResp: validResponse}, 0.00001, 3)

	if _, err := a.AnalyzePDF(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatal("Expected error for missing PDF")
	}
}

func TestAnalyzeAll(t *testing.T) {
	llm := &fakeLLM{analyzeResp: validResponse}
	a := New(llm, 0.00001, 2)

	dir := t.TempDir()
	var paths []string
	for i := 0; i < 6; i++ {
		path := filepath.Join(dir, fmt.Sprintf("offer_%d.pdf", i))
		if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0644); err != nil {
			t.Fatalf("Failed to write test PDF: %v", err)
		}
		paths = append(paths, path)
	}

	results := a.AnalyzeAll(context.Background(), paths)

	if len(results) != len(paths) {
		t.Fatalf("Expected %d results, got %d", len(paths), len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("Unexpected error for %s: %v", r.Path, r.Err)
		}
		if r.Analysis == nil {
			t.Errorf("Expected analysis for %s", r.Path)
		}
	}
	if max := llm.maxObserved.Load(); max > 2 {
		t.Errorf("Expected at most 2 concurrent analyses, observed %d", max)
	}
}

func TestAnalyzeAllIsolatesFailures(t *testing.T) {
	llm := &fakeLLM{analyzeResp: validResponse}
	a := New(llm, 0.00001, 2)

	good := writeTestPDF(t, "good.pdf")
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	results := a.AnalyzeAll(context.Background(), []string{missing, good})

	if results[0].Err == nil {
		t.Error("Expected error for missing file")
	}
	if results[1].Err != nil {
		t.Errorf("Expected good file to succeed despite sibling failure: %v", results[1].Err)
	}
}

func TestGenerateCoverLetter(t *testing.T) {
	llm := &fakeLLM{analyzeResp: validResponse, letterResp: "Madame, Monsieur,\n\nVotre offre..."}
	a := New(llm, 0.00001, 3)

	analysis, err := a.AnalyzePDF(context.Background(), writeTestPDF(t, "offer.pdf"))
	if err != nil {
		t.Fatalf("AnalyzePDF failed: %v", err)
	}

	cl, err := a.GenerateCoverLetter(context.Background(), analysis)
	if err != nil {
		t.Fatalf("GenerateCoverLetter failed: %v", err)
	}

	if !strings.HasPrefix(cl.Content, "Madame, Monsieur,") {
		t.Errorf("Unexpected letter content: %q", cl.Content)
	}
	if cl.GenerationCost != 0.005 {
		t.Errorf("Expected cost 0.005 for 500 tokens, got %f", cl.GenerationCost)
	}
	if cl.GeneratedAt == "" {
		t.Error("Expected generation timestamp")
	}
	if !strings.Contains(llm.letterPrompt, "Offre complète") {
		t.Error("Expected prompt to carry the offer content")
	}
}

func TestGenerateCoverLetterReturnsExisting(t *testing.T) {
	llm := &fakeLLM{analyzeResp: validResponse, letterResp: "nouvelle lettre"}
	a := New(llm, 0.00001, 3)

	analysis, err := a.AnalyzePDF(context.Background(), writeTestPDF(t, "offer.pdf"))
	if err != nil {
		t.Fatalf("AnalyzePDF failed: %v", err)
	}
	analysis.CoverLetter = &existingLetter

	cl, err := a.GenerateCoverLetter(context.Background(), analysis)
	if err != nil {
		t.Fatalf("GenerateCoverLetter failed: %v", err)
	}
	if cl.Content != "lettre existante" {
		t.Errorf("Expected existing letter returned untouched, got %q", cl.Content)
	}
	if llm.letterPrompt != "" {
		t.Error("Expected no model call for existing letter")
	}
}
