// Package analyzer turns offer PDFs into structured analyses via the LLM,
// with cost accounting and a one-shot recovery pass for malformed
// responses.
package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jperrin/job-set-match/internal/models"
	"github.com/jperrin/job-set-match/internal/offers"
	"github.com/jperrin/job-set-match/internal/prompts"
)

// LLM is the model backend used for analysis and generation.
type LLM interface {
	AnalyzeDocument(ctx context.Context, pdfData []byte) (string, int32, error)
	GenerateCoverLetter(ctx context.Context, prompt string) (string, int32, error)
	RepairJSON(ctx context.Context, malformed string) (string, int32, error)
}

// OfferAnalyzer analyzes job offer PDFs.
type OfferAnalyzer struct {
	llm           LLM
	tokenCost     float64
	maxConcurrent int
}

// Result pairs an analyzed offer path with its outcome.
type Result struct {
	Path     string
	Analysis *models.Analysis
	Err      error
}

// New creates an OfferAnalyzer. tokenCost is the cost per output token,
// maxConcurrent bounds parallel analyses.
func New(llm LLM, tokenCost float64, maxConcurrent int) *OfferAnalyzer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &OfferAnalyzer{
		llm:           llm,
		tokenCost:     tokenCost,
		maxConcurrent: maxConcurrent,
	}
}

// AnalyzePDF analyzes a single offer PDF. A malformed model response is
// re-asked once through the repair prompt before giving up.
func (o *OfferAnalyzer) AnalyzePDF(ctx context.Context, path string) (*models.Analysis, error) {
	pdfData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF %s: %w", path, err)
	}

	text, tokens, err := o.llm.AnalyzeDocument(ctx, pdfData)
	if err != nil {
		return nil, fmt.Errorf("analysis of %s failed: %w", filepath.Base(path), err)
	}
	totalTokens := tokens

	analysis, parseErr := models.ParseAnalysis([]byte(stripFences(text)))
	if parseErr != nil {
		log.Printf("Malformed analysis response for %s, requesting repair: %v", filepath.Base(path), parseErr)
		repaired, repairTokens, err := o.llm.RepairJSON(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("repair of malformed response for %s failed: %w", filepath.Base(path), err)
		}
		totalTokens += repairTokens
		analysis, parseErr = models.ParseAnalysis([]byte(stripFences(repaired)))
		if parseErr != nil {
			return nil, fmt.Errorf("analysis response for %s unusable after repair: %w", filepath.Base(path), parseErr)
		}
	}

	analysis.FileName = filepath.Base(path)
	analysis.NoteTotal = analysis.ComputeNoteTotal()
	analysis.AnalysisCost = float64(totalTokens) * o.tokenCost

	if analysis.OfferContent == "" {
		content, err := offers.ExtractText(path)
		if err != nil {
			log.Printf("Failed to extract text from %s: %v", filepath.Base(path), err)
		} else {
			analysis.OfferContent = content
		}
	}

	return analysis, nil
}

// AnalyzeAll analyzes the given PDFs with bounded parallelism. One failed
// offer never aborts the batch: each Result carries its own error.
func (o *OfferAnalyzer) AnalyzeAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)
	for i, path := range paths {
		g.Go(func() error {
			analysis, err := o.AnalyzePDF(gctx, path)
			results[i] = Result{Path: path, Analysis: analysis, Err: err}
			return nil
		})
	}
	g.Wait()

	return results
}

// GenerateCoverLetter produces a cover letter for an analyzed offer. If the
// analysis already carries one it is returned as is, without a new call.
func (o *OfferAnalyzer) GenerateCoverLetter(ctx context.Context, analysis *models.Analysis) (*models.CoverLetter, error) {
	if analysis.CoverLetter != nil {
		return analysis.CoverLetter, nil
	}

	strategy, err := json.MarshalIndent(analysis.StrategicRecommendations, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize recommendations: %w", err)
	}

	prompt := fmt.Sprintf(`%s

<job_offer>
%s
</job_offer>

<analysis>
%s
</analysis>`, prompts.GenerationPrompt, analysis.OfferContent, strategy)

	text, tokens, err := o.llm.GenerateCoverLetter(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("cover letter generation for %s failed: %w", analysis.FileName, err)
	}

	return &models.CoverLetter{
		Content:        strings.TrimSpace(text),
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		GenerationCost: float64(tokens) * o.tokenCost,
	}, nil
}

// stripFences removes a surrounding markdown code fence some models wrap
// around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
