// Package app wires the offer pipeline together: intake, analysis,
// ledger accounting and exports.
package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/jperrin/job-set-match/internal/analyzer"
	"github.com/jperrin/job-set-match/internal/config"
	"github.com/jperrin/job-set-match/internal/export"
	"github.com/jperrin/job-set-match/internal/ledger"
	"github.com/jperrin/job-set-match/internal/models"
	"github.com/jperrin/job-set-match/internal/offers"
)

// App coordinates the offer lifecycle. Pipeline runs and ledger mutations
// are serialized: analyses run in parallel inside a batch, but only one
// batch runs at a time.
type App struct {
	Config   *config.Config
	Manager  *offers.Manager
	Store    *ledger.Store
	Analyzer *analyzer.OfferAnalyzer

	mu sync.Mutex
}

// New assembles the application.
func New(cfg *config.Config, manager *offers.Manager, store *ledger.Store, an *analyzer.OfferAnalyzer) *App {
	return &App{
		Config:   cfg,
		Manager:  manager,
		Store:    store,
		Analyzer: an,
	}
}

// ProcessNewOffers runs the pipeline over every PDF waiting in the intake
// directory: move to in-progress, analyze in parallel, rename from the
// analysis result and record in the ledger. A failing offer is logged and
// skipped, never aborting the batch. Returns the analyses recorded.
func (a *App) ProcessNewOffers(ctx context.Context) ([]models.Analysis, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	paths, err := a.Manager.ListNew()
	if err != nil {
		return nil, fmt.Errorf("failed to list new offers: %w", err)
	}
	if len(paths) == 0 {
		return nil, nil
	}
	log.Printf("Processing %d new offers", len(paths))

	var moved []string
	for _, path := range paths {
		inProgress, err := a.Manager.MoveToInProgress(path)
		if err != nil {
			log.Printf("Skipping %s: %v", filepath.Base(path), err)
			continue
		}
		moved = append(moved, inProgress)
	}

	results := a.Analyzer.AnalyzeAll(ctx, moved)

	var recorded []models.Analysis
	for _, r := range results {
		if r.Err != nil {
			log.Printf("Analysis failed for %s: %v", filepath.Base(r.Path), r.Err)
			continue
		}

		renamed, err := a.Manager.RenameAfterAnalysis(r.Path,
			r.Analysis.JobSummary.JobCompany, r.Analysis.JobSummary.JobTitle)
		if err != nil {
			log.Printf("Keeping original name for %s: %v", filepath.Base(r.Path), err)
			renamed = r.Path
		}
		r.Analysis.FileName = filepath.Base(renamed)

		if err := a.Store.AddAnalysis(*r.Analysis); err != nil {
			log.Printf("Failed to record analysis for %s: %v", r.Analysis.FileName, err)
			continue
		}
		recorded = append(recorded, *r.Analysis)
	}

	log.Printf("Recorded %d of %d offers", len(recorded), len(paths))
	return recorded, nil
}

// ForgetOffer archives the PDF and marks the ledger record as forgotten.
// The record itself stays in the ledger.
func (a *App) ForgetOffer(fileName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.Store.Get(fileName); !ok {
		return fmt.Errorf("no analysis found for %s", fileName)
	}

	if path, ok := a.Manager.Find(fileName); ok {
		if filepath.Dir(path) != filepath.Clean(a.Config.ArchivedDir) {
			if _, err := a.Manager.MoveToArchived(path); err != nil {
				return fmt.Errorf("failed to archive %s: %w", fileName, err)
			}
		}
	}

	return a.Store.MarkForgotten(fileName)
}

// CoverLetter returns the cover letter for an analyzed offer, generating
// it on first request. The generation cost and the letter are recorded as
// two separate ledger writes.
func (a *App) CoverLetter(ctx context.Context, fileName string) (*models.CoverLetter, error) {
	a.mu.Lock()
	analysis, ok := a.Store.Get(fileName)
	a.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no analysis found for %s", fileName)
	}
	if analysis.CoverLetter != nil {
		return analysis.CoverLetter, nil
	}

	cl, err := a.Analyzer.GenerateCoverLetter(ctx, &analysis)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	// The lock was released during generation; a concurrent request may
	// have stored a letter already. Keep the first one and do not charge
	// for the duplicate.
	if current, ok := a.Store.Get(fileName); ok && current.CoverLetter != nil {
		return current.CoverLetter, nil
	}
	if err := a.Store.AddCoverLetterCost(cl.GenerationCost); err != nil {
		return nil, fmt.Errorf("failed to record generation cost: %w", err)
	}
	if err := a.Store.SetCoverLetter(fileName, *cl); err != nil {
		return nil, fmt.Errorf("failed to store cover letter: %w", err)
	}
	return cl, nil
}

// Get returns the named analysis from the current batch.
func (a *App) Get(fileName string) (models.Analysis, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Store.Get(fileName)
}

// All returns every record of the current batch, forgotten included.
func (a *App) All() []models.Analysis {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Store.All()
}

// Active returns the current batch without forgotten offers.
func (a *App) Active() []models.Analysis {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active()
}

func (a *App) active() []models.Analysis {
	var active []models.Analysis
	for _, an := range a.Store.All() {
		if !an.Forget {
			active = append(active, an)
		}
	}
	return active
}

// MarkdownFor renders the markdown document for an analyzed offer.
func (a *App) MarkdownFor(fileName string) (string, error) {
	a.mu.Lock()
	analysis, ok := a.Store.Get(fileName)
	a.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("no analysis found for %s", fileName)
	}
	return export.Markdown(&analysis, time.Now()), nil
}

// ExportExcel writes the current batch and usage totals to a timestamped
// workbook in the export directory and returns its path.
func (a *App) ExportExcel() (string, error) {
	a.mu.Lock()
	analyses := a.active()
	usage := a.Store.Usage()
	a.mu.Unlock()

	path := filepath.Join(a.Config.ExportDir,
		fmt.Sprintf("offers_%s.xlsx", time.Now().Format("20060102150405")))
	if err := export.ToExcel(analyses, usage, path); err != nil {
		return "", err
	}
	return path, nil
}

// Usage returns the accumulated API usage totals.
func (a *App) Usage() ledger.APIUsage {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Store.Usage()
}

// Clear starts a new empty batch. Prior analyses stay on disk but leave
// the active view.
func (a *App) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Store.Clear()
}
