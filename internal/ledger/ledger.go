package ledger

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jperrin/job-set-match/internal/models"
)

// APIUsage tracks cumulative API spend. Every cost-adding operation updates
// the specific bucket and the total within the same call, so
// TotalCost == AnalysisCosts + CoverLetterCosts holds after every mutation.
type APIUsage struct {
	TotalCost        float64 `json:"total_cost"`
	AnalysisCosts    float64 `json:"analysis_costs"`
	CoverLetterCosts float64 `json:"cover_letter_costs"`
	RequestsCount    int     `json:"requests_count"`
}

// Batch groups the analyses of one ingestion run.
type Batch struct {
	Timestamp string            `json:"timestamp"`
	Offers    []models.Analysis `json:"offers"`
}

// Document is the persisted ledger: all batches plus usage totals.
type Document struct {
	Timestamp string   `json:"timestamp"`
	Analyses  []Batch  `json:"analyses"`
	APIUsage  APIUsage `json:"api_usage"`
}

// Store persists analysis records and cost accounting in a single JSON
// document, read fully on open and rewritten fully on every mutation.
// It is not safe for concurrent callers; the application serializes access.
type Store struct {
	path string
	doc  Document
}

// Open loads the ledger from path, or initializes a fresh document with one
// empty batch when the file is absent or unparseable. Corruption is not
// repaired, it is replaced.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read ledger file: %w", err)
		}
		s.doc = initialDocument()
		return s, nil
	}

	if err := json.Unmarshal(data, &s.doc); err != nil {
		log.Printf("Error loading ledger file %s, starting fresh: %v", path, err)
		s.doc = initialDocument()
		return s, nil
	}

	// A loaded document must always have a current batch to append to.
	if len(s.doc.Analyses) == 0 {
		s.doc.Analyses = []Batch{newBatch()}
	}

	return s, nil
}

func initialDocument() Document {
	return Document{
		Timestamp: time.Now().Format(time.RFC3339),
		Analyses:  []Batch{newBatch()},
	}
}

func newBatch() Batch {
	return Batch{
		Timestamp: time.Now().Format(time.RFC3339),
		Offers:    []models.Analysis{},
	}
}

// save rewrites the whole document to disk, via a temp file promoted by
// rename so a failed write never truncates the previous ledger.
func (s *Store) save() error {
	s.doc.Timestamp = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

// AddAnalysis appends a record to the current batch, accounts its analysis
// cost, and persists. On a persist error the in-memory state has already
// mutated; callers must treat the error as "state and disk may have
// diverged".
func (s *Store) AddAnalysis(a models.Analysis) error {
	last := len(s.doc.Analyses) - 1
	s.doc.Analyses[last].Offers = append(s.doc.Analyses[last].Offers, a)
	s.doc.APIUsage.AnalysisCosts += a.AnalysisCost
	s.doc.APIUsage.TotalCost += a.AnalysisCost
	s.doc.APIUsage.RequestsCount++
	return s.save()
}

// AddCoverLetterCost accounts the cost of one cover-letter generation call
// and persists. The record's embedded cover letter is stored separately via
// SetCoverLetter; the two writes are not transactional with each other.
func (s *Store) AddCoverLetterCost(cost float64) error {
	s.doc.APIUsage.CoverLetterCosts += cost
	s.doc.APIUsage.TotalCost += cost
	s.doc.APIUsage.RequestsCount++
	return s.save()
}

// SetCoverLetter attaches a cover letter to the named record in the current
// batch and persists.
func (s *Store) SetCoverLetter(fileName string, cl models.CoverLetter) error {
	offers := s.currentOffers()
	for i := range offers {
		if offers[i].FileName == fileName {
			offers[i].CoverLetter = &cl
			return s.save()
		}
	}
	return fmt.Errorf("no analysis found for %s", fileName)
}

// MarkForgotten flips the forget flag on the named record in the current
// batch and persists. The record is never physically deleted.
func (s *Store) MarkForgotten(fileName string) error {
	offers := s.currentOffers()
	for i := range offers {
		if offers[i].FileName == fileName {
			offers[i].Forget = true
			return s.save()
		}
	}
	return fmt.Errorf("no analysis found for %s", fileName)
}

// Get returns the first record of the current batch matching the file name.
func (s *Store) Get(fileName string) (models.Analysis, bool) {
	for _, a := range s.currentOffers() {
		if a.FileName == fileName {
			return a, true
		}
	}
	return models.Analysis{}, false
}

// All returns a copy of the current batch's records.
func (s *Store) All() []models.Analysis {
	offers := s.currentOffers()
	out := make([]models.Analysis, len(offers))
	copy(out, offers)
	return out
}

// Usage returns a copy of the cumulative API usage totals.
func (s *Store) Usage() APIUsage {
	return s.doc.APIUsage
}

// CurrentBatchTimestamp returns the creation time of the current batch.
func (s *Store) CurrentBatchTimestamp() string {
	return s.doc.Analyses[len(s.doc.Analyses)-1].Timestamp
}

// BatchCount returns the number of batches in the document, including
// batches made unreachable by Clear.
func (s *Store) BatchCount() int {
	return len(s.doc.Analyses)
}

// Batches returns the creation timestamps of every batch in document
// order, for grouping analyses by ingestion period.
func (s *Store) Batches() []string {
	out := make([]string, len(s.doc.Analyses))
	for i, b := range s.doc.Analyses {
		out[i] = b.Timestamp
	}
	return out
}

// Clear appends a new empty batch, making it the current one. Prior batches
// and their records stay in the document but become unreachable from Get
// and All. Usage totals are preserved.
func (s *Store) Clear() error {
	s.doc.Analyses = append(s.doc.Analyses, newBatch())
	return s.save()
}

func (s *Store) currentOffers() []models.Analysis {
	return s.doc.Analyses[len(s.doc.Analyses)-1].Offers
}
