// Package api exposes the offer pipeline over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/jperrin/job-set-match/internal/app"
	"github.com/jperrin/job-set-match/internal/ingestion"
)

// Server handles HTTP requests
type Server struct {
	app *app.App
}

// NewServer creates a new API server
func NewServer(a *app.App) *Server {
	return &Server{app: a}
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /offers", s.handleUpload)
	mux.HandleFunc("POST /ingest/gmail", s.handleGmail)
	mux.HandleFunc("GET /analyses", s.handleList)
	mux.HandleFunc("GET /analyses/{file}", s.handleGet)
	mux.HandleFunc("POST /analyses/{file}/forget", s.handleForget)
	mux.HandleFunc("POST /analyses/{file}/cover-letter", s.handleCoverLetter)
	mux.HandleFunc("GET /analyses/{file}/markdown", s.handleMarkdown)
	mux.HandleFunc("GET /pdf/{file}", s.handlePDF)
	mux.HandleFunc("GET /usage", s.handleUsage)
	mux.HandleFunc("POST /clear", s.handleClear)
	mux.HandleFunc("POST /export", s.handleExport)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /", s.handleRoot)

	return s.loggingMiddleware(mux)
}

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Job Set & Match",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /analyze":                           "Analyze every PDF in the intake directory",
			"POST /offers":                            "Upload offer PDFs to the intake directory",
			"POST /ingest/gmail":                      "Fetch offer PDFs from Gmail",
			"GET /analyses":                           "List analyses in the current batch",
			"GET /analyses/{file}":                    "Get one analysis",
			"POST /analyses/{file}/forget":            "Archive an offer and mark it forgotten",
			"POST /analyses/{file}/cover-letter":      "Generate (or return) the cover letter",
			"GET /analyses/{file}/markdown":           "Download the analysis as markdown",
			"GET /pdf/{file}":                         "Download the offer PDF",
			"GET /usage":                              "API usage totals",
			"POST /clear":                             "Start a new empty batch",
			"POST /export":                            "Export the current batch to Excel",
			"GET /health":                             "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// handleAnalyze runs the pipeline over the intake directory
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	recorded, err := s.app.ProcessNewOffers(r.Context())
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"analyzed": len(recorded),
		"analyses": recorded,
	})
}

// handleUpload saves uploaded PDFs into the intake directory
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil { // 32 MB max
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.respondError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	saved := 0
	for _, fileHeader := range files {
		if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
			log.Printf("Skipping unsupported file type: %s", fileHeader.Filename)
			continue
		}

		file, err := fileHeader.Open()
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to open uploaded file: %v", err))
			return
		}

		if err := ingestion.SaveUpload(s.app.Config.NewDir, fileHeader.Filename, file); err != nil {
			file.Close()
			s.respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		file.Close()
		saved++
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"saved":  saved,
	})
}

// handleGmail pulls PDF attachments from the mailbox into the intake
// directory
func (s *Server) handleGmail(w http.ResponseWriter, r *http.Request) {
	cfg := s.app.Config
	fetcher, err := ingestion.NewGmailFetcher(r.Context(), cfg.GmailCredentialsPath, cfg.GmailTokenPath, cfg.NewDir)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	count, err := fetcher.FetchOffers(r.FormValue("query"))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"fetched": count,
	})
}

// handleList returns the current batch, forgotten offers excluded unless
// ?all=true
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("all") == "true" {
		s.respondJSON(w, http.StatusOK, s.app.All())
		return
	}
	s.respondJSON(w, http.StatusOK, s.app.Active())
}

// handleGet returns one analysis by file name
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("file")
	analysis, ok := s.app.Get(fileName)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("no analysis found for %s", fileName))
		return
	}
	s.respondJSON(w, http.StatusOK, analysis)
}

// handleForget archives the offer and flags the record
func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("file")
	if err := s.app.ForgetOffer(fileName); err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"file":   fileName,
	})
}

// handleCoverLetter generates the cover letter on first request
func (s *Server) handleCoverLetter(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("file")
	cl, err := s.app.CoverLetter(r.Context(), fileName)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, cl)
}

// handleMarkdown serves the analysis as a markdown document
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	fileName := r.PathValue("file")
	md, err := s.app.MarkdownFor(fileName)
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", strings.TrimSuffix(fileName, ".pdf")+".md"))
	w.Write([]byte(md))
}

// handlePDF serves the offer PDF from the in-progress or archived
// directory
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	fileName := filepath.Base(r.PathValue("file"))
	path, ok := s.app.Manager.Find(fileName)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("no PDF found for %s", fileName))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, path)
}

// handleUsage returns the accumulated API usage totals
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.app.Usage())
}

// handleClear starts a new empty batch
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.app.Clear(); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
	})
}

// handleExport writes the current batch to an Excel workbook
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	path, err := s.app.ExportExcel()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"path":   path,
	})
}

// respondJSON sends a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// respondError sends an error response
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
