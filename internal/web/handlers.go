package web

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/JonMunkholm/titanicprep/internal/dataset"
	"github.com/JonMunkholm/titanicprep/internal/report"
	"github.com/JonMunkholm/titanicprep/internal/table"
)

// RunSummary is the JSON view of the most recent successful run.
type RunSummary struct {
	RunID        string         `json:"run_id"`
	Source       string         `json:"source"`
	OutputPath   string         `json:"output_path"`
	Rows         int            `json:"rows"`
	BytesFetched int64          `json:"bytes_fetched"`
	Exported     int64          `json:"exported"`
	StartedAt    time.Time      `json:"started_at"`
	DurationMS   int64          `json:"duration_ms"`
	Report       report.Summary `json:"report"`
}

func newRunSummary(res *dataset.Result) *RunSummary {
	return &RunSummary{
		RunID:        res.RunID.String(),
		Source:       res.Source,
		OutputPath:   res.OutputPath,
		Rows:         res.Rows,
		BytesFetched: res.BytesFetched,
		Exported:     res.Exported,
		StartedAt:    res.StartedAt,
		DurationMS:   res.Duration.Milliseconds(),
		Report:       report.Summarize(res.Table),
	}
}

// FileSummary describes the persisted CSV as served by GET /api/dataset.
// LastRun is the most recent successful refresh handled by this process and
// is absent after a restart.
type FileSummary struct {
	OutputPath string         `json:"output_path"`
	ModifiedAt time.Time      `json:"modified_at"`
	Report     report.Summary `json:"report"`
	LastRun    *RunSummary    `json:"last_run,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDownload serves the persisted CSV, including one left by an earlier
// process.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if _, err := os.Stat(s.outputPath); err != nil {
		if os.IsNotExist(err) {
			err = ErrNotPrepared
		}
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	http.ServeFile(w, r, s.outputPath)
}

// handleSummary reports on the file on disk, so it always agrees with
// handleDownload, including for a file left by an earlier process.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.summarizeOutput()
	if err != nil {
		respondError(w, r, err)
		return
	}

	s.mu.RLock()
	summary.LastRun = s.last
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) summarizeOutput() (*FileSummary, error) {
	f, err := os.Open(s.outputPath)
	if os.IsNotExist(err) {
		return nil, ErrNotPrepared
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.outputPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.outputPath, err)
	}

	tbl, err := table.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableOutput, s.outputPath, err)
	}

	return &FileSummary{
		OutputPath: s.outputPath,
		ModifiedAt: info.ModTime().UTC(),
		Report:     report.Summarize(tbl),
	}, nil
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if !s.refreshMu.TryLock() {
		respondError(w, r, ErrRefreshInProgress)
		return
	}
	defer s.refreshMu.Unlock()

	res, err := s.runner.Run(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	summary := newRunSummary(res)
	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, summary)
}
