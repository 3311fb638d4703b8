package dataset

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/titanicprep/internal/logging"
	"github.com/JonMunkholm/titanicprep/internal/table"
	"github.com/google/uuid"
)

const (
	// SourceURL is the OpenML export of the Titanic passenger list.
	SourceURL = "https://www.openml.org/data/get_csv/16826755/phpMYEkMl"

	// OutputFile is written to the working directory.
	OutputFile = "titanic.csv"

	// Sentinel marks absent values in the source.
	Sentinel = "?"

	// CabinColumn lists one or more cabins per passenger, space separated.
	CabinColumn = "cabin"
)

// Exporter receives the prepared table after it has been persisted.
type Exporter interface {
	Export(ctx context.Context, t *table.Table, runID uuid.UUID) (int64, error)
}

// Preparer runs the fetch → normalize → persist pipeline.
//
// The zero value is not usable; start from NewPreparer. Tests override URL,
// Client and OutputPath.
type Preparer struct {
	Client     *http.Client
	URL        string
	Sentinel   string
	Column     string
	OutputPath string

	// Exporter is optional. When set, it runs after Persist.
	Exporter Exporter
}

// Result describes a completed run.
type Result struct {
	RunID        uuid.UUID
	Source       string
	OutputPath   string
	Rows         int
	BytesFetched int64
	Exported     int64
	StartedAt    time.Time
	Duration     time.Duration
	Table        *table.Table
}

// NewPreparer returns a Preparer wired to the fixed source and output.
// The HTTP client has no timeout.
func NewPreparer() *Preparer {
	return &Preparer{
		Client:     &http.Client{},
		URL:        SourceURL,
		Sentinel:   Sentinel,
		Column:     CabinColumn,
		OutputPath: OutputFile,
	}
}

// Run executes the pipeline once. Any error aborts the run; the output file
// is only written after both transforms succeed.
func (p *Preparer) Run(ctx context.Context) (*Result, error) {
	res := &Result{
		RunID:      uuid.New(),
		Source:     p.URL,
		OutputPath: p.OutputPath,
		StartedAt:  time.Now(),
	}
	ctx = logging.WithRunID(ctx, res.RunID)
	log := logging.FromContext(ctx)

	log.Info("fetching dataset", "url", p.URL)
	raw, n, err := fetch(ctx, p.Client, p.URL)
	if err != nil {
		return nil, err
	}
	res.BytesFetched = n
	log.Info("dataset fetched", "rows", raw.Len(), "columns", raw.Width(), "bytes", n)

	cleaned := ReplaceSentinel(raw, p.Sentinel)

	prepared, err := ApplyColumn(cleaned, p.Column, firstCabin)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	log.Debug("dataset normalized", "sentinel", p.Sentinel, "column", p.Column)

	if err := Persist(prepared, p.OutputPath); err != nil {
		return nil, err
	}
	log.Info("dataset written", "path", p.OutputPath, "rows", prepared.Len())

	if p.Exporter != nil {
		exported, err := p.Exporter.Export(ctx, prepared, res.RunID)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		res.Exported = exported
		log.Info("dataset exported", "rows", exported)
	}

	res.Rows = prepared.Len()
	res.Table = prepared
	res.Duration = time.Since(res.StartedAt)
	return res, nil
}
