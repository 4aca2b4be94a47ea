// Package store persists analysis reports so results can be listed and
// compared across runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a report ID does not exist.
var ErrNotFound = errors.New("report not found")

// Report is the persisted result of one analysis of one network.
type Report struct {
	ID          string          `json:"id"`
	Network     string          `json:"network"`
	Fingerprint string          `json:"fingerprint"` // SHA-256 of the network definition
	Analysis    string          `json:"analysis"`    // e.g. "lambda_q", "report"
	Params      json.RawMessage `json:"params,omitempty"`
	Result      json.RawMessage `json:"result"`
	CreatedAt   time.Time       `json:"created_at"`
	Duration    time.Duration   `json:"duration"`
}

// NewReport encodes params and result as JSON and returns an unsaved report.
func NewReport(network, fingerprint, analysis string, params, result any, elapsed time.Duration) (*Report, error) {
	r := &Report{
		Network:     network,
		Fingerprint: fingerprint,
		Analysis:    analysis,
		Duration:    elapsed,
	}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("encoding report params: %w", err)
		}
		r.Params = data
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding report result: %w", err)
	}
	r.Result = data
	return r, nil
}

// clone returns a deep copy of r.
func (r Report) clone() Report {
	r.Params = slices.Clone(r.Params)
	r.Result = slices.Clone(r.Result)
	return r
}

// prepare fills in the ID and timestamp of a report about to be saved.
func prepare(r *Report) error {
	if r.Analysis == "" {
		return fmt.Errorf("report analysis is required")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ReportStore stores analysis reports.
type ReportStore interface {
	// SaveReport stores r, assigning an ID and creation time when unset,
	// and returns the ID. Saving an existing ID replaces the report.
	SaveReport(ctx context.Context, r *Report) (string, error)

	// GetReport returns the report with the given ID or ErrNotFound.
	GetReport(ctx context.Context, id string) (*Report, error)

	// ListReports returns the reports for network, or all reports when
	// network is empty, oldest first.
	ListReports(ctx context.Context, network string) ([]Report, error)

	// DeleteReport removes a report or returns ErrNotFound.
	DeleteReport(ctx context.Context, id string) error

	Close() error
}

// Store kinds accepted by NewStore.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

// NewStore opens a report store of the given kind. dir is the directory of
// the SQLite database and is ignored for the memory store.
func NewStore(kind, dir string) (ReportStore, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite, "":
		return NewSQLiteStore(dir)
	default:
		return nil, fmt.Errorf("unknown store kind %q (valid: %s, %s)", kind, KindMemory, KindSQLite)
	}
}

func sortReports(reports []Report) {
	slices.SortFunc(reports, func(a, b Report) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
}
