// Package memory is an in-memory LedgerExporter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sync"

	"spendtrack/internal/sheets"
)

type Exporter struct {
	mu   sync.Mutex
	rows []sheets.ExportRow
}

func NewExporter() *Exporter {
	return &Exporter{}
}

func (e *Exporter) AppendReviewed(ctx context.Context, row sheets.ExportRow) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = append(e.rows, row)
	return nil
}

// Rows returns a copy of everything appended so far.
func (e *Exporter) Rows() []sheets.ExportRow {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.ExportRow(nil), e.rows...)
}

var _ sheets.LedgerExporter = (*Exporter)(nil)
