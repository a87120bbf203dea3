// Package table persists embedding records as a parquet file: one row per
// class identifier with a repeated-float vector column, plus a file-level
// metadata block. Files are write-once per run; derived results go to new
// files, never back into the source.
package table

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/agenthands/ontovec/internal/embed"
)

// Row is the parquet row shape.
type Row struct {
	ID     string    `parquet:"id"`
	Vector []float64 `parquet:"vector,list"`
}

const (
	metaSource    = "ontovec.source_ontology"
	metaArch      = "ontovec.arch"
	metaLoss      = "ontovec.loss"
	metaScheme    = "ontovec.scheme"
	metaOutputDim = "ontovec.output_dim"
	metaRun       = "ontovec.checkpoint_run"
	metaGenerated = "ontovec.generated_at"
)

// Write persists records and metadata atomically (temp file + rename).
func Write(path string, records []embed.Record, meta embed.Meta) error {
	if len(records) == 0 {
		return fmt.Errorf("refusing to write an empty embedding table")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".ontovec-table-*")
	if err != nil {
		return fmt.Errorf("failed to create temp table file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := parquet.NewGenericWriter[Row](tmp,
		parquet.KeyValueMetadata(metaSource, meta.SourceOntology),
		parquet.KeyValueMetadata(metaArch, meta.Arch),
		parquet.KeyValueMetadata(metaLoss, meta.Loss),
		parquet.KeyValueMetadata(metaScheme, meta.Scheme),
		parquet.KeyValueMetadata(metaOutputDim, strconv.Itoa(meta.OutputDim)),
		parquet.KeyValueMetadata(metaRun, meta.CheckpointRun),
		parquet.KeyValueMetadata(metaGenerated, meta.GeneratedAt.Format(time.RFC3339)),
	)

	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{ID: r.ID, Vector: r.Vector}
	}
	if _, err := w.Write(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write table rows: %w", err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to finalize table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close table file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move table into place: %w", err)
	}
	return nil
}

// Table is an opened embedding table, fully loaded and keyed by identifier.
type Table struct {
	rows  []Row
	byID  map[string][]float64
	order []string
	meta  embed.Meta
}

// Open loads a table file: all rows plus the metadata block.
func Open(path string) (*Table, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedding table '%s': %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding table '%s': %w", path, err)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat embedding table '%s': %w", path, err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedding table '%s': %w", path, err)
	}

	lookup := func(key string) string {
		v, _ := pf.Lookup(key)
		return v
	}
	meta := embed.Meta{
		SourceOntology: lookup(metaSource),
		Arch:           lookup(metaArch),
		Loss:           lookup(metaLoss),
		Scheme:         lookup(metaScheme),
		CheckpointRun:  lookup(metaRun),
	}
	if v := lookup(metaOutputDim); v != "" {
		meta.OutputDim, _ = strconv.Atoi(v)
	}
	if v := lookup(metaGenerated); v != "" {
		meta.GeneratedAt, _ = time.Parse(time.RFC3339, v)
	}

	t := &Table{
		rows:  rows,
		byID:  make(map[string][]float64, len(rows)),
		order: make([]string, len(rows)),
		meta:  meta,
	}
	for i, r := range rows {
		t.byID[r.ID] = r.Vector
		t.order[i] = r.ID
	}
	return t, nil
}

// Get fetches one vector by identifier.
func (t *Table) Get(id string) ([]float64, bool) {
	v, ok := t.byID[id]
	return v, ok
}

// Identifiers lists all identifiers in file order.
func (t *Table) Identifiers() []string {
	return append([]string(nil), t.order...)
}

// Rows returns the full row sequence in file order.
func (t *Table) Rows() []Row {
	return t.rows
}

// Len is the number of records.
func (t *Table) Len() int { return len(t.rows) }

// Meta returns the table's metadata block.
func (t *Table) Meta() embed.Meta { return t.meta }
