package storage

import (
	"fmt"
	"strings"

	"spotify-records/models"
)

// RecordWriter is the interface any storage backend must satisfy.
// Write replaces whatever the backend held before.
type RecordWriter interface {
	Write(records []*models.Record) error
	Close() error
}

// Opener acquires a RecordWriter right before it is needed.
type Opener func() (RecordWriter, error)

// TableWriter is the interface for persisting the raw extracted table.
type TableWriter interface {
	WriteTable(table *models.Table) error
	Close() error
}

// TableOpener acquires a TableWriter right before it is needed.
type TableOpener func() (TableWriter, error)

// PersistenceError wraps any failure while storing records.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// recordColumns are the stored column names and SQL types, in record order.
var recordColumns = []struct {
	name    string
	sqlType string
}{
	{"Rank", "REAL"},
	{"Song", "TEXT"},
	{"Artist(s)", "TEXT"},
	{"Streams (billions)", "REAL"},
	{"Release date", "TEXT"},
	{"Ref", "TEXT"},
}

// quoteIdent quotes a SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func createTableSQL(table, realType, textType string) string {
	defs := make([]string, 0, len(recordColumns))
	for _, c := range recordColumns {
		t := textType
		if c.sqlType == "REAL" {
			t = realType
		}
		defs = append(defs, quoteIdent(c.name)+" "+t)
	}
	return "CREATE TABLE " + quoteIdent(table) + " (" + strings.Join(defs, ", ") + ")"
}

func quotedColumnList() string {
	cols := make([]string, 0, len(recordColumns))
	for _, c := range recordColumns {
		cols = append(cols, quoteIdent(c.name))
	}
	return strings.Join(cols, ", ")
}

// recordArgs flattens a record into insert arguments; empty text and a missing rank become NULL.
func recordArgs(r *models.Record) []any {
	var rank any
	if r.Rank != nil {
		rank = *r.Rank
	}
	return []any{
		rank,
		nullIfEmpty(r.Song),
		nullIfEmpty(r.Artists),
		r.Streams,
		nullIfEmpty(r.ReleaseDate),
		nullIfEmpty(r.Ref),
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
