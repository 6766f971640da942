package models

import (
	"fmt"
	"strconv"
)

// Table is a parsed HTML table: ordered column names and ordered rows of cells.
// A cell is nil (missing), a float64, or a string.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Columns)
}

// CellText renders a cell as text: missing cells are empty and whole numbers
// lose their fractional part.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// Record is one cleaned row ready for storage.
// Rank is nil when the source cell could not be read as a number.
type Record struct {
	Rank        *float64
	Song        string
	Artists     string
	Streams     float64
	ReleaseDate string
	Ref         string
}

// InsightReport holds the computed analytics over the stored records.
type InsightReport struct {
	TotalRecords    int
	RankedRecords   int
	TotalStreams    float64
	AverageStreams  float64
	MinStreams      float64
	MaxStreams      float64
	MostStreamed    *Record
	TopStreamed     []*Record
	RecordsByArtist map[string]int
}
