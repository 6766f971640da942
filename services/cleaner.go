package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"spotify-records/models"
	"spotify-records/utils"
)

// RecordColumns is the positional schema every cleaned table is renamed to.
var RecordColumns = []string{
	"Rank",
	"Song",
	"Artist(s)",
	"Streams (billions)",
	"Release date",
	"Ref",
}

const (
	colRank = iota
	colSong
	colArtists
	colStreams
	colReleaseDate
	colRef
)

var (
	// streamsRegexp captures the first decimal number, or failing that the first integer
	streamsRegexp = regexp.MustCompile(`\d+\.\d+|\d+`)
	// strictNumberRegexp accepts a whole string in decimal or exponent notation
	strictNumberRegexp = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// SchemaMismatchError reports a table whose column count does not fit RecordColumns.
type SchemaMismatchError struct {
	Want int
	Got  int
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: expected %d columns, table has %d", e.Want, e.Got)
}

// Cleaner turns an extracted table into records with a usable stream count.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean renames the columns, extracts stream counts, coerces ranks and drops rows
// without streams. The table is modified in place; surviving rows keep their order.
func (c *Cleaner) Clean(table *models.Table) ([]*models.Record, error) {
	if err := RenameColumns(table, RecordColumns); err != nil {
		return nil, fmt.Errorf("cleaner: rename columns: %w", err)
	}

	before := len(table.Rows)

	MapColumn(table, colStreams, func(v any) any { return nullable(ExtractNumber(v)) })
	MapColumn(table, colRank, func(v any) any { return nullable(CoerceNumeric(v)) })

	kept := table.Rows[:0]
	for i, row := range table.Rows {
		if row[colStreams] == nil {
			c.logger.Debug("[cleaner] Dropping row %d (%s): no stream count", i+1, models.CellText(row[colSong]))
			continue
		}
		kept = append(kept, row)
	}
	table.Rows = kept

	records := make([]*models.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, toRecord(row))
	}

	c.logger.Info("[cleaner] Cleaned %d → %d records (dropped %d)",
		before, len(records), before-len(records))
	return records, nil
}

// RenameColumns replaces the column names by position. It never looks at the old names.
func RenameColumns(table *models.Table, names []string) error {
	if table.Width() != len(names) {
		return &SchemaMismatchError{Want: len(names), Got: table.Width()}
	}
	table.Columns = append([]string(nil), names...)
	return nil
}

// MapColumn replaces every cell of column col with fn(cell).
func MapColumn(table *models.Table, col int, fn func(any) any) {
	for _, row := range table.Rows {
		row[col] = fn(row[col])
	}
}

// ExtractNumber returns the first number found in the cell's text, preferring
// decimal notation when both forms start at the same position. Surrounding
// text is discarded. It returns nil when the text holds no digits.
func ExtractNumber(v any) *float64 {
	match := streamsRegexp.FindString(cellText(v))
	if match == "" {
		return nil
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil
	}
	return &f
}

// CoerceNumeric reads a cell as a number, returning nil instead of failing.
func CoerceNumeric(v any) *float64 {
	switch val := v.(type) {
	case float64:
		return &val
	case string:
		s := strings.TrimSpace(val)
		if !strictNumberRegexp.MatchString(s) {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// cellText is the text numeric extraction searches; missing cells read as "nan".
func cellText(v any) string {
	if v == nil {
		return "nan"
	}
	return models.CellText(v)
}

// nullable keeps a nil *float64 as an untyped nil cell.
func nullable(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func toRecord(row []any) *models.Record {
	r := &models.Record{
		Song:        models.CellText(row[colSong]),
		Artists:     models.CellText(row[colArtists]),
		Streams:     row[colStreams].(float64),
		ReleaseDate: models.CellText(row[colReleaseDate]),
		Ref:         models.CellText(row[colRef]),
	}
	if rank, ok := row[colRank].(float64); ok {
		r.Rank = &rank
	}
	return r
}
