package services

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"spotify-records/models"
	"spotify-records/utils"
)

func newTestLogger() *utils.Logger { return utils.NewLoggerTo(io.Discard, utils.LevelError) }

func ptr(f float64) *float64 { return &f }

func TestExtractNumber(t *testing.T) {
	tests := []struct {
		in   any
		want *float64
	}{
		{"2.1 billion (as of 2024)", ptr(2.1)},
		{"Over 3 plays", ptr(3)},
		{"N/A", nil},
		{"abc", nil},
		{"", nil},
		{nil, nil},
		{"4.215", ptr(4.215)},
		{"As of March 2025: 3.9", ptr(2025)},
		{"12. 5", ptr(12)},
		{"[a] 1.5", ptr(1.5)},
		{"1,234 billion", ptr(1)},
		{2.897, ptr(2.897)},
		{3.0, ptr(3)},
	}

	for _, tt := range tests {
		got := ExtractNumber(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ExtractNumber(%#v) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestCoerceNumeric(t *testing.T) {
	tests := []struct {
		in   any
		want *float64
	}{
		{"5", ptr(5)},
		{" 12 ", ptr(12)},
		{"-1.5e2", ptr(-150)},
		{7.0, ptr(7)},
		{"TBD", nil},
		{"1,000", nil},
		{"5th", nil},
		{"", nil},
		{nil, nil},
	}

	for _, tt := range tests {
		got := CoerceNumeric(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("CoerceNumeric(%#v) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func sixColumnTable(rows ...[]any) *models.Table {
	return &models.Table{
		Columns: []string{"Rank", "Song", "Artist(s)", "Streams", "Date", "Ref."},
		Rows:    rows,
	}
}

func TestCleanerKeepsNullRankDropsNullStreams(t *testing.T) {
	c := NewCleaner(newTestLogger())
	table := sixColumnTable(
		[]any{1.0, "Song A", "Artist A", "2.897 billion", 2013.0, "[1]"},
		[]any{"TBD", "Song B", "Artist B", "3.1", "2020", "[2]"},
		[]any{3.0, "Song C", "Artist C", "abc", "2021", "[3]"},
		[]any{4.0, "Song D", "Artist D", nil, "2022", nil},
	)

	got, err := c.Clean(table)
	if err != nil {
		t.Fatalf("Clean error: %v", err)
	}

	want := []*models.Record{
		{Rank: ptr(1), Song: "Song A", Artists: "Artist A", Streams: 2.897, ReleaseDate: "2013", Ref: "[1]"},
		{Rank: nil, Song: "Song B", Artists: "Artist B", Streams: 3.1, ReleaseDate: "2020", Ref: "[2]"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanerRenamesColumnsPositionally(t *testing.T) {
	c := NewCleaner(newTestLogger())
	table := sixColumnTable([]any{1.0, "A", "B", "1.5", "2019", "[1]"})

	if _, err := c.Clean(table); err != nil {
		t.Fatalf("Clean error: %v", err)
	}
	if diff := cmp.Diff(RecordColumns, table.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if got := table.Rows[0][colStreams]; got != 1.5 {
		t.Errorf("streams cell: got %#v, want 1.5", got)
	}
}

func TestCleanerPreservesOrder(t *testing.T) {
	c := NewCleaner(newTestLogger())
	table := sixColumnTable(
		[]any{3.0, "C", "x", "1.0", "", ""},
		[]any{1.0, "A", "x", "none", "", ""},
		[]any{2.0, "B", "x", "2.0", "", ""},
	)

	got, err := c.Clean(table)
	if err != nil {
		t.Fatalf("Clean error: %v", err)
	}
	if len(got) != 2 || got[0].Song != "C" || got[1].Song != "B" {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestCleanerSchemaMismatch(t *testing.T) {
	c := NewCleaner(newTestLogger())
	table := &models.Table{
		Columns: []string{"Rank", "Song", "Streams"},
		Rows:    [][]any{{1.0, "A", "1.0"}},
	}

	_, err := c.Clean(table)
	var sm *SchemaMismatchError
	if !errors.As(err, &sm) {
		t.Fatalf("expected *SchemaMismatchError, got %v", err)
	}
	if sm.Want != 6 || sm.Got != 3 {
		t.Errorf("mismatch fields: got want=%d got=%d", sm.Want, sm.Got)
	}
}

func TestCleanerEmptyTable(t *testing.T) {
	c := NewCleaner(newTestLogger())
	got, err := c.Clean(sixColumnTable())
	if err != nil {
		t.Fatalf("Clean error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
