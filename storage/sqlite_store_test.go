package storage

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"spotify-records/models"
)

func ptr(f float64) *float64 { return &f }

func sampleRecords() []*models.Record {
	return []*models.Record{
		{Rank: ptr(1), Song: "Blinding Lights", Artists: "The Weeknd", Streams: 4.9, ReleaseDate: "29 November 2019", Ref: "[1]"},
		{Rank: nil, Song: "Shape of You", Artists: "Ed Sheeran", Streams: 4.2, ReleaseDate: "6 January 2017", Ref: ""},
	}
}

func openTestStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.db")
	s, err := OpenSQLite(path, "most_streamed_songs")
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, _ := openTestStore(t)

	if err := s.Write(sampleRecords()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if diff := cmp.Diff(sampleRecords(), got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStoreWriteReplacesTable(t *testing.T) {
	s, _ := openTestStore(t)

	for i := 0; i < 2; i++ {
		if err := s.Write(sampleRecords()); err != nil {
			t.Fatalf("Write #%d error: %v", i+1, err)
		}
	}
	got, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rows after two writes: got %d, want 2", len(got))
	}
	if diff := cmp.Diff(sampleRecords(), got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}

	if err := s.Write(sampleRecords()[:1]); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, err = s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("rows after shorter write: got %d, want 1", len(got))
	}
}

func TestSQLiteStoreSchemaAndNulls(t *testing.T) {
	s, path := openTestStore(t)
	if err := s.Write(sampleRecords()); err != nil {
		t.Fatalf("Write error: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name, type FROM pragma_table_info('most_streamed_songs') ORDER BY cid`)
	if err != nil {
		t.Fatalf("table info: %v", err)
	}
	var cols [][2]string
	for rows.Next() {
		var name, typ string
		if err := rows.Scan(&name, &typ); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, [2]string{name, typ})
	}
	rows.Close()

	wantCols := [][2]string{
		{"Rank", "REAL"},
		{"Song", "TEXT"},
		{"Artist(s)", "TEXT"},
		{"Streams (billions)", "REAL"},
		{"Release date", "TEXT"},
		{"Ref", "TEXT"},
	}
	if diff := cmp.Diff(wantCols, cols); diff != "" {
		t.Errorf("schema mismatch (-want +got):\n%s", diff)
	}

	var nullRanks, nullRefs int
	if err := db.QueryRow(`SELECT COUNT(*) FROM most_streamed_songs WHERE "Rank" IS NULL`).Scan(&nullRanks); err != nil {
		t.Fatalf("count: %v", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM most_streamed_songs WHERE "Ref" IS NULL`).Scan(&nullRefs); err != nil {
		t.Fatalf("count: %v", err)
	}
	if nullRanks != 1 || nullRefs != 1 {
		t.Errorf("NULL counts: rank=%d ref=%d, want 1 and 1", nullRanks, nullRefs)
	}
}

func TestSQLiteStoreQuotesTableName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.db")
	s, err := OpenSQLite(path, `odd "name"`)
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer s.Close()

	if err := s.Write(sampleRecords()); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	got, err := s.FetchAll()
	if err != nil {
		t.Fatalf("FetchAll error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("rows: got %d, want 2", len(got))
	}
}

func TestSQLiteStoreOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "records.db")
	_, err := OpenSQLite(path, "most_streamed_songs")

	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
	if pe.Op != "open" {
		t.Errorf("Op: got %q, want open", pe.Op)
	}
}

func TestSQLiteStoreFetchAllWithoutTable(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.FetchAll()
	var pe *PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
}
