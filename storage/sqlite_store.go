package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"spotify-records/models"
)

// SQLiteStore persists cleaned records to a local SQLite file.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens (creating if needed) the database file at path.
func OpenSQLite(path, table string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &PersistenceError{Op: "open", Err: err}
	}
	return &SQLiteStore{db: db, table: table}, nil
}

// Write drops any existing table of the same name and stores records in its place.
// The replacement is one transaction: on failure the previous table is left untouched.
func (s *SQLiteStore) Write(records []*models.Record) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "begin", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(s.table)); err != nil {
		return &PersistenceError{Op: "drop table", Err: err}
	}
	if _, err = tx.Exec(createTableSQL(s.table, "REAL", "TEXT")); err != nil {
		return &PersistenceError{Op: "create table", Err: err}
	}

	ph := strings.TrimRight(strings.Repeat("?,", len(recordColumns)), ",")
	stmt, err := tx.Prepare("INSERT INTO " + quoteIdent(s.table) + " (" + quotedColumnList() + ") VALUES (" + ph + ")")
	if err != nil {
		return &PersistenceError{Op: "prepare insert", Err: err}
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err = stmt.Exec(recordArgs(r)...); err != nil {
			return &PersistenceError{Op: fmt.Sprintf("insert row %d", i+1), Err: err}
		}
	}

	if err = tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit", Err: err}
	}
	return nil
}

// FetchAll reads the stored records back in insertion order.
func (s *SQLiteStore) FetchAll() ([]*models.Record, error) {
	rows, err := s.db.Query("SELECT " + quotedColumnList() + " FROM " + quoteIdent(s.table) + " ORDER BY rowid")
	if err != nil {
		return nil, &PersistenceError{Op: "fetch all", Err: err}
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		var rank sql.NullFloat64
		var song, artists, released, ref sql.NullString
		var streams float64
		if err := rows.Scan(&rank, &song, &artists, &streams, &released, &ref); err != nil {
			return nil, &PersistenceError{Op: "scan row", Err: err}
		}
		r := &models.Record{
			Song:        song.String,
			Artists:     artists.String,
			Streams:     streams,
			ReleaseDate: released.String,
			Ref:         ref.String,
		}
		if rank.Valid {
			v := rank.Float64
			r.Rank = &v
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "fetch all", Err: err}
	}
	return records, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
