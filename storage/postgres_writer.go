package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"spotify-records/models"
)

// PostgresWriter mirrors cleaned records into PostgreSQL with the same
// replace-table semantics as the SQLite store.
type PostgresWriter struct {
	db    *sql.DB
	table string
}

// NewPostgresWriter opens a connection to PostgreSQL and waits for it to answer.
func NewPostgresWriter(dsn, table string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, &PersistenceError{Op: "postgres open", Err: err}
	}

	for i := 0; i < 5; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, &PersistenceError{Op: "postgres ping", Err: err}
	}

	return &PostgresWriter{db: db, table: table}, nil
}

// Write drops and recreates the table, then batch-inserts all records in one transaction.
func (pw *PostgresWriter) Write(records []*models.Record) (err error) {
	tx, err := pw.db.Begin()
	if err != nil {
		return &PersistenceError{Op: "postgres begin", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.Exec("DROP TABLE IF EXISTS " + quoteIdent(pw.table)); err != nil {
		return &PersistenceError{Op: "postgres drop table", Err: err}
	}
	if _, err = tx.Exec(createTableSQL(pw.table, "DOUBLE PRECISION", "TEXT")); err != nil {
		return &PersistenceError{Op: "postgres create table", Err: err}
	}

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err = pw.insertBatch(tx, records[i:end]); err != nil {
			return &PersistenceError{Op: "postgres insert", Err: err}
		}
	}

	if err = tx.Commit(); err != nil {
		return &PersistenceError{Op: "postgres commit", Err: err}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(tx *sql.Tx, batch []*models.Record) error {
	query, args := insertBatchSQL(pw.table, batch)
	_, err := tx.Exec(query, args...)
	return err
}

// insertBatchSQL builds one multi-row INSERT with $n placeholders numbered
// across the whole batch.
func insertBatchSQL(table string, batch []*models.Record) (string, []any) {
	width := len(recordColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*width)

	for idx, r := range batch {
		placeholders := make([]string, width)
		for k := range placeholders {
			placeholders[k] = fmt.Sprintf("$%d", idx*width+k+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs, recordArgs(r)...)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quoteIdent(table), quotedColumnList(), strings.Join(valueStrings, ","))
	return query, valueArgs
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
