package services

import (
	"context"
	"fmt"
	"io"

	"spotify-records/models"
	"spotify-records/scraper/wikipedia"
	"spotify-records/storage"
	"spotify-records/utils"
)

// Progress lines printed as each stage starts.
const (
	ProgressFetch   = "Downloading table from Wikipedia..."
	ProgressClean   = "Cleaning data..."
	ProgressPersist = "Saving data to SQLite..."
)

// DoneLine is the closing progress line naming where the records went.
func DoneLine(dbPath, table string) string {
	return fmt.Sprintf("Done. Database: %s | Table: %s", dbPath, table)
}

// Pipeline runs fetch → extract → clean → persist once, in order.
type Pipeline struct {
	Fetcher wikipedia.PageFetcher
	Cleaner *Cleaner
	// Sinks are opened one at a time, right before their write, and closed right after.
	Sinks []storage.Opener
	// Snapshot, when set, receives the raw table before cleaning.
	Snapshot storage.TableOpener
	// Done is printed after every sink has stored the records.
	Done     string
	Progress io.Writer
	Logger   *utils.Logger
}

// Run executes every stage. The first error aborts the run; nothing is written
// unless fetching, extraction and cleaning all succeeded.
func (p *Pipeline) Run(ctx context.Context, url, class string) ([]*models.Record, error) {
	p.progress(ProgressFetch)
	html, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("[pipeline] Downloaded %s (%d bytes)", url, len(html))

	table, err := wikipedia.ExtractTable(html, class)
	if err != nil {
		return nil, err
	}
	p.Logger.Info("[extractor] Table %q: %d columns, %d rows", class, table.Width(), len(table.Rows))

	if p.Snapshot != nil {
		if err := p.snapshot(table); err != nil {
			return nil, fmt.Errorf("raw snapshot: %w", err)
		}
	}

	p.progress(ProgressClean)
	records, err := p.Cleaner.Clean(table)
	if err != nil {
		return nil, err
	}

	p.progress(ProgressPersist)
	for i, open := range p.Sinks {
		if err := p.persist(open, records); err != nil {
			return nil, fmt.Errorf("sink %d: %w", i+1, err)
		}
	}

	if p.Done != "" {
		p.progress(p.Done)
	}
	return records, nil
}

func (p *Pipeline) snapshot(table *models.Table) error {
	w, err := p.Snapshot()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			p.Logger.Warn("[pipeline] Closing raw snapshot failed: %v", cerr)
		}
	}()

	if err := w.WriteTable(table); err != nil {
		return err
	}
	p.Logger.Info("[pipeline] Raw table saved (%d rows)", len(table.Rows))
	return nil
}

func (p *Pipeline) persist(open storage.Opener, records []*models.Record) error {
	w, err := open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			p.Logger.Warn("[pipeline] Closing sink failed: %v", cerr)
		}
	}()

	if err := w.Write(records); err != nil {
		return err
	}
	p.Logger.Info("[pipeline] Stored %d records", len(records))
	return nil
}

func (p *Pipeline) progress(line string) {
	if p.Progress != nil {
		fmt.Fprintln(p.Progress, line)
	}
}
