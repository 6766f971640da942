package services

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"spotify-records/models"
	"spotify-records/utils"
)

const topN = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(records []*models.Record) *models.InsightReport {
	report := &models.InsightReport{
		RecordsByArtist: make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalRecords = len(records)
	report.MinStreams = records[0].Streams
	report.MaxStreams = records[0].Streams
	report.MostStreamed = records[0]

	for _, r := range records {
		if r.Rank != nil {
			report.RankedRecords++
		}
		if r.Artists != "" {
			report.RecordsByArtist[r.Artists]++
		}
		report.TotalStreams += r.Streams
		if r.Streams < report.MinStreams {
			report.MinStreams = r.Streams
		}
		if r.Streams > report.MaxStreams {
			report.MaxStreams = r.Streams
			report.MostStreamed = r
		}
	}

	report.AverageStreams = round3(report.TotalStreams / float64(len(records)))
	report.TotalStreams = round3(report.TotalStreams)

	// Top N by streams, ties keep table order
	sorted := append([]*models.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Streams > sorted[j].Streams
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}
	report.TopStreamed = sorted

	s.logger.Debug("[insights] %d records, %d artists", report.TotalRecords, len(report.RecordsByArtist))
	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	overview := newTable(w)
	overview.SetTitle("Spotify streaming records")
	overview.AppendRows([]table.Row{
		{"Records stored", r.TotalRecords},
		{"Records with a rank", r.RankedRecords},
		{"Total streams (billions)", fmt.Sprintf("%.3f", r.TotalStreams)},
		{"Average streams (billions)", fmt.Sprintf("%.3f", r.AverageStreams)},
		{"Min / max streams (billions)", fmt.Sprintf("%.3f / %.3f", r.MinStreams, r.MaxStreams)},
	})
	overview.Render()

	top := newTable(w)
	top.SetTitle(fmt.Sprintf("Top %d most streamed", topN))
	top.AppendHeader(table.Row{"#", "Song", "Artist(s)", "Streams (billions)"})
	for i, rec := range r.TopStreamed {
		top.AppendRow(table.Row{i + 1, truncate(rec.Song, 40), truncate(rec.Artists, 30), rec.Streams})
	}
	top.Render()

	// Artists by record count, most frequent first
	type artistCount struct {
		name  string
		count int
	}
	var artists []artistCount
	for name, cnt := range r.RecordsByArtist {
		artists = append(artists, artistCount{name, cnt})
	}
	sort.Slice(artists, func(i, j int) bool {
		if artists[i].count == artists[j].count {
			return artists[i].name < artists[j].name
		}
		return artists[i].count > artists[j].count
	})
	if len(artists) > topN {
		artists = artists[:topN]
	}

	byArtist := newTable(w)
	byArtist.SetTitle("Records by artist")
	byArtist.AppendHeader(table.Row{"Artist(s)", "Records"})
	for _, a := range artists {
		byArtist.AppendRow(table.Row{truncate(a.name, 40), a.count})
	}
	byArtist.Render()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// truncate shortens s to at most max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
