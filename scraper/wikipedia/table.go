package wikipedia

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"spotify-records/models"
)

const maxSpan = 1000

var (
	// hiddenStyleRegexp matches inline styles that keep an element off screen
	hiddenStyleRegexp = regexp.MustCompile(`(?i)display\s*:\s*none`)
	// numberRegexp matches plain decimal or exponent notation
	numberRegexp = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
	// thousandsRegexp matches numbers grouped with commas, e.g. 1,234,567.8
	thousandsRegexp = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
)

// naValues are cell texts read as missing.
var naValues = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

type gridCell struct {
	text string
}

type span struct {
	cell gridCell
	left int
}

// ExtractTable parses html and converts the first <table> carrying class into a Table.
// Spanned cells are repeated in every grid position they cover, and columns whose
// values are all numeric become float64.
func ExtractTable(html, class string) (*models.Table, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("extractor: parse html: %w", err)
	}

	tables := doc.Find("table").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.HasClass(class)
	})
	if tables.Length() == 0 {
		return nil, &NotFoundError{Class: class}
	}

	return readTable(tables.First()), nil
}

func readTable(table *goquery.Selection) *models.Table {
	table.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		return hiddenStyleRegexp.MatchString(style)
	}).Remove()

	var bodyRows []*goquery.Selection
	table.ChildrenFiltered("tbody, tr").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "tr" {
			bodyRows = append(bodyRows, s)
			return
		}
		s.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
			bodyRows = append(bodyRows, tr)
		})
	})

	header := selectionRows(table.ChildrenFiltered("thead").ChildrenFiltered("tr"))
	if len(header) == 0 {
		for len(bodyRows) > 0 && allHeaderCells(bodyRows[0]) {
			header = append(header, bodyRows[0])
			bodyRows = bodyRows[1:]
		}
	}

	// Each section is its own grid; spans never cross from body into footer.
	head := expandSpans(header)
	body := expandSpans(bodyRows)
	foot := expandSpans(selectionRows(table.ChildrenFiltered("tfoot").ChildrenFiltered("tr")))
	body = append(body, foot...)

	columns := columnNames(head, body)
	width := len(columns)

	rows := make([][]any, 0, len(body))
	for _, gr := range body {
		row := make([]any, width)
		for i := 0; i < width && i < len(gr); i++ {
			row[i] = parseCell(gr[i].text)
		}
		rows = append(rows, row)
	}
	inferNumericColumns(rows, width)

	return &models.Table{Columns: columns, Rows: rows}
}

// expandSpans lays the rows out on a grid, honouring rowspan and colspan.
func expandSpans(rows []*goquery.Selection) [][]gridCell {
	var grid [][]gridCell
	carry := map[int]span{}

	for _, tr := range rows {
		cells := tr.ChildrenFiltered("th, td")
		next := map[int]span{}
		var row []gridCell

		ci := 0
		for col := 0; ci < cells.Length() || col <= lastCarried(carry); col++ {
			if sp, ok := carry[col]; ok {
				row = append(row, sp.cell)
				if sp.left > 1 {
					next[col] = span{cell: sp.cell, left: sp.left - 1}
				}
				continue
			}
			if ci >= cells.Length() {
				row = append(row, gridCell{})
				continue
			}

			s := cells.Eq(ci)
			ci++
			c := gridCell{text: collapseSpace(s.Text())}
			colspan := spanAttr(s, "colspan")
			rowspan := spanAttr(s, "rowspan")
			for k := 0; k < colspan; k++ {
				row = append(row, c)
				if rowspan > 1 {
					next[col+k] = span{cell: c, left: rowspan - 1}
				}
			}
			col += colspan - 1
		}

		carry = next
		if len(row) > 0 {
			grid = append(grid, row)
		}
	}

	// Rowspans reaching past the last row still produce rows of their own.
	for len(carry) > 0 {
		next := map[int]span{}
		row := make([]gridCell, lastCarried(carry)+1)
		for col, sp := range carry {
			row[col] = sp.cell
			if sp.left > 1 {
				next[col] = span{cell: sp.cell, left: sp.left - 1}
			}
		}
		carry = next
		grid = append(grid, row)
	}
	return grid
}

func selectionRows(sel *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	sel.Each(func(_ int, tr *goquery.Selection) {
		rows = append(rows, tr)
	})
	return rows
}

func lastCarried(carry map[int]span) int {
	last := -1
	for col := range carry {
		if col > last {
			last = col
		}
	}
	return last
}

func spanAttr(s *goquery.Selection, name string) int {
	v, ok := s.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

// allHeaderCells reports whether a row holds only <th> cells.
func allHeaderCells(tr *goquery.Selection) bool {
	cells := tr.ChildrenFiltered("th, td")
	return cells.Length() > 0 && cells.Not("th").Length() == 0
}

// columnNames joins multi-row headers per column. Without a header the columns are
// numbered and as wide as the widest body row.
func columnNames(head, body [][]gridCell) []string {
	if len(head) == 0 {
		width := 0
		for _, r := range body {
			if len(r) > width {
				width = len(r)
			}
		}
		names := make([]string, width)
		for i := range names {
			names[i] = strconv.Itoa(i)
		}
		return names
	}

	width := 0
	for _, r := range head {
		if len(r) > width {
			width = len(r)
		}
	}

	names := make([]string, width)
	for i := range names {
		var parts []string
		for _, r := range head {
			if i >= len(r) || r[i].text == "" {
				continue
			}
			if n := len(parts); n > 0 && parts[n-1] == r[i].text {
				continue
			}
			parts = append(parts, r[i].text)
		}
		names[i] = strings.Join(parts, " ")
	}
	return names
}

func parseCell(text string) any {
	if _, na := naValues[text]; na {
		return nil
	}
	return text
}

// inferNumericColumns converts a column to float64 when every present cell is numeric.
func inferNumericColumns(rows [][]any, width int) {
	for col := 0; col < width; col++ {
		values := make([]float64, len(rows))
		numeric := true
		for i, row := range rows {
			s, ok := row[col].(string)
			if !ok {
				continue
			}
			f, ok := toNumber(s)
			if !ok {
				numeric = false
				break
			}
			values[i] = f
		}
		if !numeric {
			continue
		}
		for i, row := range rows {
			if row[col] != nil {
				row[col] = values[i]
			}
		}
	}
}

func toNumber(s string) (float64, bool) {
	if thousandsRegexp.MatchString(s) {
		s = strings.ReplaceAll(s, ",", "")
	}
	if !numberRegexp.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
