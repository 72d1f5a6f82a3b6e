package ocr

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/credit-audit/internal/entity"
)

var reLayoutGap = regexp.MustCompile(`\s{2,}|\t`)

const (
	minTableCells = 3
	minTableRows  = 2
)

// TablesFromLayout recovers tables from pdftotext -layout output. A line whose columns are
// separated by runs of two or more spaces and that has at least three cells is a row;
// consecutive rows form one table.
func TablesFromLayout(text string) []entity.Table {
	var tables []entity.Table
	var current entity.Table
	flush := func() {
		if len(current) >= minTableRows {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(strings.ReplaceAll(ln, "\f", ""))
		if ln == "" {
			flush()
			continue
		}
		cells := reLayoutGap.Split(ln, -1)
		if len(cells) < minTableCells {
			flush()
			continue
		}
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		current = append(current, cells)
	}
	flush()
	return tables
}
