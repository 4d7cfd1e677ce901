package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"equity-screener/internal/types"
)

// LocateTable finds the first table that follows the first heading whose
// text contains any of titles (case-insensitive). A heading of the same or
// higher rank closes the section; no table before it means NotFound.
func LocateTable(doc *goquery.Document, titles []string) Lookup[*types.RawTable] {
	if doc == nil || len(doc.Nodes) == 0 || len(titles) == 0 {
		return notFound[*types.RawTable](nil, PathHeadingMiss)
	}

	lowered := make([]string, len(titles))
	for i, t := range titles {
		lowered[i] = strings.ToLower(t)
	}

	var (
		heading *html.Node
		level   int
		table   *html.Node
		closed  bool
	)

	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if lvl := headingLevel(n); lvl > 0 {
				if heading == nil {
					text := strings.ToLower(goquery.NewDocumentFromNode(n).Text())
					for _, t := range lowered {
						if strings.Contains(text, t) {
							heading, level = n, lvl
							return false
						}
					}
				} else if lvl <= level {
					closed = true
					return true
				}
			}
			if heading != nil && n.Data == "table" {
				table = n
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(doc.Nodes[0])

	switch {
	case heading == nil:
		return notFound[*types.RawTable](nil, PathHeadingMiss)
	case table == nil || closed:
		return notFound[*types.RawTable](nil, PathNoTable)
	}

	path := fmt.Sprintf("h%d:%s", level, collapseSpace(goquery.NewDocumentFromNode(heading).Text()))
	return found(tableFromSelection(goquery.NewDocumentFromNode(table).Selection), path)
}

func headingLevel(n *html.Node) int {
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 0
}

// tableFromSelection reads thead cells as headers, or the first row holding
// th cells when there is no thead. Rows with no cells are dropped.
func tableFromSelection(table *goquery.Selection) *types.RawTable {
	raw := &types.RawTable{}

	headerRow := table.ChildrenFiltered("thead").Find("tr").First()
	if headerRow.Length() == 0 {
		headerRow = rowsOf(table).FilterFunction(func(_ int, tr *goquery.Selection) bool {
			return tr.ChildrenFiltered("th").Length() > 0
		}).First()
	}
	headerRow.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		raw.Headers = append(raw.Headers, collapseSpace(cell.Text()))
	})

	rowsOf(table).Each(func(_ int, tr *goquery.Selection) {
		if headerRow.Length() > 0 && tr.IsSelection(headerRow) {
			return
		}
		var cells []string
		tr.ChildrenFiltered("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, collapseSpace(cell.Text()))
		})
		if len(cells) > 0 {
			raw.Rows = append(raw.Rows, cells)
		}
	})

	return raw
}

// rowsOf returns body rows of table without descending into nested tables.
func rowsOf(table *goquery.Selection) *goquery.Selection {
	direct := table.ChildrenFiltered("tr")
	bodies := table.ChildrenFiltered("tbody").ChildrenFiltered("tr")
	return direct.AddSelection(bodies)
}
