package extract

import (
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Matcher decides whether a cell's text is the wanted label.
type Matcher func(text string) bool

// Exact matches trimmed text equal to label.
func Exact(label string) Matcher {
	return func(text string) bool {
		return strings.TrimSpace(text) == label
	}
}

// Bilingual matches "<local>/<english>" labels case-insensitively; either the full
// pair or the english half alone is accepted, with free spacing around the slash.
func Bilingual(local, english string) Matcher {
	pattern := `(?is)(?:` + quoteWords(local) + `\s*/\s*)?` + quoteWords(english)
	re := regexp.MustCompile(pattern)
	return func(text string) bool {
		return re.MatchString(text)
	}
}

func quoteWords(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, `\s+`)
}

// Resolver answers label-anchor lookups over a document subtree.
type Resolver struct {
	root *goquery.Selection
}

// NewResolver parses HTML into a resolver rooted at the document.
func NewResolver(r io.Reader) (*Resolver, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Resolver{root: doc.Selection}, nil
}

// Within returns a resolver scoped to sel.
func Within(sel *goquery.Selection) *Resolver {
	return &Resolver{root: sel}
}

// Root exposes the underlying selection.
func (r *Resolver) Root() *goquery.Selection { return r.root }

// Label returns the first cell whose text satisfies m.
func (r *Resolver) Label(m Matcher) *goquery.Selection {
	var found *goquery.Selection
	r.root.Find("td").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		// layout cells wrapping whole nested tables are not labels
		if s.Find("td").Length() > 0 {
			return true
		}
		if m(s.Text()) {
			found = s
			return false
		}
		return true
	})
	return found
}

// Has reports whether a label cell exists.
func (r *Resolver) Has(m Matcher) bool {
	return r.Label(m) != nil
}

// Value returns the trimmed text of the sibling cell following the label, or nil.
func (r *Resolver) Value(m Matcher) *string {
	label := r.Label(m)
	if label == nil {
		return nil
	}
	next := label.NextAllFiltered("td").First()
	if next.Length() == 0 {
		return nil
	}
	v := cellText(next)
	return &v
}

// Table returns the table enclosing the label cell, or nil.
func (r *Resolver) Table(m Matcher) *Resolver {
	label := r.Label(m)
	if label == nil {
		return nil
	}
	table := label.Closest("table")
	if table.Length() == 0 {
		return nil
	}
	return Within(table)
}

// RowContaining returns the cells of the first row whose leading cells include
// exactly want (case-insensitive). Only the first lead cells are inspected.
func (r *Resolver) RowContaining(want string, lead int) []string {
	want = strings.TrimSpace(want)
	if want == "" {
		return nil
	}
	var cells []string
	r.root.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		tds := row.Find("td")
		hit := false
		tds.EachWithBreak(func(i int, td *goquery.Selection) bool {
			if i >= lead {
				return false
			}
			if strings.EqualFold(cellText(td), want) {
				hit = true
				return false
			}
			return true
		})
		if !hit {
			return true
		}
		tds.Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, cellText(td))
		})
		return false
	})
	return cells
}

func cellText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
