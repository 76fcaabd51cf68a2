package normalize

import (
	"regexp"
	"strings"
	"time"
)

// ISOLayout is the canonical output layout (naive local time, no offset).
const ISOLayout = "2006-01-02T15:04:05"

type dateShape struct {
	name   string
	re     *regexp.Regexp
	layout string
	fix    func(m []string) string
}

var reSpaces = regexp.MustCompile(`\s+`)

// Shapes are tried in order; the first whose pattern matches decides.
var dateShapes = []dateShape{
	{
		name:   "dd-mm-yyyy hh:mm:ss",
		re:     regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})\s+(\d{1,2}):(\d{2}):(\d{2})`),
		layout: "2-1-2006 15:04:05",
		fix:    func(m []string) string { return m[1] + "-" + m[2] + "-" + m[3] + " " + m[4] + ":" + m[5] + ":" + m[6] },
	},
	{
		name:   "dd/mm/yy hh:mm",
		re:     regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})\s+(\d{1,2}):(\d{2})$`),
		layout: "2/1/2006 15:04",
		fix:    func(m []string) string { return m[1] + "/" + m[2] + "/20" + m[3] + " " + m[4] + ":" + m[5] },
	},
	{
		name:   "mm/dd/yyyy, hh:mm:ss am|pm",
		re:     regexp.MustCompile(`(?i)^(\d{1,2})/(\d{1,2})/(\d{4}),?\s*(\d{1,2}):(\d{2}):(\d{2})\s*(AM|PM)`),
		layout: "1/2/2006 3:04:05 PM",
		fix: func(m []string) string {
			return m[1] + "/" + m[2] + "/" + m[3] + " " + m[4] + ":" + m[5] + ":" + m[6] + " " + strings.ToUpper(m[7])
		},
	},
	{
		name:   "iso",
		re:     regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2})`),
		layout: ISOLayout,
		fix:    func(m []string) string { return m[1] },
	},
}

// ParseDate parses one of the supported receipt date shapes.
func ParseDate(raw string) (time.Time, bool) {
	s := reSpaces.ReplaceAllString(strings.TrimSpace(raw), " ")
	for _, shape := range dateShapes {
		m := shape.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		t, err := time.Parse(shape.layout, shape.fix(m))
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// Date returns the ISO-8601 form of raw, or raw unchanged when it cannot be parsed.
func Date(raw string) string {
	if t, ok := ParseDate(raw); ok {
		return t.Format(ISOLayout)
	}
	return raw
}

// DatePtr is Date over an optional value.
func DatePtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	out := Date(*raw)
	return &out
}
