package llm

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reMultiBlank = regexp.MustCompile(`\n{3,}`)
	reMarkdown   = regexp.MustCompile("\\*\\*|__|`")
	reBullet     = regexp.MustCompile(`(?m)^[ \t]*[-*•][ \t]+`)
)

// NormalizeAnswer strips markdown emphasis and list bullets from a model answer and
// collapses noisy whitespace, so "**Transaction ID:** X" reads as "Transaction ID: X".
// Line breaks are kept.
func NormalizeAnswer(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reMarkdown.ReplaceAllString(s, "")
	s = reBullet.ReplaceAllString(s, "")
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reMultiBlank.ReplaceAllString(s, "\n\n")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
