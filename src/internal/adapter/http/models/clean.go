package models

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// markupPolicy allows no elements and drops script/style bodies entirely.
var markupPolicy = bluemonday.StrictPolicy()

var (
	javascriptScheme = regexp.MustCompile(`(?i)javascript:`)
	inlineHandler    = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// Clean strips every markup tag, javascript: schemes and inline event
// handlers, then trims surrounding whitespace.
func Clean(s string) string {
	if s == "" {
		return s
	}
	s = markupPolicy.Sanitize(s)
	s = javascriptScheme.ReplaceAllString(s, "")
	s = inlineHandler.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
