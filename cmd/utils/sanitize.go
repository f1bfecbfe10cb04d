package utils

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

var xssPolicy = bluemonday.UGCPolicy()

// Sanitize strips unsafe HTML from user generated content and returns
// the unescaped result.
func Sanitize(val string) string {
	return html.UnescapeString(xssPolicy.Sanitize(val))
}
