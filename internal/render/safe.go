package render

import (
	"github.com/microcosm-cc/bluemonday"
)

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// SafeHTML renders text like HTML and then sanitizes the result for embedding in documents
func SafeHTML(text string) string {
	return policy.Sanitize(HTML(text))
}

// Sanitize strips anything outside the user-content allowlist from markup
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}
