package jobs

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// BuildSearchBlob produces the denormalized lowercase text the search index
// runs over. The output is deterministic for a given set of inputs: title,
// HTML-stripped description, location, company name, then tags, joined by
// single spaces.
func BuildSearchBlob(title, descriptionHTML, location, companyName string, tags []string) string {
	parts := make([]string, 0, 4+len(tags))
	desc := html.UnescapeString(stripPolicy.Sanitize(descriptionHTML))
	for _, p := range []string{title, desc, location, companyName} {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
