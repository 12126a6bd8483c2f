package jobs

import (
	"fmt"
	"strings"
)

// Job is one posting scraped from a search results page, enriched with
// details once its page has been visited.
type Job struct {
	Title       string
	Company     string
	Location    string
	Link        string
	ApplyMethod string
	Description string
	Recruiter   string
	PDFPath     string
}

// NormalizedLink strips the query string so the same posting reached through
// different searches dedupes to one link.
func (j *Job) NormalizedLink() string {
	link := strings.TrimSpace(j.Link)
	if i := strings.IndexByte(link, '?'); i >= 0 {
		link = link[:i]
	}
	return strings.TrimRight(link, "/")
}

func (j *Job) String() string {
	return fmt.Sprintf("%s at %s (%s)", j.Title, j.Company, j.Location)
}
