package domain

import "time"

// Page is a cached crawl of one model page. The cache survives between runs
// so interrupted pre-crawls resume where they stopped.
type Page struct {
	URL         string
	Name        string
	Description string
	Tags        []string
	FetchedAt   time.Time
}
