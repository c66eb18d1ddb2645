package domain

// Item represents a single catalog entry to annotate with keywords.
// Built once by the catalog ingester and treated as read-only afterwards.
type Item struct {
	URL         string
	Name        string
	Description string
	Tags        []string
}
