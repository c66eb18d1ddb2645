package domain

import "time"

// KeywordRecord is one extracted keyword with its category and justification.
// All three fields are non-empty after validation.
type KeywordRecord struct {
	Keyword   string `json:"keyword"`
	Dimension string `json:"dimension"`
	Reason    string `json:"reason"`
}

// ExtractionResult holds the accepted keywords for a single item.
// Created once per successfully parsed response and never mutated after.
type ExtractionResult struct {
	ItemURL  string
	ItemName string
	Provider string
	Keywords []KeywordRecord
	Elapsed  time.Duration
}

// ProviderStats counts per-provider outcomes over a run.
type ProviderStats struct {
	Name      string `json:"name"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// RunSummary describes a completed extraction run.
type RunSummary struct {
	Attempted  int
	Succeeded  int
	Dropped    int
	Rerouted   int
	Keywords   int
	Providers  []ProviderStats
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration returns the total run time.
func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// SuccessRate returns the fraction of attempted items that produced results,
// in percent. Zero attempted yields zero.
func (s RunSummary) SuccessRate() float64 {
	if s.Attempted == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Attempted) * 100
}
