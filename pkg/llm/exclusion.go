package llm

import (
	"sort"
	"sync"
)

// Tracker counts how often each keyword has been produced across the run and
// exposes the over-used ones so later prompts can forbid them. A keyword
// joins the exclusion list once its count reaches the threshold, the list is
// capped to the most frequent entries with ties broken by first appearance.
type Tracker struct {
	threshold int
	limit     int

	mu     sync.Mutex
	counts map[string]int
	order  map[string]int // keyword to first-seen sequence
	seq    int
}

// NewTracker creates a tracker with the given promotion threshold and list
// cap. Non-positive values fall back to the defaults of 10 and 50.
func NewTracker(threshold, limit int) *Tracker {
	if threshold <= 0 {
		threshold = 10
	}
	if limit <= 0 {
		limit = 50
	}
	return &Tracker{
		threshold: threshold,
		limit:     limit,
		counts:    make(map[string]int),
		order:     make(map[string]int),
	}
}

// Record counts one accepted result's keywords.
func (t *Tracker) Record(keywords []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if _, ok := t.order[kw]; !ok {
			t.order[kw] = t.seq
			t.seq++
		}
		t.counts[kw]++
	}
}

// Current returns the exclusion list as an independent snapshot, most
// frequent first. Callers may hold it across network calls safely.
func (t *Tracker) Current() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	over := make([]string, 0, len(t.counts))
	for kw, n := range t.counts {
		if n >= t.threshold {
			over = append(over, kw)
		}
	}
	sort.Slice(over, func(i, j int) bool {
		if t.counts[over[i]] != t.counts[over[j]] {
			return t.counts[over[i]] > t.counts[over[j]]
		}
		return t.order[over[i]] < t.order[over[j]]
	})
	if len(over) > t.limit {
		over = over[:t.limit]
	}
	return over
}

// Size reports how many keywords are currently excluded.
func (t *Tracker) Size() int {
	return len(t.Current())
}
