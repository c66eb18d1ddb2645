package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/keyscope/pkg/domain"
	"github.com/umputun/keyscope/pkg/llm"
	"github.com/umputun/keyscope/pkg/metrics"
)

//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor
//go:generate moq -out mocks/exclusions.go -pkg mocks -skip-ensure -fmt goimports . Exclusions
//go:generate moq -out mocks/result_store.go -pkg mocks -skip-ensure -fmt goimports . ResultStore

// Scheduler distributes catalog items across provider workers through a
// shared queue. Every active provider runs one worker goroutine, items that
// fail migrate to whichever worker picks them up next, and a run finishes
// when each item has either produced a result or run out of providers.
type Scheduler struct {
	extractors []Extractor
	exclusions Exclusions
	store      ResultStore
	metrics    *metrics.Metrics

	rateLimitPause  time.Duration
	rateLimitJitter time.Duration
	transientPause  time.Duration

	mu          sync.Mutex // guards results, progress, stats and liveWorkers
	results     []domain.ExtractionResult
	progress    Progress
	stats       map[string]*domain.ProviderStats
	liveWorkers map[string]struct{}
}

// handoffPause is how long a worker naps after putting back a task it
// already failed on, giving a fresh provider time to grab it.
const handoffPause = 50 * time.Millisecond

// Extractor interface for a single provider attempt
type Extractor interface {
	Name() string
	Extract(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error)
}

// Exclusions interface for run-wide keyword frequency tracking
type Exclusions interface {
	Record(keywords []string)
	Current() []string
	Size() int
}

// ResultStore interface for persisting accepted results as they arrive
type ResultStore interface {
	SaveResult(ctx context.Context, res *domain.ExtractionResult) error
}

// Progress is a point-in-time view of a running extraction
type Progress struct {
	Total     int `json:"total"`
	Done      int `json:"done"`
	Succeeded int `json:"succeeded"`
	Dropped   int `json:"dropped"`
	Rerouted  int `json:"rerouted"`
}

// Config holds scheduler pause tuning
type Config struct {
	RateLimitPause  time.Duration // base pause after a rate-limited attempt
	RateLimitJitter time.Duration // random addition on top of the base
	TransientPause  time.Duration // pause after timeouts and 5xx failures
}

// task is one queued extraction unit. retry counts how many providers have
// already failed on this item, tried records which ones so a reroute lands
// on a fresh provider whenever one is still running.
type task struct {
	item  domain.Item
	retry int
	tried []string
}

func (t *task) triedBy(name string) bool {
	for _, n := range t.tried {
		if n == name {
			return true
		}
	}
	return false
}

// barrier counts outstanding task units. Reroutes add a unit before the
// failed attempt is acknowledged, so the count never dips to zero early.
type barrier struct {
	n    int64
	done chan struct{}
}

func newBarrier(n int) *barrier {
	b := &barrier{n: int64(n), done: make(chan struct{})}
	if n == 0 {
		close(b.done)
	}
	return b
}

func (b *barrier) add() { atomic.AddInt64(&b.n, 1) }

func (b *barrier) ack() {
	if atomic.AddInt64(&b.n, -1) == 0 {
		close(b.done)
	}
}

// NewScheduler creates a scheduler over the given providers. The store and
// metrics may be nil, results are then kept in memory only.
func NewScheduler(extractors []Extractor, exclusions Exclusions, store ResultStore, m *metrics.Metrics, cfg Config) *Scheduler {
	if cfg.RateLimitPause == 0 {
		cfg.RateLimitPause = 500 * time.Millisecond
	}
	if cfg.RateLimitJitter == 0 {
		cfg.RateLimitJitter = 1500 * time.Millisecond
	}
	if cfg.TransientPause == 0 {
		cfg.TransientPause = time.Second
	}

	return &Scheduler{
		extractors:      extractors,
		exclusions:      exclusions,
		store:           store,
		metrics:         m,
		rateLimitPause:  cfg.RateLimitPause,
		rateLimitJitter: cfg.RateLimitJitter,
		transientPause:  cfg.TransientPause,
	}
}

// Run processes all items to completion and returns the run summary. It
// blocks until every item is resolved or the context is cancelled. A
// scheduler instance runs one extraction at a time.
func (s *Scheduler) Run(ctx context.Context, items []domain.Item) (domain.RunSummary, error) {
	if len(s.extractors) == 0 {
		return domain.RunSummary{}, fmt.Errorf("no active providers configured")
	}

	started := time.Now()
	s.mu.Lock()
	s.results = nil
	s.progress = Progress{Total: len(items)}
	s.stats = make(map[string]*domain.ProviderStats, len(s.extractors))
	s.liveWorkers = make(map[string]struct{}, len(s.extractors))
	for _, e := range s.extractors {
		s.stats[e.Name()] = &domain.ProviderStats{Name: e.Name()}
		s.liveWorkers[e.Name()] = struct{}{}
	}
	s.mu.Unlock()

	// each item occupies at most one slot at a time, a reroute returns the
	// slot it just freed
	queue := make(chan task, len(items))
	outstanding := newBarrier(len(items))
	for _, it := range items {
		queue <- task{item: it}
	}
	s.metrics.SetQueueDepth(len(queue))

	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var workers sync.WaitGroup
	for _, ext := range s.extractors {
		workers.Add(1)
		go func(ext Extractor) {
			defer workers.Done()
			defer func() {
				s.mu.Lock()
				delete(s.liveWorkers, ext.Name())
				s.mu.Unlock()
			}()
			s.worker(wctx, ext, queue, outstanding)
		}(ext)
	}

	lgr.Printf("[INFO] extraction started: %d items across %d providers", len(items), len(s.extractors))

	select {
	case <-outstanding.done:
	case <-ctx.Done():
	}
	cancel()
	workers.Wait()
	s.metrics.SetQueueDepth(0)

	finished := time.Now()
	s.mu.Lock()
	prog := s.progress
	keywords := 0
	for i := range s.results {
		keywords += len(s.results[i].Keywords)
	}
	stats := make([]domain.ProviderStats, 0, len(s.extractors))
	for _, e := range s.extractors {
		stats = append(stats, *s.stats[e.Name()])
	}
	s.mu.Unlock()

	summary := domain.RunSummary{
		Attempted:  prog.Total,
		Succeeded:  prog.Succeeded,
		Dropped:    prog.Dropped,
		Rerouted:   prog.Rerouted,
		Keywords:   keywords,
		Providers:  stats,
		StartedAt:  started,
		FinishedAt: finished,
	}

	if ctx.Err() != nil {
		lgr.Printf("[WARN] extraction interrupted: %d/%d done", prog.Done, prog.Total)
		return summary, ctx.Err()
	}

	lgr.Printf("[INFO] extraction completed: %d/%d succeeded, %d dropped, %d reroutes, %d keywords in %v",
		prog.Succeeded, prog.Total, prog.Dropped, prog.Rerouted, keywords, summary.Duration().Round(time.Millisecond))
	return summary, nil
}

// worker pulls tasks until the queue is empty or the run is cancelled. It
// never blocks on an empty queue, an idle provider simply leaves and the
// remaining workers drain whatever gets rerouted.
func (s *Scheduler) worker(ctx context.Context, ext Extractor, queue chan task, outstanding *barrier) {
	name := ext.Name()
	providers := len(s.extractors)
	streak := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var t task
		select {
		case t = <-queue:
		default:
			lgr.Printf("[DEBUG] worker %s: queue empty, exiting", name)
			return
		}
		s.metrics.SetQueueDepth(len(queue))

		if t.triedBy(name) && s.hasUntriedWorker(&t) {
			// a provider that has not failed this item yet is still running,
			// hand the task back for it
			queue <- t
			select {
			case <-ctx.Done():
				return
			case <-time.After(handoffPause):
			}
			continue
		}

		res, err := ext.Extract(ctx, t.item, s.exclusions.Current())

		if err == nil {
			streak = 0
			s.metrics.ObserveAttempt(name, "success", res.Elapsed)
			s.metrics.AddKeywords(len(res.Keywords))

			keywords := make([]string, 0, len(res.Keywords))
			for _, kw := range res.Keywords {
				keywords = append(keywords, kw.Keyword)
			}

			s.mu.Lock()
			s.results = append(s.results, *res)
			s.exclusions.Record(keywords)
			s.progress.Done++
			s.progress.Succeeded++
			s.stats[name].Succeeded++
			s.mu.Unlock()
			s.metrics.SetExclusionSize(s.exclusions.Size())

			if s.store != nil {
				if serr := s.store.SaveResult(ctx, res); serr != nil {
					lgr.Printf("[WARN] failed to save result for %q: %v", t.item.Name, serr)
				}
			}

			lgr.Printf("[INFO] %s: %d keywords from %q in %v",
				name, len(res.Keywords), t.item.Name, res.Elapsed.Round(time.Millisecond))
			outstanding.ack()
			continue
		}

		if ctx.Err() != nil {
			// the attempt died with the run, leave the unit unacknowledged
			return
		}

		streak++
		kind := llm.Classify(err)
		s.metrics.ObserveAttempt(name, string(kind), 0)

		if t.retry < providers-1 {
			outstanding.add()
			queue <- task{item: t.item, retry: t.retry + 1, tried: append(t.tried, name)}
			s.mu.Lock()
			s.progress.Rerouted++
			s.stats[name].Failed++
			s.mu.Unlock()
			s.metrics.IncReroutes()
			s.metrics.SetQueueDepth(len(queue))
			lgr.Printf("[WARN] %s failed on %q (attempt %d of %d): %v, rerouting",
				name, t.item.Name, t.retry+1, providers, err)
		} else {
			s.mu.Lock()
			s.progress.Done++
			s.progress.Dropped++
			s.stats[name].Failed++
			s.mu.Unlock()
			s.metrics.IncDrops()
			lgr.Printf("[WARN] dropping %q, all %d providers failed, last error from %s: %v",
				t.item.Name, providers, name, err)
		}
		outstanding.ack()

		if streak >= 3 {
			lgr.Printf("[WARN] %s: %d consecutive failures", name, streak)
		}

		if pause := s.failurePause(kind); pause > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(pause):
			}
		}
	}
}

// hasUntriedWorker reports whether some still-running provider has not yet
// failed this task. When none is left the current worker keeps the task even
// though it already failed it, so the run can finish.
func (s *Scheduler) hasUntriedWorker(t *task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name := range s.liveWorkers {
		if !t.triedBy(name) {
			return true
		}
	}
	return false
}

// failurePause picks the cool-down after a failed attempt. Rate limits get
// the base pause plus jitter so parallel workers do not hammer a throttled
// endpoint in lockstep, transient failures a short fixed pause, anything
// else none.
func (s *Scheduler) failurePause(kind llm.FailureKind) time.Duration {
	switch kind {
	case llm.FailureRateLimited:
		pause := s.rateLimitPause
		if s.rateLimitJitter > 0 {
			pause += time.Duration(rand.Int63n(int64(s.rateLimitJitter))) //nolint:gosec // it's fine to use weak random generator here
		}
		return pause
	case llm.FailureTransient:
		return s.transientPause
	case llm.FailureOther:
		return 0
	}
	return 0
}

// Progress returns a snapshot of the running extraction.
func (s *Scheduler) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Results returns a copy of the results accepted so far.
func (s *Scheduler) Results() []domain.ExtractionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]domain.ExtractionResult, len(s.results))
	copy(res, s.results)
	return res
}

// Stats returns per-provider outcome counts in configuration order.
func (s *Scheduler) Stats() []domain.ProviderStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := make([]domain.ProviderStats, 0, len(s.extractors))
	for _, e := range s.extractors {
		if st, ok := s.stats[e.Name()]; ok {
			stats = append(stats, *st)
		}
	}
	return stats
}
