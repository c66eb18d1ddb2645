package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/umputun/keyscope/pkg/domain"
	"github.com/umputun/keyscope/pkg/llm"
	"github.com/umputun/keyscope/pkg/metrics"
	"github.com/umputun/keyscope/pkg/scheduler/mocks"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testItems(n int) []domain.Item {
	items := make([]domain.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, domain.Item{
			URL:  fmt.Sprintf("https://gitcode.com/org/model-%d", i),
			Name: fmt.Sprintf("model-%d", i),
		})
	}
	return items
}

func kwRecords(n int) []domain.KeywordRecord {
	recs := make([]domain.KeywordRecord, 0, n)
	for i := 0; i < n; i++ {
		recs = append(recs, domain.KeywordRecord{
			Keyword:   fmt.Sprintf("kw-%d", i),
			Dimension: llm.DimensionUseCase,
			Reason:    "frequent search phrase",
		})
	}
	return recs
}

// okExtractor succeeds on every item with 5 keyword records
func okExtractor(name string, delay time.Duration) *mocks.ExtractorMock {
	return &mocks.ExtractorMock{
		NameFunc: func() string { return name },
		ExtractFunc: func(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
			if delay > 0 {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
			}
			return &domain.ExtractionResult{
				ItemURL:  item.URL,
				ItemName: item.Name,
				Provider: name,
				Keywords: kwRecords(5),
				Elapsed:  delay,
			}, nil
		},
	}
}

func noExclusions() *mocks.ExclusionsMock {
	return &mocks.ExclusionsMock{
		CurrentFunc: func() []string { return nil },
		RecordFunc:  func(keywords []string) {},
		SizeFunc:    func() int { return 0 },
	}
}

func TestNewScheduler_Defaults(t *testing.T) {
	s := NewScheduler([]Extractor{okExtractor("zhipu", 0)}, noExclusions(), nil, nil, Config{})
	assert.Equal(t, 500*time.Millisecond, s.rateLimitPause)
	assert.Equal(t, 1500*time.Millisecond, s.rateLimitJitter)
	assert.Equal(t, time.Second, s.transientPause)

	s = NewScheduler([]Extractor{okExtractor("zhipu", 0)}, noExclusions(), nil, nil, Config{
		RateLimitPause:  time.Second,
		RateLimitJitter: 100 * time.Millisecond,
		TransientPause:  2 * time.Second,
	})
	assert.Equal(t, time.Second, s.rateLimitPause)
	assert.Equal(t, 100*time.Millisecond, s.rateLimitJitter)
	assert.Equal(t, 2*time.Second, s.transientPause)
}

func TestScheduler_Run(t *testing.T) {
	zhipu := okExtractor("zhipu", time.Millisecond)
	openrouter := okExtractor("openrouter", time.Millisecond)
	store := &mocks.ResultStoreMock{
		SaveResultFunc: func(ctx context.Context, res *domain.ExtractionResult) error { return nil },
	}

	s := NewScheduler([]Extractor{zhipu, openrouter}, noExclusions(), store, metrics.New(), Config{})
	summary, err := s.Run(context.Background(), testItems(4))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Attempted)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 0, summary.Dropped)
	assert.Equal(t, 0, summary.Rerouted)
	assert.Equal(t, 20, summary.Keywords)
	assert.False(t, summary.FinishedAt.Before(summary.StartedAt))

	results := s.Results()
	require.Len(t, results, 4)
	seen := map[string]bool{}
	for _, res := range results {
		assert.Len(t, res.Keywords, 5)
		seen[res.ItemURL] = true
	}
	assert.Len(t, seen, 4, "every item produced exactly one result")

	succeeded := 0
	for _, st := range summary.Providers {
		succeeded += st.Succeeded
		assert.Equal(t, 0, st.Failed)
	}
	assert.Equal(t, 4, succeeded)
	assert.Len(t, store.SaveResultCalls(), 4)

	prog := s.Progress()
	assert.Equal(t, Progress{Total: 4, Done: 4, Succeeded: 4}, prog)
}

func TestScheduler_RunNoProviders(t *testing.T) {
	s := NewScheduler(nil, noExclusions(), nil, nil, Config{})
	_, err := s.Run(context.Background(), testItems(3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active providers")
}

func TestScheduler_RunNoItems(t *testing.T) {
	s := NewScheduler([]Extractor{okExtractor("zhipu", 0)}, noExclusions(), nil, nil, Config{})
	summary, err := s.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Attempted)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Empty(t, s.Results())
}

func TestScheduler_RunReroutesToHealthyProvider(t *testing.T) {
	// the healthy provider holds its first item until the flaky one has
	// failed, so the failure and the reroute happen in a fixed order
	flakyFailed := make(chan struct{})
	var once sync.Once

	flaky := &mocks.ExtractorMock{
		NameFunc: func() string { return "zhipu" },
		ExtractFunc: func(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
			once.Do(func() { close(flakyFailed) })
			return nil, &llm.TransientError{Provider: "zhipu", Err: errors.New("upstream 503")}
		},
	}
	healthy := &mocks.ExtractorMock{
		NameFunc: func() string { return "openrouter" },
		ExtractFunc: func(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
			select {
			case <-flakyFailed:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &domain.ExtractionResult{
				ItemURL:  item.URL,
				ItemName: item.Name,
				Provider: "openrouter",
				Keywords: kwRecords(5),
			}, nil
		},
	}

	// long transient pause parks the flaky provider after its one failure
	s := NewScheduler([]Extractor{flaky, healthy}, noExclusions(), nil, nil, Config{TransientPause: time.Minute})
	summary, err := s.Run(context.Background(), testItems(3))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Succeeded)
	assert.Equal(t, 0, summary.Dropped)
	assert.Equal(t, 1, summary.Rerouted, "the failed item is retried exactly once")
	assert.Equal(t, 15, summary.Keywords)

	results := s.Results()
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, "openrouter", res.Provider)
		assert.Len(t, res.Keywords, 5)
	}

	stats := s.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "zhipu", stats[0].Name)
	assert.Equal(t, 0, stats[0].Succeeded)
	assert.Equal(t, 1, stats[0].Failed)
	assert.Equal(t, "openrouter", stats[1].Name)
	assert.Equal(t, 3, stats[1].Succeeded)
	assert.Equal(t, 0, stats[1].Failed)
}

func TestScheduler_RunParseFailureConsumesRetry(t *testing.T) {
	flakyFailed := make(chan struct{})
	var once sync.Once

	// unparsable responses count against the item's retry budget the same
	// way transport failures do
	flaky := &mocks.ExtractorMock{
		NameFunc: func() string { return "zhipu" },
		ExtractFunc: func(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
			once.Do(func() { close(flakyFailed) })
			return nil, fmt.Errorf("zhipu: %w", llm.ErrNoKeywords)
		},
	}
	healthy := &mocks.ExtractorMock{
		NameFunc: func() string { return "openrouter" },
		ExtractFunc: func(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
			select {
			case <-flakyFailed:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &domain.ExtractionResult{
				ItemURL:  item.URL,
				ItemName: item.Name,
				Provider: "openrouter",
				Keywords: kwRecords(5),
			}, nil
		},
	}

	s := NewScheduler([]Extractor{flaky, healthy}, noExclusions(), nil, nil, Config{})
	summary, err := s.Run(context.Background(), testItems(3))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Succeeded+summary.Dropped, "every item reaches a terminal outcome")
	assert.GreaterOrEqual(t, summary.Rerouted, 1)
	assert.Equal(t, summary.Succeeded*5, summary.Keywords)

	results := s.Results()
	assert.Len(t, results, summary.Succeeded)
	for _, res := range results {
		assert.Equal(t, "openrouter", res.Provider, "only the healthy provider produces results")
	}

	stats := s.Stats()
	assert.Equal(t, 0, stats[0].Succeeded)
	assert.Equal(t, 0, stats[1].Failed)
}

func TestScheduler_RunDropsAfterAllProvidersFail(t *testing.T) {
	fail := func(name string) *mocks.ExtractorMock {
		return &mocks.ExtractorMock{
			NameFunc: func() string { return name },
			ExtractFunc: func(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
				return nil, fmt.Errorf("%s: model overloaded", name)
			},
		}
	}
	store := &mocks.ResultStoreMock{
		SaveResultFunc: func(ctx context.Context, res *domain.ExtractionResult) error { return nil },
	}

	s := NewScheduler([]Extractor{fail("zhipu"), fail("openrouter")}, noExclusions(), store, nil, Config{})
	summary, err := s.Run(context.Background(), testItems(3))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 3, summary.Dropped)
	assert.Equal(t, 3, summary.Rerouted, "each item gets one reroute before running out of providers")
	assert.Empty(t, s.Results())
	assert.Empty(t, store.SaveResultCalls())

	failed := 0
	for _, st := range summary.Providers {
		failed += st.Failed
		assert.Equal(t, 0, st.Succeeded)
	}
	assert.Equal(t, 6, failed, "two failed attempts per item")
}

func TestScheduler_RunRateLimitPause(t *testing.T) {
	var mu sync.Mutex
	var attempts []time.Time

	limited := &mocks.ExtractorMock{
		NameFunc: func() string { return "zhipu" },
		ExtractFunc: func(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
			mu.Lock()
			attempts = append(attempts, time.Now())
			first := len(attempts) == 1
			mu.Unlock()
			if first {
				return nil, &llm.RateLimitError{Provider: "zhipu", Err: errors.New("quota exceeded")}
			}
			return &domain.ExtractionResult{ItemURL: item.URL, ItemName: item.Name, Provider: "zhipu", Keywords: kwRecords(5)}, nil
		},
	}

	s := NewScheduler([]Extractor{limited}, noExclusions(), nil, nil, Config{
		RateLimitPause:  200 * time.Millisecond,
		RateLimitJitter: time.Nanosecond,
	})
	summary, err := s.Run(context.Background(), testItems(2))
	require.NoError(t, err)

	// single provider, so the rate-limited item is dropped and the pause
	// delays the next dequeue
	assert.Equal(t, 1, summary.Dropped)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.Rerouted)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, attempts, 2)
	assert.GreaterOrEqual(t, attempts[1].Sub(attempts[0]), 200*time.Millisecond)
}

func TestScheduler_RunRecordsExclusions(t *testing.T) {
	var mu sync.Mutex
	var recorded [][]string
	exclusions := &mocks.ExclusionsMock{
		CurrentFunc: func() []string { return []string{"already-hot"} },
		RecordFunc: func(keywords []string) {
			mu.Lock()
			recorded = append(recorded, keywords)
			mu.Unlock()
		},
		SizeFunc: func() int { return 1 },
	}

	s := NewScheduler([]Extractor{okExtractor("zhipu", 0)}, exclusions, nil, nil, Config{})
	summary, err := s.Run(context.Background(), testItems(2))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, recorded, 2)
	for _, kws := range recorded {
		assert.Equal(t, []string{"kw-0", "kw-1", "kw-2", "kw-3", "kw-4"}, kws)
	}
}

func TestScheduler_RunPassesExclusionsToProvider(t *testing.T) {
	ext := okExtractor("zhipu", 0)
	exclusions := noExclusions()
	exclusions.CurrentFunc = func() []string { return []string{"llm", "ai-model"} }

	s := NewScheduler([]Extractor{ext}, exclusions, nil, nil, Config{})
	_, err := s.Run(context.Background(), testItems(3))
	require.NoError(t, err)

	calls := ext.ExtractCalls()
	require.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, []string{"llm", "ai-model"}, c.Exclusions)
	}
}

func TestScheduler_RunToleratesStoreFailure(t *testing.T) {
	store := &mocks.ResultStoreMock{
		SaveResultFunc: func(ctx context.Context, res *domain.ExtractionResult) error {
			return errors.New("disk full")
		},
	}

	s := NewScheduler([]Extractor{okExtractor("zhipu", 0)}, noExclusions(), store, nil, Config{})
	summary, err := s.Run(context.Background(), testItems(2))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Succeeded)
	assert.Len(t, store.SaveResultCalls(), 2)
}

func TestScheduler_RunCancelled(t *testing.T) {
	blocked := &mocks.ExtractorMock{
		NameFunc: func() string { return "zhipu" },
		ExtractFunc: func(ctx context.Context, item domain.Item, exclusions []string) (*domain.ExtractionResult, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("attempt cut short: %w", ctx.Err())
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := NewScheduler([]Extractor{blocked}, noExclusions(), nil, nil, Config{})
	summary, err := s.Run(ctx, testItems(2))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 2, summary.Attempted)
	assert.Equal(t, 0, summary.Succeeded)
}

func TestScheduler_ProgressDuringRun(t *testing.T) {
	s := NewScheduler([]Extractor{okExtractor("zhipu", 5*time.Millisecond)}, noExclusions(), nil, nil, Config{})

	done := make(chan struct{})
	var summary domain.RunSummary
	var runErr error
	go func() {
		defer close(done)
		summary, runErr = s.Run(context.Background(), testItems(6))
	}()

	assert.Eventually(t, func() bool {
		p := s.Progress()
		return p.Done >= 1 && p.Done <= p.Total
	}, 2*time.Second, time.Millisecond)

	<-done
	require.NoError(t, runErr)
	assert.Equal(t, 6, summary.Succeeded)
	assert.Equal(t, Progress{Total: 6, Done: 6, Succeeded: 6}, s.Progress())
}

func TestScheduler_ResultsReturnsCopy(t *testing.T) {
	s := NewScheduler([]Extractor{okExtractor("zhipu", 0)}, noExclusions(), nil, nil, Config{})
	_, err := s.Run(context.Background(), testItems(2))
	require.NoError(t, err)

	results := s.Results()
	require.Len(t, results, 2)
	results[0].Provider = "mutated"
	assert.Equal(t, "zhipu", s.Results()[0].Provider)
}

func TestScheduler_hasUntriedWorker(t *testing.T) {
	s := NewScheduler([]Extractor{okExtractor("zhipu", 0), okExtractor("openrouter", 0)}, noExclusions(), nil, nil, Config{})
	s.liveWorkers = map[string]struct{}{"zhipu": {}, "openrouter": {}}

	assert.True(t, s.hasUntriedWorker(&task{tried: []string{"zhipu"}}))
	assert.False(t, s.hasUntriedWorker(&task{tried: []string{"zhipu", "openrouter"}}))

	delete(s.liveWorkers, "openrouter")
	assert.False(t, s.hasUntriedWorker(&task{tried: []string{"zhipu"}}), "no fresh provider left running")

	tsk := task{tried: []string{"zhipu"}}
	assert.True(t, tsk.triedBy("zhipu"))
	assert.False(t, tsk.triedBy("openrouter"))
}

func TestScheduler_FailurePause(t *testing.T) {
	s := NewScheduler([]Extractor{okExtractor("zhipu", 0)}, noExclusions(), nil, nil, Config{
		RateLimitPause:  100 * time.Millisecond,
		RateLimitJitter: 50 * time.Millisecond,
		TransientPause:  300 * time.Millisecond,
	})

	for i := 0; i < 20; i++ {
		pause := s.failurePause(llm.FailureRateLimited)
		assert.GreaterOrEqual(t, pause, 100*time.Millisecond)
		assert.Less(t, pause, 150*time.Millisecond)
	}
	assert.Equal(t, 300*time.Millisecond, s.failurePause(llm.FailureTransient))
	assert.Equal(t, time.Duration(0), s.failurePause(llm.FailureOther))
}
