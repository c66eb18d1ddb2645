package llm

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ThresholdBoundary(t *testing.T) {
	tracker := NewTracker(10, 50)

	for i := 0; i < 9; i++ {
		tracker.Record([]string{"MoE"})
	}
	assert.Empty(t, tracker.Current(), "nine records stay under the threshold")

	tracker.Record([]string{"MoE"})
	assert.Equal(t, []string{"MoE"}, tracker.Current(), "tenth record promotes the keyword")
}

func TestTracker_OrderByCountThenFirstSeen(t *testing.T) {
	tracker := NewTracker(2, 50)

	tracker.Record([]string{"alpha"})
	tracker.Record([]string{"beta"})
	tracker.Record([]string{"gamma"})

	// gamma reaches the threshold with the highest count
	tracker.Record([]string{"gamma", "alpha"})
	tracker.Record([]string{"gamma", "beta"})

	// alpha and beta are tied at two, alpha was seen first
	assert.Equal(t, []string{"gamma", "alpha", "beta"}, tracker.Current())
}

func TestTracker_LimitCap(t *testing.T) {
	tracker := NewTracker(1, 5)

	for i := 0; i < 20; i++ {
		tracker.Record([]string{fmt.Sprintf("kw-%02d", i)})
	}
	current := tracker.Current()
	require.Len(t, current, 5)
	// all counts are one, so first-seen order decides
	assert.Equal(t, []string{"kw-00", "kw-01", "kw-02", "kw-03", "kw-04"}, current)
}

func TestTracker_SnapshotIndependent(t *testing.T) {
	tracker := NewTracker(1, 50)
	tracker.Record([]string{"one", "two"})

	snapshot := tracker.Current()
	require.Len(t, snapshot, 2)
	snapshot[0] = "mutated"

	assert.NotContains(t, tracker.Current(), "mutated")
}

func TestTracker_Defaults(t *testing.T) {
	tracker := NewTracker(0, 0)
	for i := 0; i < 9; i++ {
		tracker.Record([]string{"kw"})
	}
	assert.Empty(t, tracker.Current())
	tracker.Record([]string{"kw"})
	assert.Len(t, tracker.Current(), 1)
}

func TestTracker_IgnoresEmptyKeywords(t *testing.T) {
	tracker := NewTracker(1, 50)
	tracker.Record([]string{"", "real"})
	assert.Equal(t, []string{"real"}, tracker.Current())
}

func TestTracker_Concurrent(t *testing.T) {
	tracker := NewTracker(5, 50)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				tracker.Record([]string{"hot", fmt.Sprintf("cold-%d", i)})
				tracker.Current()
			}
		}()
	}
	wg.Wait()

	assert.Contains(t, tracker.Current(), "hot")
	assert.Equal(t, 50, tracker.Size())
}
