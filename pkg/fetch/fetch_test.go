package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracker counts how many fetches are in flight at once.
type tracker struct {
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	events   []string
}

func (p *tracker) enter(id string) {
	n := p.inFlight.Add(1)
	for {
		old := p.peak.Load()
		if n <= old || p.peak.CompareAndSwap(old, n) {
			break
		}
	}
	p.log("start " + id)
}

func (p *tracker) leave(id string) {
	p.log("end " + id)
	p.inFlight.Add(-1)
}

func (p *tracker) log(ev string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

type testInfo struct {
	Name  string
	Value string
	Fail  bool
	Panic bool
	p     *tracker
}

type testEntry struct {
	Info  testInfo
	Value string
}

func (i testInfo) ID() string { return i.Name }

func (i testInfo) Fetch(ctx context.Context) (testEntry, error) {
	if i.p != nil {
		i.p.enter(i.Name)
		defer i.p.leave(i.Name)
		time.Sleep(5 * time.Millisecond)
	}
	if i.Panic {
		panic("exploded")
	}
	if i.Fail {
		return testEntry{}, errors.New("upstream says no")
	}
	if err := ctx.Err(); err != nil {
		return testEntry{}, err
	}
	return testEntry{Info: i, Value: i.Value}, nil
}

func infos(p *tracker, n int) []testInfo {
	out := make([]testInfo, n)
	for i := range out {
		out[i] = testInfo{Name: fmt.Sprintf("e%d", i), Value: fmt.Sprint(i), p: p}
	}
	return out
}

func TestEntriesRespectsLimit(t *testing.T) {
	for _, limit := range []int{1, 2, 3, 8} {
		t.Run(fmt.Sprint(limit), func(t *testing.T) {
			p := &tracker{}
			res := Entries(context.Background(), infos(p, 17), limit)

			require.NoError(t, res.Err())
			assert.Len(t, res.Entries(), 17)
			assert.LessOrEqual(t, int(p.peak.Load()), limit)
		})
	}
}

func TestEntriesBatchesAreSequential(t *testing.T) {
	p := &tracker{}
	hooks := &recordingHooks{}

	res := Entries(context.Background(), infos(p, 5), 2, WithObserver(hooks))

	assert.Equal(t, 3, res.Batches())
	assert.Equal(t, []int{2, 2, 1}, hooks.sizes)
	assert.Equal(t, int32(2), p.peak.Load())

	// Every member of a batch ends before any member of the next starts.
	pos := map[string]int{}
	for i, ev := range p.events {
		pos[ev] = i
	}
	batches := [][]string{{"e0", "e1"}, {"e2", "e3"}, {"e4"}}
	for k := 0; k+1 < len(batches); k++ {
		for _, done := range batches[k] {
			for _, next := range batches[k+1] {
				assert.Less(t, pos["end "+done], pos["start "+next])
			}
		}
	}
}

func TestEntriesLimitBelowOne(t *testing.T) {
	p := &tracker{}
	res := Entries(context.Background(), infos(p, 3), 0)
	assert.Equal(t, 3, res.Batches())
	assert.Equal(t, int32(1), p.peak.Load())
}

func TestEntriesEmpty(t *testing.T) {
	res := Entries[testInfo](context.Background(), nil, 4)
	assert.Equal(t, 0, res.Len())
	assert.Equal(t, 0, res.Batches())
	assert.NoError(t, res.Err())
	assert.Empty(t, res.Entries())
}

func TestEntriesIsBestEffort(t *testing.T) {
	in := []testInfo{
		{Name: "a", Value: "1"},
		{Name: "b", Fail: true},
		{Name: "c", Panic: true},
		{Name: "d", Value: "4"},
	}

	res := Entries(context.Background(), in, 2)

	assert.Equal(t, map[string]testEntry{
		"a": {Info: in[0], Value: "1"},
		"d": {Info: in[3], Value: "4"},
	}, res.Entries())

	failures := res.Failures()
	require.Len(t, failures, 2)
	assert.EqualError(t, failures["b"], "upstream says no")
	var perr *PanicError
	require.ErrorAs(t, failures["c"], &perr)
	assert.Equal(t, "exploded", perr.Value)

	err := res.Err()
	require.Error(t, err)
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "b", ferr.ID)
	assert.Equal(t, 1, ferr.Index)
	assert.Contains(t, err.Error(), "fetch c: fetcher panicked: exploded")
}

func TestEntriesResultsKeepInputOrder(t *testing.T) {
	p := &tracker{}
	in := infos(p, 6)
	res := Entries(context.Background(), in, 3)

	for i, r := range res.All() {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, in[i].Name, r.Info.Name)
	}
}

func TestEntriesLaterPositionWinsOnCollision(t *testing.T) {
	in := []testInfo{
		{Name: "x", Value: "first"},
		{Name: "y", Fail: true},
		{Name: "x", Value: "second"},
		{Name: "y", Value: "recovered"},
	}

	res := Entries(context.Background(), in, 4)

	entries := res.Entries()
	assert.Equal(t, "second", entries["x"].Value)
	assert.Equal(t, "recovered", entries["y"].Value)
	assert.Empty(t, res.Failures())
	assert.NoError(t, res.Err())
}

func TestEntriesStopsDispatchingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hooks := &recordingHooks{onBatch: func(batch int) {
		if batch == 1 {
			cancel()
		}
	}}
	defer cancel()

	p := &tracker{}
	res := Entries(ctx, infos(p, 6), 2, WithObserver(hooks))

	// The second batch was started before the cancel was observed, so its
	// members saw a done context. The third batch never ran.
	assert.Equal(t, 2, res.Batches())
	failures := res.Failures()
	assert.Len(t, failures, 4)
	for _, id := range []string{"e4", "e5"} {
		assert.ErrorIs(t, failures[id], context.Canceled)
	}
	assert.Len(t, res.Entries(), 2)
}

type recordingHooks struct {
	mu      sync.Mutex
	sizes   []int
	started int
	done    int
	onBatch func(batch int)
}

func (h *recordingHooks) OnBatchStart(_ context.Context, batch, size int) {
	h.mu.Lock()
	h.sizes = append(h.sizes, size)
	h.mu.Unlock()
	if h.onBatch != nil {
		h.onBatch(batch)
	}
}

func (h *recordingHooks) OnFetchStart(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started++
}

func (h *recordingHooks) OnFetchComplete(context.Context, string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.done++
}
