package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

const shardCount = 16

type shard struct {
	mu      sync.RWMutex
	records map[string]json.RawMessage
}

// Namespace is one isolated keyspace of a [Store]. Records are spread over
// shards by key hash, so lookups of different keys do not contend.
type Namespace struct {
	name  string
	store *Store

	loadOnce sync.Once
	// unsaved is set when the backend copy could not be read. The backend
	// copy is then never overwritten.
	unsaved  atomic.Bool
	shards   [shardCount]shard
	dirty    atomic.Bool
	flushMu  sync.Mutex
	group    singleflight.Group
}

func newNamespace(s *Store, name string) *Namespace {
	ns := &Namespace{name: name, store: s}
	for i := range ns.shards {
		ns.shards[i].records = make(map[string]json.RawMessage)
	}
	return ns
}

// Name returns the namespace name.
func (ns *Namespace) Name() string { return ns.name }

// load pulls the namespace from the backend the first time it is needed.
// A corrupt namespace starts empty and is replaced on the next flush. Any
// other load failure also starts empty, but the namespace is then kept in
// memory only so that the stored records survive.
func (ns *Namespace) load(ctx context.Context) {
	ns.loadOnce.Do(func() {
		records, err := ns.store.backend.Load(ctx, ns.name)
		var corrupt *CorruptError
		switch {
		case errors.As(err, &corrupt):
			ns.store.hooks.OnCacheCorrupt(ctx, ns.name, "", err)
			ns.store.logger.Debug("cache namespace corrupt, starting empty", "namespace", ns.name, "err", err)
			return
		case err != nil:
			ns.unsaved.Store(true)
			ns.store.logger.Warn("cache namespace unreadable, not saving it this run", "namespace", ns.name, "err", err)
			return
		}
		for key, raw := range records {
			sh := &ns.shards[shardOf(key)]
			sh.records[key] = raw
		}
	})
}

// Get looks key up. It never returns an error directly; problems with
// stored data are reported as a Corrupt result.
func (ns *Namespace) Get(ctx context.Context, key string) Result {
	ns.load(ctx)
	sh := &ns.shards[shardOf(key)]
	sh.mu.RLock()
	raw, ok := sh.records[key]
	sh.mu.RUnlock()

	if !ok {
		ns.store.hooks.OnCacheMiss(ctx, ns.name)
		return Result{Status: NotFound, namespace: ns.name, key: key}
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		cerr := &CorruptError{Namespace: ns.name, Key: key, Err: err}
		ns.store.hooks.OnCacheCorrupt(ctx, ns.name, key, cerr)
		return Result{Status: Corrupt, Err: cerr, namespace: ns.name, key: key}
	}
	ns.store.hooks.OnCacheHit(ctx, ns.name)
	return Result{Status: Found, namespace: ns.name, key: key, rec: rec}
}

// Set stores value under key, replacing any previous record.
func (ns *Namespace) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "encode cache value"), "namespace", ns.name)
	}
	return ns.put(ctx, key, record{Value: data})
}

// SetFailure records that the operation behind key failed with err.
// Later lookups replay the failure message.
func (ns *Namespace) SetFailure(ctx context.Context, key string, err error) error {
	if err == nil {
		return errors.New("cache: SetFailure called with nil error")
	}
	return ns.put(ctx, key, record{Failed: true, Msg: err.Error()})
}

// Delete removes key. Deleting a missing key is not an error.
func (ns *Namespace) Delete(ctx context.Context, key string) {
	ns.load(ctx)
	sh := &ns.shards[shardOf(key)]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.records[key]; ok {
		delete(sh.records, key)
		ns.dirty.Store(true)
	}
}

// Len returns the number of records, including recorded failures.
func (ns *Namespace) Len(ctx context.Context) int {
	ns.load(ctx)
	n := 0
	for i := range ns.shards {
		sh := &ns.shards[i]
		sh.mu.RLock()
		n += len(sh.records)
		sh.mu.RUnlock()
	}
	return n
}

func (ns *Namespace) put(ctx context.Context, key string, rec record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "encode cache record"), "namespace", ns.name)
	}
	ns.load(ctx)
	sh := &ns.shards[shardOf(key)]
	sh.mu.Lock()
	sh.records[key] = raw
	sh.mu.Unlock()
	ns.dirty.Store(true)
	ns.store.hooks.OnCacheSet(ctx, ns.name, len(raw))
	return nil
}

// flush saves the namespace if it changed.
func (ns *Namespace) flush(ctx context.Context) error {
	ns.flushMu.Lock()
	defer ns.flushMu.Unlock()
	if !ns.dirty.Swap(false) || ns.unsaved.Load() {
		return nil
	}
	snapshot := make(map[string]json.RawMessage)
	for i := range ns.shards {
		sh := &ns.shards[i]
		sh.mu.RLock()
		for k, v := range sh.records {
			snapshot[k] = v
		}
		sh.mu.RUnlock()
	}
	if err := ns.store.backend.Save(ctx, ns.name, snapshot); err != nil {
		ns.dirty.Store(true)
		return zerr.With(zerr.Wrap(err, "save cache namespace"), "namespace", ns.name)
	}
	ns.store.logger.Debug("flushed cache namespace", "namespace", ns.name, "records", len(snapshot))
	return nil
}
