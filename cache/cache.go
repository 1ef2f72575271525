// Package cache implements the three-tier cached resource of §4.G: an
// in-memory LRU, a disk JSON tier, and an always-available bundled
// fallback, with stale-while-revalidate background refresh gated by
// golang.org/x/sync/singleflight so at most one revalidation per key is
// ever in flight.
package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/poe-code/poe-code/vfs"
)

// entry is the disk/memory envelope: {data, timestamp}. timestamp == 0
// marks a bundled-fallback result.
type entry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

// FetchFunc retrieves fresh data from the upstream source, respecting
// ctx's deadline (the synchronous fetch path, §4.G).
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Config mirrors the fields enumerated in §4.G.
type Config struct {
	// CacheName is the basename (without extension) of the on-disk JSON
	// file and the singleflight/LRU key.
	CacheName string
	// CacheDir overrides the resolved cache directory; if empty, resolved
	// from $XDG_CACHE_HOME/<App> or <home>/.cache/<App>.
	CacheDir string
	App      string
	Home     string

	StaleTTL     time.Duration
	FreshTTL     time.Duration
	FetchTimeout time.Duration

	Offline       bool
	PreferOffline bool
}

// ResolveCacheDir implements the cache-directory resolution rule of §4.G.
func ResolveCacheDir(cfg Config) string {
	if cfg.CacheDir != "" {
		return cfg.CacheDir
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, cfg.App)
	}
	return filepath.Join(cfg.Home, ".cache", cfg.App)
}

// Stats is the result of Resource.Stats().
type Stats struct {
	MemoryCacheSize int
	MemoryCacheMax  int
	CacheDir        string
}

// Resource is a cached resource around a bundled fallback value of type T.
type Resource[T any] struct {
	bundled T
	cfg     Config
	fs      vfs.FS
	fetch   FetchFunc[T]

	memory *lru.Cache[string, entry[T]]
	group  singleflight.Group

	mu       sync.Mutex
	inFlight map[string]chan struct{}
}

const memoryCapacity = 100

// New builds a Resource. fetch may be nil for resources that are populated
// purely by revalidation-less disk/bundled reads.
func New[T any](bundled T, cfg Config, fs vfs.FS, fetch FetchFunc[T]) (*Resource[T], error) {
	memory, err := lru.New[string, entry[T]](memoryCapacity)
	if err != nil {
		return nil, err
	}
	return &Resource[T]{
		bundled:  bundled,
		cfg:      cfg,
		fs:       fs,
		fetch:    fetch,
		memory:   memory,
		inFlight: make(map[string]chan struct{}),
	}, nil
}

func (r *Resource[T]) diskPath() string {
	return filepath.Join(ResolveCacheDir(r.cfg), r.cfg.CacheName+".json")
}

// GetOptions mirrors the options bag accepted by get() in §4.G.
type GetOptions struct {
	ForceRefresh bool
}

// Get implements the resolution order of §4.G exactly.
func (r *Resource[T]) Get(ctx context.Context, opts GetOptions) entry[T] {
	key := r.cfg.CacheName

	if !opts.ForceRefresh {
		if e, ok := r.memory.Get(key); ok {
			return e
		}

		if e, ok := r.loadFromDisk(); ok {
			r.memory.Add(key, e)

			age := time.Since(time.UnixMilli(e.Timestamp))
			if age > r.cfg.FreshTTL && r.fetch != nil && !r.cfg.Offline && !r.cfg.PreferOffline {
				r.triggerRevalidation(key)
			}
			return e
		}
	}

	if r.cfg.Offline || r.cfg.PreferOffline {
		return entry[T]{Data: r.bundled, Timestamp: 0}
	}

	fetched, ok := r.syncFetch(ctx)
	if !ok {
		return entry[T]{Data: r.bundled, Timestamp: 0}
	}

	r.memory.Add(key, fetched)
	r.writeToDisk(fetched)
	return fetched
}

// Refresh is Get with ForceRefresh set.
func (r *Resource[T]) Refresh(ctx context.Context) entry[T] {
	return r.Get(ctx, GetOptions{ForceRefresh: true})
}

// Clear empties the memory tier and unlinks the disk file.
func (r *Resource[T]) Clear() error {
	r.memory.Purge()
	if r.fs == nil {
		return nil
	}
	return r.fs.Unlink(r.diskPath())
}

// Stats reports the memory tier's current occupancy.
func (r *Resource[T]) Stats() Stats {
	return Stats{
		MemoryCacheSize: r.memory.Len(),
		MemoryCacheMax:  memoryCapacity,
		CacheDir:        ResolveCacheDir(r.cfg),
	}
}

// loadFromDisk returns (entry, true) iff the disk file parses and is
// within StaleTTL; any read/parse error or staleness is treated as a miss
// (§4.G "Disk cache file").
func (r *Resource[T]) loadFromDisk() (entry[T], bool) {
	if r.fs == nil {
		return entry[T]{}, false
	}
	data, err := r.fs.ReadFile(r.diskPath())
	if err != nil || data == nil {
		return entry[T]{}, false
	}

	var e entry[T]
	if err := json.Unmarshal(data, &e); err != nil {
		return entry[T]{}, false
	}

	if time.Since(time.UnixMilli(e.Timestamp)) > r.cfg.StaleTTL {
		return entry[T]{}, false
	}
	return e, true
}

// writeToDisk is best-effort: write failures are swallowed (§4.G).
func (r *Resource[T]) writeToDisk(e entry[T]) {
	if r.fs == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.diskPath())
	_ = r.fs.Mkdir(dir, true, 0o755)
	_ = r.fs.WriteFile(r.diskPath(), data, 0o644)
}

// syncFetch runs fetch under FetchTimeout, translating a timeout or error
// into (zero, false) so the caller always falls back to the bundled value
// (§4.G, §5 "cancellation & timeouts").
func (r *Resource[T]) syncFetch(ctx context.Context) (entry[T], bool) {
	if r.fetch == nil {
		return entry[T]{}, false
	}

	timeout := r.cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := r.fetch(fetchCtx)
	if err != nil {
		// A context.DeadlineExceeded here is the "Request timed out after
		// Nms" failure of §5; it is caught here and mapped to the bundled
		// fallback like any other fetch error.
		return entry[T]{}, false
	}

	return entry[T]{Data: data, Timestamp: time.Now().UnixMilli()}, true
}

// triggerRevalidation starts at most one background fetch per key,
// registering a done channel so WaitForRevalidation can join it; the
// actual fetch still runs under singleflight.Group so that this guard and
// the group's own key-based dedup agree (§4.G revalidator contract, §8
// property 5). Failures are swallowed; nothing about this path is visible
// to Get.
func (r *Resource[T]) triggerRevalidation(key string) {
	r.mu.Lock()
	if _, inFlight := r.inFlight[key]; inFlight {
		r.mu.Unlock()
		return
	}
	done := make(chan struct{})
	r.inFlight[key] = done
	r.mu.Unlock()

	go func() {
		defer func() {
			close(done)
			r.mu.Lock()
			delete(r.inFlight, key)
			r.mu.Unlock()
		}()

		_, _, _ = r.group.Do(key, func() (any, error) {
			fetched, ok := r.syncFetch(context.Background())
			if !ok {
				return nil, nil
			}
			r.memory.Add(key, fetched)
			r.writeToDisk(fetched)
			return nil, nil
		})
	}()
}

// WaitForRevalidation blocks until the in-flight revalidation for key (if
// any) completes. If none is in flight, it returns immediately.
func (r *Resource[T]) WaitForRevalidation(key string) {
	r.mu.Lock()
	done, inFlight := r.inFlight[key]
	r.mu.Unlock()
	if !inFlight {
		return
	}
	<-done
}
