// Package providers keeps in-memory caches of backend collections in sync
package providers

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/pocketbase/pocketbase/tools/store"
	"go.uber.org/zap"

	"epol-dashboard/internal/apiclient"
	"epol-dashboard/internal/repository"
)

// Keyed is implemented by every cached entity
type Keyed interface {
	Key() string
}

// SyncPolicy decides how local state follows a successful write
type SyncPolicy int

const (
	// Resync re-fetches the full collection after create, update and delete
	// so server computed fields are always reflected.
	Resync SyncPolicy = iota
	// PatchLocal applies the backend's response to the local collection.
	PatchLocal
)

func (p SyncPolicy) String() string {
	if p == PatchLocal {
		return "patch-local"
	}
	return "resync"
}

// Provider owns one id → entity collection. It is the only writer of that
// collection; everyone else reads through Items/Lookup.
//
// Concurrent Refresh calls are not ordered: the last one to resolve wins.
type Provider[T Keyed] struct {
	name   string
	repo   repository.CollectionRepository[T]
	policy SyncPolicy
	log    *zap.SugaredLogger

	items   *store.Store[string, T]
	version atomic.Uint64

	mu      sync.RWMutex
	loading bool
	errMsg  string
	fetched bool

	listenersMu sync.Mutex
	listeners   []func()
}

// New creates a provider named name backed by repo
func New[T Keyed](name string, repo repository.CollectionRepository[T], policy SyncPolicy, log *zap.SugaredLogger) *Provider[T] {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Provider[T]{
		name:   name,
		repo:   repo,
		policy: policy,
		log:    log.With("provider", name),
		items:  store.New[string, T](nil),
	}
}

func (p *Provider[T]) Name() string { return p.name }

func (p *Provider[T]) Policy() SyncPolicy { return p.policy }

// Refresh replaces the collection with the backend's. Failures are recorded
// in Err and never returned.
func (p *Provider[T]) Refresh(ctx context.Context) {
	p.mu.Lock()
	p.loading = true
	p.errMsg = ""
	p.mu.Unlock()

	list, err := p.repo.List(ctx)

	p.mu.Lock()
	p.loading = false
	if err != nil {
		p.errMsg = apiclient.Message(err)
	}
	p.mu.Unlock()

	if err != nil {
		p.log.Warnw("refresh failed", "error", err)
		return
	}

	data := make(map[string]T, len(list))
	for _, item := range list {
		data[item.Key()] = item
	}
	p.items.Reset(data)
	p.log.Debugw("refreshed", "count", len(data))
	p.changed()
}

// Create posts input and, on success, syncs per policy.
func (p *Provider[T]) Create(ctx context.Context, input any) (T, error) {
	created, err := p.repo.Create(ctx, input)
	if err != nil {
		return created, p.fail("create", err)
	}
	p.afterWrite(ctx, func() {
		p.items.Set(created.Key(), created)
	})
	return created, nil
}

// Update sends patch for id and, on success, syncs per policy.
func (p *Provider[T]) Update(ctx context.Context, id string, patch any) (T, error) {
	updated, err := p.repo.Update(ctx, id, patch)
	if err != nil {
		return updated, p.fail("update", err)
	}
	p.afterWrite(ctx, func() {
		if updated.Key() != "" && updated.Key() != id {
			p.items.Remove(id)
		}
		key := updated.Key()
		if key == "" {
			key = id
		}
		p.items.Set(key, updated)
	})
	return updated, nil
}

// Delete removes id on the backend; the local copy goes only after the
// backend confirms.
func (p *Provider[T]) Delete(ctx context.Context, id string) error {
	if err := p.repo.Delete(ctx, id); err != nil {
		return p.fail("delete", err)
	}
	p.afterWrite(ctx, func() {
		p.items.Remove(id)
	})
	return nil
}

// Lookup is an in-memory read; it never calls the backend.
func (p *Provider[T]) Lookup(id string) (T, bool) {
	return p.items.GetOk(id)
}

// Items returns a copy of the collection in no particular order
func (p *Provider[T]) Items() []T {
	return p.items.Values()
}

func (p *Provider[T]) Len() int {
	return p.items.Length()
}

// Version increases on every collection change
func (p *Provider[T]) Version() uint64 {
	return p.version.Load()
}

func (p *Provider[T]) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

// Err returns the last recorded error message, empty when none
func (p *Provider[T]) Err() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errMsg
}

// OnAuthChange fetches once on the first transition to authenticated.
// Repeated authenticated notifications are ignored; losing authentication
// re-arms the guard and drops the cached collection.
func (p *Provider[T]) OnAuthChange(ctx context.Context, authenticated bool) {
	p.mu.Lock()
	if !authenticated {
		wasFetched := p.fetched
		p.fetched = false
		p.errMsg = ""
		p.mu.Unlock()
		if wasFetched || p.items.Length() > 0 {
			p.items.RemoveAll()
			p.changed()
		}
		return
	}
	if p.fetched {
		p.mu.Unlock()
		return
	}
	p.fetched = true
	p.mu.Unlock()

	p.Refresh(ctx)
}

// Subscribe registers fn to run after every collection change
func (p *Provider[T]) Subscribe(fn func()) {
	p.listenersMu.Lock()
	p.listeners = append(p.listeners, fn)
	p.listenersMu.Unlock()
}

func (p *Provider[T]) afterWrite(ctx context.Context, patch func()) {
	p.mu.Lock()
	p.errMsg = ""
	p.mu.Unlock()

	if p.policy == Resync {
		p.Refresh(ctx)
		return
	}
	patch()
	p.changed()
}

func (p *Provider[T]) fail(op string, err error) error {
	p.mu.Lock()
	p.errMsg = apiclient.Message(err)
	p.mu.Unlock()
	p.log.Warnw(op+" failed", "error", err)
	return err
}

func (p *Provider[T]) changed() {
	p.version.Add(1)

	p.listenersMu.Lock()
	listeners := append([]func(){}, p.listeners...)
	p.listenersMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}
