// Package cache holds the short-lived locks that serialize concurrent
// deliveries of the same bank transaction.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DeliveryGuard serializes work on a key across goroutines or instances.
// A guard is advisory: the database unique constraint remains authoritative.
type DeliveryGuard interface {
	// Acquire reports whether the caller now holds key and returns the token
	// identifying this hold. The hold lapses after ttl.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	// Release drops the hold identified by token. A hold that lapsed and was
	// retaken by someone else is left in place.
	Release(ctx context.Context, key, token string) error
}

// NoopGuard always grants the key
type NoopGuard struct{}

// Acquire implements DeliveryGuard
func (NoopGuard) Acquire(context.Context, string, time.Duration) (string, bool, error) {
	return "", true, nil
}

// Release implements DeliveryGuard
func (NoopGuard) Release(context.Context, string, string) error { return nil }

type hold struct {
	token     string
	expiresAt time.Time
}

// InMemoryGuard implements DeliveryGuard within a single process
type InMemoryGuard struct {
	mu        sync.Mutex
	holds     map[string]hold
	now       func() time.Time
	newToken  func() string
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryGuard creates an in-memory guard and starts its sweeper
func NewInMemoryGuard() *InMemoryGuard {
	g := &InMemoryGuard{
		holds:    make(map[string]hold),
		now:      time.Now,
		newToken: uuid.NewString,
		stopChan: make(chan struct{}),
	}

	g.wg.Add(1)
	go g.sweepLoop()

	return g
}

// Acquire implements DeliveryGuard
func (g *InMemoryGuard) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if h, held := g.holds[key]; held && now.Before(h.expiresAt) {
		return "", false, nil
	}
	token := g.newToken()
	g.holds[key] = hold{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release implements DeliveryGuard
func (g *InMemoryGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if h, held := g.holds[key]; held && h.token == token {
		delete(g.holds, key)
	}
	return nil
}

// Close stops the sweeper. Safe to call multiple times.
func (g *InMemoryGuard) Close() error {
	g.closeOnce.Do(func() {
		close(g.stopChan)
		g.wg.Wait()
	})
	return nil
}

// Size returns the number of holds, expired ones included until swept
func (g *InMemoryGuard) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.holds)
}

func (g *InMemoryGuard) sweepLoop() {
	defer g.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-g.stopChan:
			return
		case <-ticker.C:
			g.sweep()
		}
	}
}

func (g *InMemoryGuard) sweep() {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for key, h := range g.holds {
		if !now.Before(h.expiresAt) {
			delete(g.holds, key)
		}
	}
}

var (
	_ DeliveryGuard = NoopGuard{}
	_ DeliveryGuard = (*InMemoryGuard)(nil)
)
