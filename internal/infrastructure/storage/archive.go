// Package storage archives verified webhook bodies for audit.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// PayloadArchive stores raw request bodies. Implementations return the key
// the body was written under.
type PayloadArchive interface {
	Archive(ctx context.Context, requestID string, receivedAt time.Time, body []byte) (string, error)
}

// ArchiveKey builds <prefix>/YYYY/MM/DD/<request-id>.json from the UTC
// receive date
func ArchiveKey(prefix, requestID string, receivedAt time.Time) string {
	prefix = strings.Trim(prefix, "/")
	day := receivedAt.UTC().Format("2006/01/02")
	if prefix == "" {
		return fmt.Sprintf("%s/%s.json", day, requestID)
	}
	return fmt.Sprintf("%s/%s/%s.json", prefix, day, requestID)
}

// NoopArchive discards bodies. It is used when storage is disabled.
type NoopArchive struct{}

// Archive implements PayloadArchive
func (NoopArchive) Archive(context.Context, string, time.Time, []byte) (string, error) {
	return "", nil
}

// MemoryArchive keeps bodies in a map keyed like the S3 archive
type MemoryArchive struct {
	Prefix string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryArchive creates an empty MemoryArchive
func NewMemoryArchive(prefix string) *MemoryArchive {
	return &MemoryArchive{Prefix: prefix, objects: make(map[string][]byte)}
}

// Archive implements PayloadArchive
func (a *MemoryArchive) Archive(_ context.Context, requestID string, receivedAt time.Time, body []byte) (string, error) {
	key := ArchiveKey(a.Prefix, requestID, receivedAt)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[key] = append([]byte(nil), body...)
	return key, nil
}

// Get returns a stored body
func (a *MemoryArchive) Get(key string) ([]byte, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.objects[key]
	return b, ok
}

// Len returns the number of stored bodies
func (a *MemoryArchive) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.objects)
}

var (
	_ PayloadArchive = NoopArchive{}
	_ PayloadArchive = (*MemoryArchive)(nil)
)
