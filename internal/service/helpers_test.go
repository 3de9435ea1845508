package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"catalog-assistant-be/pkg/catalog"
	"catalog-assistant-be/pkg/events"
	"catalog-assistant-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// fakeClock drives TTL expiry in tests without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeCache is a TTL-honoring in-memory cache whose notion of time comes from
// a fakeClock, so expiry is testable deterministically.
type fakeCache struct {
	mu      sync.Mutex
	clock   *fakeClock
	entries map[string]fakeCacheEntry
	ttls    map[string]time.Duration
}

type fakeCacheEntry struct {
	data      []byte
	expiresAt time.Time
}

func newFakeCache(clock *fakeClock) *fakeCache {
	return &fakeCache{
		clock:   clock,
		entries: make(map[string]fakeCacheEntry),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !c.clock.Now().Before(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.data, true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := fakeCacheEntry{data: value}
	if ttl > 0 {
		entry.expiresAt = c.clock.Now().Add(ttl)
	}
	c.entries[key] = entry
	c.ttls[key] = ttl
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// fakeFetcher serves canned records and counts upstream round trips.
type fakeFetcher struct {
	mu              sync.Mutex
	formations      []catalog.Record
	sessions        []catalog.Record
	formationsCalls int
	sessionsCalls   int
}

func (f *fakeFetcher) FetchFormations(context.Context) ([]catalog.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.formationsCalls++
	return f.formations, nil
}

func (f *fakeFetcher) FetchSessions(context.Context) ([]catalog.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessionsCalls++
	return f.sessions, nil
}

// fakeEmbedder maps keywords to axis-aligned vectors so similarity in tests is
// predictable: texts sharing a keyword are close, others orthogonal.
type fakeEmbedder struct {
	mu       sync.Mutex
	calls    int
	failOn   string
	failAll  bool
	keywords []string
}

func newFakeEmbedder(keywords ...string) *fakeEmbedder {
	return &fakeEmbedder{keywords: keywords}
}

func (e *fakeEmbedder) Generate(_ context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	if e.failAll {
		return nil, errors.New("embedding provider down")
	}
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedding failed for record")
	}

	vec := make([]float32, len(e.keywords)+1)
	matched := false
	lower := strings.ToLower(text)
	for i, kw := range e.keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			vec[i] = 1
			matched = true
		}
	}
	if !matched {
		vec[len(e.keywords)] = 1
	}
	return vec, nil
}

func (e *fakeEmbedder) Dimensions() int {
	return len(e.keywords) + 1
}

func (e *fakeEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// fakeLLM records the last prompt it saw.
type fakeLLM struct {
	mu          sync.Mutex
	answer      string
	err         error
	lastHistory []llm.Message
	lastOptions llm.Options
}

func (f *fakeLLM) Chat(_ context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastHistory = history
	f.lastOptions = llm.Options{}
	for _, opt := range opts {
		opt(&f.lastOptions)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeEventPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakeEventPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func newTestPubSub() *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
}

func mustRecords(t *testing.T, raw string) []catalog.Record {
	t.Helper()
	var records []catalog.Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		t.Fatalf("unmarshal records: %v", err)
	}
	return records
}
