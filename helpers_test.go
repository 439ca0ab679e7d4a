package calinga

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeService is a scriptable Service for testing
type fakeService struct {
	mu        sync.Mutex
	status    int // 200, 304 or anything else for failure
	payload   TranslationMap
	etag      string
	languages []Language
	langErr   error
	calls     int
	lastLang  string
	lastETag  string
}

func (s *fakeService) FetchTranslations(ctx context.Context, language, etag string) (*FetchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastLang = language
	s.lastETag = etag

	switch s.status {
	case 200:
		return &FetchResult{Translations: s.payload.Clone(), ETag: s.etag}, nil
	case 304:
		return &FetchResult{NotModified: true, ETag: etag}, nil
	default:
		return nil, &ServiceError{Message: "unexpected status", StatusCode: s.status}
	}
}

func (s *fakeService) FetchLanguages(ctx context.Context) ([]Language, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.langErr != nil {
		return nil, s.langErr
	}
	return s.languages, nil
}

func (s *fakeService) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// memCache is a map-backed Cache with optional write failures
type memCache struct {
	mu      sync.Mutex
	data    map[string]string
	failKey string
	readErr error
	reads   int
	writes  int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (c *memCache) Read(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads++
	if c.readErr != nil {
		return "", false, c.readErr
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Write(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	if key == c.failKey {
		return errors.New("disk full")
	}
	c.data[key] = value
	return nil
}

func (c *memCache) get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok
}

// loadedCall records one Connector notification
type loadedCall struct {
	name string
	err  error
	data TranslationMap
}

type recordingConnector struct {
	mu    sync.Mutex
	calls []loadedCall
}

func (r *recordingConnector) Loaded(name string, err error, data TranslationMap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, loadedCall{name: name, err: err, data: data})
}

func (r *recordingConnector) snapshot() []loadedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]loadedCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// countingObserver tallies Observer events
type countingObserver struct {
	mu          sync.Mutex
	resolutions map[Source]int
	outcomes    map[string]int
	cacheOps    map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{
		resolutions: make(map[Source]int),
		outcomes:    make(map[string]int),
		cacheOps:    make(map[string]int),
	}
}

func (o *countingObserver) ObserveResolution(source Source) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolutions[source]++
}

func (o *countingObserver) ObserveServiceRequest(outcome string, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes[outcome]++
}

func (o *countingObserver) ObserveCacheOperation(operation string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.cacheOps[operation+":"+result]++
}
