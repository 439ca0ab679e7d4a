package calinga

import (
	"context"
	"errors"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Service is the interface for the remote translation service.
type Service interface {
	// FetchTranslations fetches the translations of a language. A non-empty
	// etag makes the request conditional; an unchanged resource is reported
	// with FetchResult.NotModified.
	FetchTranslations(ctx context.Context, language, etag string) (*FetchResult, error)

	// FetchLanguages lists the languages of the configured project.
	FetchLanguages(ctx context.Context) ([]Language, error)
}

// Cache is the interface for the persisted translation cache.
// Values are serialized JSON text.
type Cache interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key string, value string) error
}

// Connector is notified after every service fetch, successful or not,
// independently of what Read returns to its caller.
type Connector interface {
	Loaded(name string, err error, data TranslationMap)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(name string, err error, data TranslationMap)

// Loaded calls f.
func (f ConnectorFunc) Loaded(name string, err error, data TranslationMap) {
	f(name, err, data)
}

// Service request outcomes reported to an Observer.
const (
	OutcomeOK          = "ok"
	OutcomeNotModified = "not_modified"
	OutcomeError       = "error"
)

// Observer receives instrumentation events from a Backend.
type Observer interface {
	ObserveResolution(source Source)
	ObserveServiceRequest(outcome string, elapsed time.Duration)
	ObserveCacheOperation(operation string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveResolution(Source)                   {}
func (nopObserver) ObserveServiceRequest(string, time.Duration) {}
func (nopObserver) ObserveCacheOperation(string, error)         {}

// Backend resolves translations from resources, cache and service.
type Backend struct {
	service    Service
	cache      Cache
	resources  ResourceStore
	connector  Connector
	observer   Observer
	languages  *LanguageDirectory
	logger     zerolog.Logger
	revalidate bool
}

// NewBackend creates a Backend for the given service.
// When a LanguageDirectory is configured, the project languages are loaded
// in the background; NewBackend does not wait for it.
func NewBackend(svc Service, opts ...BackendOption) *Backend {
	b := &Backend{
		service:  svc,
		observer: nopObserver{},
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.languages != nil && b.service != nil {
		go b.bootstrapLanguages()
	}

	return b
}

func (b *Backend) bootstrapLanguages() {
	if err := b.languages.Refresh(context.Background(), b.service); err != nil {
		b.logger.Error().Err(err).Msg("failed to load project languages")
	}
}

// Read resolves the translations of a language/namespace pair.
//
// Resources seed the result and cached data is merged over them. Cached data
// is returned without contacting the service unless revalidation is
// enabled. Otherwise the service is asked for fresh data, which is merged
// over the seed and written back to the cache. A failed fetch falls back to
// the seed; only when there is no seed is a NoFallbackError returned.
func (b *Backend) Read(ctx context.Context, language, namespace string) (TranslationMap, error) {
	name := LoadedKey(language, namespace)
	log := b.logger.With().Str("language", language).Str("namespace", namespace).Logger()

	var working TranslationMap
	source := SourceNone
	if seed, ok := b.resources.Lookup(language, namespace); ok {
		working = seed.Clone()
		source = SourceResources
	}

	var (
		etag   string
		cached TranslationMap
	)
	if b.cache != nil {
		var (
			found bool
			err   error
		)
		cached, found, err = b.readCache(ctx, namespace, language)
		if err != nil {
			return nil, err
		}
		if found {
			working = working.Merge(cached)
			source = SourceCache
			if !b.revalidate {
				b.observer.ObserveResolution(source)
				return working, nil
			}
			etag = b.readETag(ctx, namespace, language)
		}
	}

	result, err := b.fetch(ctx, language, etag)
	if err == nil && result.NotModified && source == SourceNone {
		err = ErrNotModifiedWithoutCache
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to load translations from service")
		b.notify(name, err, nil)
		b.observer.ObserveResolution(source)
		if source == SourceNone {
			return nil, &NoFallbackError{Language: language, Namespace: namespace, Cause: err}
		}
		return working, nil
	}

	if result.NotModified {
		b.notify(name, nil, working)
		b.observer.ObserveResolution(source)
		return working, nil
	}

	payload := result.Translations
	if payload == nil {
		payload = TranslationMap{}
	}
	merged := working.Merge(payload)

	if source == SourceCache {
		stats := DiffTranslations(cached, payload).Stats()
		log.Debug().
			Int("added", stats.Added).
			Int("removed", stats.Removed).
			Int("changed", stats.Changed).
			Msg("cached translations replaced")
	}

	if b.cache != nil {
		if err := b.writeCache(ctx, namespace, language, payload, result.ETag); err != nil {
			log.Error().Err(err).Msg("failed to persist translations")
			b.notify(name, nil, merged)
			b.observer.ObserveResolution(SourceService)
			return nil, err
		}
	}

	b.notify(name, nil, merged)
	b.observer.ObserveResolution(SourceService)
	return merged, nil
}

// ReadAsync runs Read in a new goroutine. The returned channel delivers
// exactly one result and is then closed.
func (b *Backend) ReadAsync(ctx context.Context, language, namespace string) <-chan ReadResult {
	ch := make(chan ReadResult, 1)
	go func() {
		defer close(ch)
		translations, err := b.Read(ctx, language, namespace)
		ch <- ReadResult{Translations: translations, Err: err}
	}()
	return ch
}

// LanguageDirectory returns the configured directory, or nil.
func (b *Backend) LanguageDirectory() *LanguageDirectory {
	return b.languages
}

// readCache returns the cached map for a pair. A failing store is treated as
// a miss; a value that does not decode is a MalformedCacheEntryError.
func (b *Backend) readCache(ctx context.Context, namespace, language string) (TranslationMap, bool, error) {
	key := TranslationsKey(namespace, language)
	raw, found, err := b.cache.Read(ctx, key)
	b.observer.ObserveCacheOperation("read", err)
	if err != nil {
		b.logger.Warn().Err(err).Str("key", key).Msg("cache read failed, continuing without cached data")
		return nil, false, nil
	}
	if !found || raw == "" {
		return nil, false, nil
	}

	var m TranslationMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, false, &MalformedCacheEntryError{Key: key, Cause: err}
	}
	if m == nil {
		return nil, false, &MalformedCacheEntryError{Key: key, Cause: errors.New("value is not a JSON object")}
	}
	return m, true, nil
}

func (b *Backend) readETag(ctx context.Context, namespace, language string) string {
	key := ETagKey(namespace, language)
	etag, found, err := b.cache.Read(ctx, key)
	b.observer.ObserveCacheOperation("read", err)
	if err != nil {
		b.logger.Warn().Err(err).Str("key", key).Msg("etag read failed, fetching unconditionally")
		return ""
	}
	if !found {
		return ""
	}
	return etag
}

// writeCache stores the payload and its validator. Both writes are issued
// and both must succeed.
func (b *Backend) writeCache(ctx context.Context, namespace, language string, payload TranslationMap, etag string) error {
	dataKey := TranslationsKey(namespace, language)
	data, err := json.Marshal(payload)
	if err != nil {
		return &CacheError{Message: "encoding translations", Key: dataKey, Cause: err}
	}

	var g errgroup.Group
	g.Go(func() error {
		return b.write(ctx, dataKey, string(data))
	})
	g.Go(func() error {
		return b.write(ctx, ETagKey(namespace, language), etag)
	})
	return g.Wait()
}

func (b *Backend) write(ctx context.Context, key, value string) error {
	err := b.cache.Write(ctx, key, value)
	b.observer.ObserveCacheOperation("write", err)
	if err != nil {
		return &CacheError{Message: "write failed", Key: key, Cause: err}
	}
	return nil
}

func (b *Backend) fetch(ctx context.Context, language, etag string) (*FetchResult, error) {
	if b.service == nil {
		return nil, &ServiceError{Message: "no service configured"}
	}

	start := time.Now()
	result, err := b.service.FetchTranslations(ctx, language, etag)
	if err == nil && result == nil {
		err = &ServiceError{Message: "empty response"}
	}

	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeError
	case result.NotModified:
		outcome = OutcomeNotModified
	}
	b.observer.ObserveServiceRequest(outcome, time.Since(start))

	return result, err
}

func (b *Backend) notify(name string, err error, data TranslationMap) {
	if b.connector == nil {
		return
	}
	b.connector.Loaded(name, err, data)
}
