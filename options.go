package calinga

import "github.com/rs/zerolog"

// BackendOption is a functional option for configuring the Backend.
type BackendOption func(*Backend)

// WithCache sets the persisted cache tier.
func WithCache(cache Cache) BackendOption {
	return func(b *Backend) {
		b.cache = cache
	}
}

// WithResources sets the preshipped translations.
func WithResources(resources ResourceStore) BackendOption {
	return func(b *Backend) {
		b.resources = resources
	}
}

// WithConnector sets the hook notified after each service fetch.
func WithConnector(connector Connector) BackendOption {
	return func(b *Backend) {
		b.connector = connector
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) BackendOption {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithObserver sets the instrumentation sink.
func WithObserver(observer Observer) BackendOption {
	return func(b *Backend) {
		if observer != nil {
			b.observer = observer
		}
	}
}

// WithLanguageDirectory sets the directory populated at construction.
func WithLanguageDirectory(dir *LanguageDirectory) BackendOption {
	return func(b *Backend) {
		b.languages = dir
	}
}

// WithRevalidation makes Read revalidate cached data with the stored ETag
// instead of returning it without contacting the service.
func WithRevalidation(enabled bool) BackendOption {
	return func(b *Backend) {
		b.revalidate = enabled
	}
}
