// Package cache provides persisted stores for the translation cache tier.
package cache

import "context"

// TranslationCache is the interface for translation caching.
// Values are serialized JSON text written by calinga.Backend.
type TranslationCache interface {
	// Read returns the value stored under key. found is false for a missing
	// or expired entry; err is reserved for store failures.
	Read(ctx context.Context, key string) (value string, found bool, err error)

	// Write stores value under key.
	Write(ctx context.Context, key string, value string) error
}

// ExportableCache is a cache whose full content can be listed.
type ExportableCache interface {
	TranslationCache
	// Entries returns all live key/value pairs.
	Entries(ctx context.Context) (map[string]string, error)
}
