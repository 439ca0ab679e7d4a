package calinga

import (
	"errors"
	"fmt"
)

var (
	// ErrNoFallback is matched by NoFallbackError.
	ErrNoFallback = errors.New("no fallback translations available")

	// ErrNotModifiedWithoutCache is reported when the service answers 304
	// although no cached data exists to revalidate.
	ErrNotModifiedWithoutCache = errors.New("service reported not modified but no cached translations exist")
)

// NoFallbackError indicates that no tier could provide translations:
// no resources, no cache entry, and the service fetch failed.
type NoFallbackError struct {
	Language  string
	Namespace string
	Cause     error // Service failure that left no data
}

func (e *NoFallbackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("no fallback translations for %s/%s: %v", e.Language, e.Namespace, e.Cause)
	}
	return fmt.Sprintf("no fallback translations for %s/%s", e.Language, e.Namespace)
}

func (e *NoFallbackError) Unwrap() error {
	return e.Cause
}

// Is reports ErrNoFallback as a match.
func (e *NoFallbackError) Is(target error) bool {
	return target == ErrNoFallback
}

// MalformedCacheEntryError indicates a cached value that is not a valid
// translation map.
type MalformedCacheEntryError struct {
	Key   string
	Cause error
}

func (e *MalformedCacheEntryError) Error() string {
	return fmt.Sprintf("malformed cache entry %q: %v", e.Key, e.Cause)
}

func (e *MalformedCacheEntryError) Unwrap() error {
	return e.Cause
}

// CacheError indicates a cache operation failure.
type CacheError struct {
	Message string
	Key     string
	Cause   error
}

func (e *CacheError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("cache error: %s (%s): %v", e.Message, e.Key, e.Cause)
	}
	return fmt.Sprintf("cache error: %s (%s)", e.Message, e.Key)
}

func (e *CacheError) Unwrap() error {
	return e.Cause
}

// ServiceError indicates a failed call to the translation service.
// StatusCode is 0 for transport failures.
type ServiceError struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *ServiceError) Error() string {
	msg := "service error: " + e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}
