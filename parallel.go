package calinga

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// DefaultPreloadConcurrency bounds the concurrent reads issued by ReadAll.
const DefaultPreloadConcurrency = 4

// ReadAll reads every language/namespace combination concurrently.
// Results are keyed by LoadedKey. Pairs that fail are absent from the
// result and reported through the joined error.
func (b *Backend) ReadAll(ctx context.Context, languages, namespaces []string) (map[string]TranslationMap, error) {
	type pair struct {
		language  string
		namespace string
	}
	type readResult struct {
		pair
		translations TranslationMap
		err          error
	}

	var pairs []pair
	seen := make(map[string]bool)
	for _, lang := range languages {
		for _, ns := range namespaces {
			key := LoadedKey(lang, ns)
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, pair{language: lang, namespace: ns})
		}
	}

	results := make(chan readResult, len(pairs))
	sem := make(chan struct{}, DefaultPreloadConcurrency)
	var wg sync.WaitGroup

	for _, p := range pairs {
		wg.Add(1)
		go func(p pair) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			translations, err := b.Read(ctx, p.language, p.namespace)
			results <- readResult{pair: p, translations: translations, err: err}
		}(p)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make(map[string]TranslationMap, len(pairs))
	var errs []error
	for r := range results {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", LoadedKey(r.language, r.namespace), r.err))
			continue
		}
		out[LoadedKey(r.language, r.namespace)] = r.translations
	}

	return out, errors.Join(errs...)
}
