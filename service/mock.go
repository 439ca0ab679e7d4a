package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ZaguanLabs/calinga"
)

// MockService is an in-memory Service for tests and examples.
// It honors validators: a request carrying the current ETag of a language
// is answered as not modified.
type MockService struct {
	mu           sync.Mutex
	Translations map[string]calinga.TranslationMap // Payload per language
	ETags        map[string]string                 // Validator per language
	Languages    []calinga.Language                // Language listing
	Err          error                             // Returned by every call when set
	CallCount    int                               // Number of calls received
	LastETag     string                            // Validator of the last translation request
}

// NewMockService creates a mock with one English project.
func NewMockService() *MockService {
	return &MockService{
		Translations: map[string]calinga.TranslationMap{
			"en": {"greeting": "Hello", "farewell": "Goodbye"},
			"de": {"greeting": "Hallo", "farewell": "Auf Wiedersehen"},
		},
		ETags: map[string]string{
			"en": `"en-1"`,
			"de": `"de-1"`,
		},
		Languages: []calinga.Language{
			{Name: "de"},
			{Name: "en", IsReference: true},
		},
	}
}

// FetchTranslations implements calinga.Service.
func (m *MockService) FetchTranslations(ctx context.Context, language, etag string) (*FetchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.LastETag = etag

	if m.Err != nil {
		return nil, m.Err
	}

	translations, ok := m.Translations[language]
	if !ok {
		return nil, &calinga.ServiceError{Message: fmt.Sprintf("unknown language %q", language), StatusCode: 404}
	}

	current := m.ETags[language]
	if etag != "" && etag == current {
		return &FetchResult{NotModified: true, ETag: current}, nil
	}
	return &FetchResult{Translations: translations.Clone(), ETag: current}, nil
}

// FetchLanguages implements calinga.Service.
func (m *MockService) FetchLanguages(ctx context.Context) ([]calinga.Language, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++

	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]calinga.Language, len(m.Languages))
	copy(out, m.Languages)
	return out, nil
}

// Calls returns the number of calls received.
func (m *MockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}

// Verify MockService implements Service
var _ Service = (*MockService)(nil)
