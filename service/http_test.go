package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/ZaguanLabs/calinga"
)

func newTestService(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *HTTPService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{
		BaseURL:      srv.URL + "/v3/",
		Organization: "acme",
		Team:         "core",
		Project:      "app",
		HTTPClient:   srv.Client(),
	}
	if mutate != nil {
		mutate(&cfg)
	}

	s, err := NewHTTPService(cfg)
	if err != nil {
		t.Fatalf("NewHTTPService failed: %v", err)
	}
	return s
}

func TestNewHTTPService_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing project", Config{Organization: "acme", Team: "core"}},
		{"relative base", Config{BaseURL: "/api", Organization: "acme", Team: "core", Project: "app"}},
		{"bad base", Config{BaseURL: "://", Organization: "acme", Team: "core", Project: "app"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHTTPService(tt.cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestHTTPService_URLs(t *testing.T) {
	s, err := NewHTTPService(Config{
		BaseURL:      "https://api.example/v1/",
		Organization: "acme",
		Team:         "core",
		Project:      "app",
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := s.TranslationsURL("en"); got != "https://api.example/v1/acme/core/app/languages/en" {
		t.Errorf("TranslationsURL = %q", got)
	}
	if got := s.LanguagesURL(); got != "https://api.example/v1/acme/core/app/languages" {
		t.Errorf("LanguagesURL = %q", got)
	}

	s.cfg.IncludeDrafts = true
	if got := s.TranslationsURL("en"); got != "https://api.example/v1/acme/core/app/languages/en?includeDrafts=true" {
		t.Errorf("TranslationsURL with drafts = %q", got)
	}
}

func TestHTTPService_DefaultBaseURL(t *testing.T) {
	s, err := NewHTTPService(Config{Organization: "acme", Team: "core", Project: "app"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(s.LanguagesURL(), DefaultBaseURL+"/") {
		t.Errorf("LanguagesURL = %q", s.LanguagesURL())
	}
}

func TestHTTPService_FetchTranslations(t *testing.T) {
	var gotPath, gotETag, gotQuery, gotAuth string
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotETag = r.Header.Get("If-None-Match")
		gotQuery = r.URL.Query().Get("includeDrafts")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("ETag", `"v2"`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"greeting":"Hello","farewell":"Bye"}`))
	}, func(cfg *Config) {
		cfg.IncludeDrafts = true
		cfg.Token = "secret"
	})

	result, err := s.FetchTranslations(context.Background(), "en", `"v1"`)
	if err != nil {
		t.Fatalf("FetchTranslations failed: %v", err)
	}

	if gotPath != "/v3/acme/core/app/languages/en" {
		t.Errorf("path = %q", gotPath)
	}
	if gotETag != `"v1"` {
		t.Errorf("If-None-Match = %q", gotETag)
	}
	if gotQuery != "true" {
		t.Errorf("includeDrafts = %q", gotQuery)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	want := calinga.TranslationMap{"greeting": "Hello", "farewell": "Bye"}
	if !reflect.DeepEqual(result.Translations, want) {
		t.Errorf("Translations = %v", result.Translations)
	}
	if result.ETag != `"v2"` || result.NotModified {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestHTTPService_NoValidatorHeaderWhenEmpty(t *testing.T) {
	present := true
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["If-None-Match"]
		w.Write([]byte(`{}`))
	}, nil)

	if _, err := s.FetchTranslations(context.Background(), "en", ""); err != nil {
		t.Fatal(err)
	}
	if present {
		t.Error("If-None-Match must not be sent without a validator")
	}
}

func TestHTTPService_NotModified(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}, nil)

	result, err := s.FetchTranslations(context.Background(), "en", `"v1"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.NotModified {
		t.Error("expected NotModified")
	}
	if result.ETag != `"v1"` {
		t.Errorf("ETag = %q, want request validator", result.ETag)
	}
}

func TestHTTPService_UnexpectedStatus(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}, nil)

	_, err := s.FetchTranslations(context.Background(), "en", "")
	var svcErr *calinga.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d", svcErr.StatusCode)
	}
}

func TestHTTPService_InvalidPayload(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"nested":{"a":"b"}}`))
	}, nil)

	_, err := s.FetchTranslations(context.Background(), "en", "")
	var svcErr *calinga.ServiceError
	if !errors.As(err, &svcErr) || svcErr.Message != "decoding translations" {
		t.Errorf("expected decoding ServiceError, got %v", err)
	}
}

func TestHTTPService_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, err := NewHTTPService(Config{BaseURL: url, Organization: "acme", Team: "core", Project: "app"})
	if err != nil {
		t.Fatal(err)
	}

	_, err = s.FetchTranslations(context.Background(), "en", "")
	var svcErr *calinga.ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceError, got %v", err)
	}
	if svcErr.StatusCode != 0 || svcErr.Cause == nil {
		t.Errorf("transport failure should carry a cause and no status: %+v", svcErr)
	}
}

func TestHTTPService_FetchLanguages(t *testing.T) {
	var gotPath string
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"name":"de","isReference":false},{"name":"en","isReference":true}]`))
	}, nil)

	languages, err := s.FetchLanguages(context.Background())
	if err != nil {
		t.Fatalf("FetchLanguages failed: %v", err)
	}
	if gotPath != "/v3/acme/core/app/languages" {
		t.Errorf("path = %q", gotPath)
	}

	want := []calinga.Language{{Name: "de"}, {Name: "en", IsReference: true}}
	if !reflect.DeepEqual(languages, want) {
		t.Errorf("languages = %+v", languages)
	}
}

func TestHTTPService_FetchLanguagesFailure(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, nil)

	if _, err := s.FetchLanguages(context.Background()); err == nil {
		t.Error("expected error for 401")
	}
}
