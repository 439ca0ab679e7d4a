package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ZaguanLabs/calinga"
	json "github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	// DefaultBaseURL is the public Calinga API.
	DefaultBaseURL = "https://api.calinga.io/v3"

	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 10 << 20
)

// Config holds configuration for the HTTP service client.
type Config struct {
	BaseURL       string        // API base URL (default: DefaultBaseURL)
	Organization  string        // Organization path segment
	Team          string        // Team path segment
	Project       string        // Project path segment
	IncludeDrafts bool          // Ask for draft translations
	Token         string        // Bearer token (optional)
	Timeout       time.Duration // Request timeout (default: 10s)
	HTTPClient    *http.Client  // Custom client (optional)
}

// HTTPService implements calinga.Service over the Calinga REST API.
type HTTPService struct {
	client *http.Client
	base   *url.URL
	cfg    Config
}

// NewHTTPService validates cfg and creates a client.
func NewHTTPService(cfg Config) (*HTTPService, error) {
	if cfg.Organization == "" || cfg.Team == "" || cfg.Project == "" {
		return nil, errors.New("organization, team and project are required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.New("base URL must be absolute: " + cfg.BaseURL)
	}

	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &HTTPService{
		client: client,
		base:   base,
		cfg:    cfg,
	}, nil
}

// TranslationsURL returns the endpoint for one language.
func (s *HTTPService) TranslationsURL(language string) string {
	u := s.projectURL("languages", language)
	if s.cfg.IncludeDrafts {
		q := u.Query()
		q.Set("includeDrafts", "true")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// LanguagesURL returns the endpoint listing the project languages.
func (s *HTTPService) LanguagesURL() string {
	return s.projectURL("languages").String()
}

func (s *HTTPService) projectURL(segments ...string) *url.URL {
	parts := append([]string{s.cfg.Organization, s.cfg.Team, s.cfg.Project}, segments...)
	return s.base.JoinPath(parts...)
}

// FetchTranslations implements calinga.Service. A non-empty etag is sent as
// If-None-Match.
func (s *HTTPService) FetchTranslations(ctx context.Context, language, etag string) (*FetchResult, error) {
	headers := http.Header{}
	if etag != "" {
		headers.Set("If-None-Match", etag)
	}

	resp, err := s.get(ctx, s.TranslationsURL(language), headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		validator := resp.Header.Get("ETag")
		if validator == "" {
			validator = etag
		}
		return &FetchResult{NotModified: true, ETag: validator}, nil
	case http.StatusOK:
		var translations calinga.TranslationMap
		if err := decode(resp.Body, &translations); err != nil {
			return nil, &calinga.ServiceError{Message: "decoding translations", StatusCode: resp.StatusCode, Cause: err}
		}
		if translations == nil {
			translations = calinga.TranslationMap{}
		}
		return &FetchResult{Translations: translations, ETag: resp.Header.Get("ETag")}, nil
	default:
		return nil, unexpectedStatus(resp)
	}
}

// FetchLanguages implements calinga.Service.
func (s *HTTPService) FetchLanguages(ctx context.Context) ([]calinga.Language, error) {
	resp, err := s.get(ctx, s.LanguagesURL(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, unexpectedStatus(resp)
	}

	var languages []calinga.Language
	if err := decode(resp.Body, &languages); err != nil {
		return nil, &calinga.ServiceError{Message: "decoding languages", StatusCode: resp.StatusCode, Cause: err}
	}
	return languages, nil
}

func (s *HTTPService) get(ctx context.Context, endpoint string, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &calinga.ServiceError{Message: "building request", Cause: err}
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", calinga.UserAgent())
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &calinga.ServiceError{Message: "request failed", Cause: err}
	}
	return resp, nil
}

func decode(body io.Reader, v any) error {
	return json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(v)
}

func unexpectedStatus(resp *http.Response) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	return &calinga.ServiceError{Message: "unexpected status", StatusCode: resp.StatusCode}
}

// Verify HTTPService implements Service
var _ Service = (*HTTPService)(nil)
