package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	json "github.com/goccy/go-json"
)

// fakeAPI serves one project with an English translation set.
func fakeAPI(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/acme/core/app/languages", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"de"},{"name":"en","isReference":true}]`))
	})
	mux.HandleFunc("/v3/acme/core/app/languages/en", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("ETag", `"e1"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"title":"Welcome","cta":"Sign up"}`))
	})
	mux.HandleFunc("/v3/acme/core/app/languages/de", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func setEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Setenv("CALINGA_CONFIG", "")
	t.Setenv("CALINGA_LOG_LEVEL", "disabled")
	t.Setenv("CALINGA_SERVICE_BASE_URL", baseURL+"/v3")
	t.Setenv("CALINGA_SERVICE_ORGANIZATION", "acme")
	t.Setenv("CALINGA_SERVICE_TEAM", "core")
	t.Setenv("CALINGA_SERVICE_PROJECT", "app")
	t.Setenv("CALINGA_CACHE_TYPE", "none")
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run([]string{"version"}, &stdout, &stderr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "calinga") {
		t.Errorf("expected version output, got: %s", stdout.String())
	}
}

func TestRun_NoCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := run(nil, &stdout, &stderr); err == nil {
		t.Fatal("expected error without command")
	}
	if !strings.Contains(stderr.String(), "Usage") {
		t.Errorf("expected usage on stderr, got: %s", stderr.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"translate"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected unknown command error, got: %v", err)
	}
}

func TestRun_ReadRequiresFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"read", "--lang", "en"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "--lang and --ns are required") {
		t.Errorf("expected missing flag error, got: %v", err)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	srv, _ := fakeAPI(t)
	setEnv(t, srv.URL)
	t.Setenv("CALINGA_SERVICE_PROJECT", "")

	var stdout, stderr bytes.Buffer
	err := run([]string{"read", "--lang", "en", "--ns", "app"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "service.project") {
		t.Errorf("expected validation error, got: %v", err)
	}
}

func TestRun_Read(t *testing.T) {
	srv, calls := fakeAPI(t)
	setEnv(t, srv.URL)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"read", "--lang", "en", "--ns", "app"}, &stdout, &stderr); err != nil {
		t.Fatalf("read failed: %v (stderr: %s)", err, stderr.String())
	}

	var got map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if got["title"] != "Welcome" {
		t.Errorf("unexpected translations %v", got)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("expected 1 service call, got %d", atomic.LoadInt32(calls))
	}
}

func TestRun_ReadMultiple(t *testing.T) {
	srv, _ := fakeAPI(t)
	setEnv(t, srv.URL)

	var stdout, stderr bytes.Buffer
	err := run([]string{"read", "--lang", "en,de", "--ns", "app"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "de|app") {
		t.Errorf("expected failure for de|app, got: %v", err)
	}

	var got map[string]map[string]string
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if got["en|app"]["title"] != "Welcome" {
		t.Errorf("expected en|app in output, got %v", got)
	}
}

func TestRun_ReadResourcesFallback(t *testing.T) {
	srv, _ := fakeAPI(t)
	setEnv(t, srv.URL)

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "de"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "de", "app.yaml"), []byte("title: Willkommen\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CALINGA_RESOURCES_DIR", dir)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"read", "--lang", "de", "--ns", "app"}, &stdout, &stderr); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Willkommen") {
		t.Errorf("expected resources to be served, got %s", stdout.String())
	}
}

func TestRun_Languages(t *testing.T) {
	srv, _ := fakeAPI(t)
	setEnv(t, srv.URL)
	t.Setenv("CALINGA_DEV_MODE", "true")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"languages"}, &stdout, &stderr); err != nil {
		t.Fatalf("languages failed: %v", err)
	}

	out := stdout.String()
	for _, want := range []string{"German", "English", "reference", "cimode"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRun_LanguagesJSON(t *testing.T) {
	srv, _ := fakeAPI(t)
	setEnv(t, srv.URL)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"languages", "--json"}, &stdout, &stderr); err != nil {
		t.Fatalf("languages failed: %v", err)
	}

	var resp struct {
		Languages []struct {
			Name string `json:"name"`
		} `json:"languages"`
		Reference string `json:"reference"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if resp.Reference != "en" || len(resp.Languages) != 2 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestRun_Localize(t *testing.T) {
	srv, _ := fakeAPI(t)
	setEnv(t, srv.URL)

	input := filepath.Join(t.TempDir(), "page.html")
	html := `<html><body><h1 data-i18n="title">x</h1><a data-i18n="cta;[title]nope">y</a></body></html>`
	if err := os.WriteFile(input, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"localize", "--lang", "en", "--ns", "app", input}, &stdout, &stderr); err != nil {
		t.Fatalf("localize failed: %v", err)
	}

	out := stdout.String()
	if !strings.Contains(out, ">Welcome</h1>") || !strings.Contains(out, ">Sign up</a>") {
		t.Errorf("expected localized output, got %s", out)
	}
	if !strings.Contains(out, `lang="en"`) {
		t.Errorf("expected lang attribute, got %s", out)
	}
	if !strings.Contains(stderr.String(), "1 missing keys: nope") {
		t.Errorf("expected missing key report, got %s", stderr.String())
	}
}

func TestRun_LocalizeKeys(t *testing.T) {
	input := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(input, []byte(`<p data-i18n="b">x</p><p data-i18n="a">y</p>`), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"localize", "--keys", input}, &stdout, &stderr); err != nil {
		t.Fatalf("localize --keys failed: %v", err)
	}
	if stdout.String() != "a\nb\n" {
		t.Errorf("unexpected keys output %q", stdout.String())
	}
}

func TestRun_LocalizeMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"localize", "--lang", "en", "--ns", "app", "/nonexistent/page.html"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "reading file") {
		t.Errorf("expected file error, got: %v", err)
	}
}

func TestRun_CacheExportImport(t *testing.T) {
	srv, calls := fakeAPI(t)
	setEnv(t, srv.URL)
	t.Setenv("CALINGA_CACHE_TYPE", "blob")
	t.Setenv("CALINGA_CACHE_BLOB_URL", "file://"+t.TempDir())

	exportFile := filepath.Join(t.TempDir(), "cache.json")

	var stdout, stderr bytes.Buffer
	err := run([]string{"cache", "export", "--warm", "en", "--ns", "app", "-o", exportFile}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(exportFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "translations:app:en") || !strings.Contains(string(data), "etag:app:en") {
		t.Errorf("export missing entries: %s", data)
	}

	// Import into a fresh store and serve from it.
	t.Setenv("CALINGA_CACHE_BLOB_URL", "file://"+t.TempDir())
	stdout.Reset()
	if err := run([]string{"cache", "import", exportFile}, &stdout, &stderr); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Imported 2 entries") {
		t.Errorf("unexpected import output %s", stdout.String())
	}
	if !strings.Contains(stdout.String(), "project: app") {
		t.Errorf("expected metadata in output, got %s", stdout.String())
	}

	before := atomic.LoadInt32(calls)
	stdout.Reset()
	if err := run([]string{"read", "--lang", "en", "--ns", "app"}, &stdout, &stderr); err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(stdout.String(), "Welcome") {
		t.Errorf("expected cached translations, got %s", stdout.String())
	}
	if atomic.LoadInt32(calls) != before {
		t.Error("cached read must not call the service")
	}
}

func TestRun_CacheWithoutStore(t *testing.T) {
	srv, _ := fakeAPI(t)
	setEnv(t, srv.URL)

	var stdout, stderr bytes.Buffer
	err := run([]string{"cache", "export"}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "no cache configured") {
		t.Errorf("expected no cache error, got: %v", err)
	}

	if err := run([]string{"cache", "purge"}, &stdout, &stderr); err == nil {
		t.Error("expected error for unknown subcommand")
	}
}
