package calinga

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DevLanguage is the pseudo-language added in development mode. Hosts render
// keys instead of translations for it.
const DevLanguage = "cimode"

// LanguagesChangedFunc receives the new language list after a refresh.
type LanguagesChangedFunc func(languages []string)

type subscriber struct {
	id int
	fn LanguagesChangedFunc
}

// LanguageDirectory holds the languages known for a project.
// The list is replaced wholesale on every successful Refresh.
type LanguageDirectory struct {
	mu          sync.RWMutex
	devMode     bool
	languages   []string
	reference   string
	subscribers []subscriber
	nextID      int
}

// NewLanguageDirectory creates an empty directory, or one holding only
// DevLanguage when devMode is set.
func NewLanguageDirectory(devMode bool) *LanguageDirectory {
	d := &LanguageDirectory{
		devMode:   devMode,
		languages: []string{},
	}
	if devMode {
		d.languages = []string{DevLanguage}
	}
	return d
}

// Languages returns a copy of the current list.
func (d *LanguageDirectory) Languages() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.languages))
	copy(out, d.languages)
	return out
}

// Reference returns the project's reference language, if known.
func (d *LanguageDirectory) Reference() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.reference
}

// Snapshot returns the list and the reference language from the same
// refresh.
func (d *LanguageDirectory) Snapshot() (languages []string, reference string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	languages = make([]string, len(d.languages))
	copy(languages, d.languages)
	return languages, d.reference
}

// DevMode reports whether the directory injects DevLanguage.
func (d *LanguageDirectory) DevMode() bool {
	return d.devMode
}

// Subscribe registers fn to be called after every successful refresh.
// The returned function removes the subscription.
func (d *LanguageDirectory) Subscribe(fn LanguagesChangedFunc) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subscribers = append(d.subscribers, subscriber{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			for i, s := range d.subscribers {
				if s.id == id {
					d.subscribers = append(d.subscribers[:i], d.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// Refresh queries the service once and replaces the list. On failure the
// list is left unchanged and no subscriber is called.
func (d *LanguageDirectory) Refresh(ctx context.Context, svc Service) error {
	entries, err := svc.FetchLanguages(ctx)
	if err != nil {
		return fmt.Errorf("fetching languages: %w", err)
	}

	names := make([]string, 0, len(entries)+1)
	reference := ""
	for _, e := range entries {
		names = append(names, e.Name)
		if e.IsReference && reference == "" {
			reference = e.Name
		}
	}
	if d.devMode {
		names = append(names, DevLanguage)
	}

	d.store(names, &reference)
	return nil
}

// Replace sets the list and notifies every subscriber. The reference
// language is left as is.
func (d *LanguageDirectory) Replace(languages []string) {
	d.store(languages, nil)
}

// store swaps the list, and the reference when given, under one lock so
// readers never see a reference from another refresh.
func (d *LanguageDirectory) store(languages []string, reference *string) {
	list := make([]string, len(languages))
	copy(list, languages)

	d.mu.Lock()
	d.languages = list
	if reference != nil {
		d.reference = *reference
	}
	subs := make([]subscriber, len(d.subscribers))
	copy(subs, d.subscribers)
	d.mu.Unlock()

	for _, s := range subs {
		out := make([]string, len(list))
		copy(out, list)
		s.fn(out)
	}
}

// RTLLanguages contains base language codes written right-to-left.
var RTLLanguages = map[string]bool{
	"ar": true, // Arabic
	"he": true, // Hebrew
	"fa": true, // Persian/Farsi
	"ur": true, // Urdu
	"ps": true, // Pashto
	"sd": true, // Sindhi
	"ug": true, // Uyghur
}

// DisplayName returns the English name of a language tag
// (e.g., "de-AT" → "Austrian German"). Unparseable tags are returned as-is.
func DisplayName(tag string) string {
	if tag == DevLanguage {
		return "Development (keys)"
	}
	t, err := language.Parse(ToHTMLLang(tag))
	if err != nil {
		return tag
	}
	name := display.English.Tags().Name(t)
	if name == "" {
		return tag
	}
	return name
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(tag string) string {
	base := strings.ToLower(strings.Split(NormalizeLocale(tag), "_")[0])
	if RTLLanguages[base] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(tag string) bool {
	return GetDirection(tag) == "rtl"
}

// NormalizeLocale converts a language code to underscore form (e.g., "es-ES" → "es_ES").
func NormalizeLocale(tag string) string {
	return strings.ReplaceAll(tag, "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(tag string) string {
	return strings.ReplaceAll(tag, "_", "-")
}
