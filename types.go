package calinga

// TranslationMap holds the translated strings of one language/namespace pair.
type TranslationMap map[string]string

// Clone returns a shallow copy of the map. A nil map clones to nil.
func (m TranslationMap) Clone() TranslationMap {
	if m == nil {
		return nil
	}
	out := make(TranslationMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a new map containing m overlaid with over.
// Keys present in over win; keys only present in m are kept.
func (m TranslationMap) Merge(over TranslationMap) TranslationMap {
	out := make(TranslationMap, len(m)+len(over))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}

// ResourceStore holds preshipped translations: language -> namespace -> map.
type ResourceStore map[string]map[string]TranslationMap

// Lookup returns the resources for a pair. A missing language or namespace
// is reported with ok == false, never as an error.
func (r ResourceStore) Lookup(language, namespace string) (TranslationMap, bool) {
	namespaces, ok := r[language]
	if !ok {
		return nil, false
	}
	m, ok := namespaces[namespace]
	if !ok || m == nil {
		return nil, false
	}
	return m, true
}

// Language is one entry of the project language listing.
type Language struct {
	Name        string `json:"name"`
	IsReference bool   `json:"isReference"`
}

// FetchResult is the outcome of a conditional translation fetch.
type FetchResult struct {
	Translations TranslationMap // Payload, empty when NotModified
	ETag         string         // Validator returned by the service
	NotModified  bool           // Service answered 304
}

// Source identifies the tier a resolution was served from.
type Source string

const (
	// SourceNone means no tier had data.
	SourceNone Source = "none"
	// SourceResources means only preshipped resources were available.
	SourceResources Source = "resources"
	// SourceCache means the result came from the persisted cache.
	SourceCache Source = "cache"
	// SourceService means the result includes fresh service data.
	SourceService Source = "service"
)

// ReadResult is delivered by ReadAsync.
type ReadResult struct {
	Translations TranslationMap
	Err          error
}
