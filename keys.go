package calinga

// TranslationsKey is the cache key of the serialized map for a pair.
// The format is shared with previously persisted caches and must not change.
func TranslationsKey(namespace, language string) string {
	return "translations:" + namespace + ":" + language
}

// ETagKey is the cache key of the validator stored next to TranslationsKey.
func ETagKey(namespace, language string) string {
	return "etag:" + namespace + ":" + language
}

// LoadedKey is the composite name reported to the Connector.
func LoadedKey(language, namespace string) string {
	return language + "|" + namespace
}
