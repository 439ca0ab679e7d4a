// Package resources loads preshipped translations from a directory tree laid
// out as {language}/{namespace}.{json|yaml|yml|toml}.
package resources

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/ZaguanLabs/calinga"
)

// Extensions lists the file extensions LoadFS understands.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// LoadDir loads resources from a directory on disk.
func LoadDir(dir string) (calinga.ResourceStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir))
}

// LoadFS loads every translation file two levels deep in fsys. Files at
// other depths, hidden files and unknown extensions are ignored.
func LoadFS(fsys fs.FS) (calinga.ResourceStore, error) {
	store := calinga.ResourceStore{}

	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != "." && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		language, rest, ok := strings.Cut(p, "/")
		if !ok || strings.Contains(rest, "/") {
			return nil
		}
		ext := path.Ext(rest)
		if !supported(ext) {
			return nil
		}
		namespace := strings.TrimSuffix(rest, ext)

		if _, exists := store.Lookup(language, namespace); exists {
			return fmt.Errorf("%s: duplicate resource for %s/%s", p, language, namespace)
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		m, err := Decode(ext, data)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}

		if store[language] == nil {
			store[language] = map[string]calinga.TranslationMap{}
		}
		store[language][namespace] = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	return store, nil
}

// Decode parses one translation file. The document must be a flat mapping
// of keys to strings.
func Decode(ext string, data []byte) (calinga.TranslationMap, error) {
	m := calinga.TranslationMap{}

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding YAML: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &m); err != nil {
			return nil, fmt.Errorf("decoding TOML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported resource format %q", ext)
	}

	if m == nil {
		m = calinga.TranslationMap{}
	}
	return m, nil
}

func supported(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
