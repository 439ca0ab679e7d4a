// Package processor applies resolved translations to HTML documents.
package processor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ZaguanLabs/calinga"
)

// DefaultAttribute marks elements to localize. Its value is a list of
// directives separated by ';'. A bare key sets the element text; "[attr]key"
// sets the attribute attr.
const DefaultAttribute = "data-i18n"

// NoTranslateAttribute excludes an element and its subtree.
const NoTranslateAttribute = "data-no-translate"

// DefaultIgnoredTags contains tags whose content is never localized.
var DefaultIgnoredTags = map[string]bool{
	"script":   true,
	"style":    true,
	"code":     true,
	"pre":      true,
	"textarea": true,
	"noscript": true,
}

// TranslatableAttributes lists the attributes a directive may set. Any
// "aria-" attribute is allowed as well.
var TranslatableAttributes = map[string]bool{
	"title":       true,
	"alt":         true,
	"placeholder": true,
	"label":       true,
	"summary":     true,
	"abbr":        true,
}

// IsTranslatableAttribute reports whether a directive may write attr.
func IsTranslatableAttribute(attr string) bool {
	attr = strings.ToLower(attr)
	return TranslatableAttributes[attr] || (strings.HasPrefix(attr, "aria-") && len(attr) > len("aria-"))
}

// Directive is one instruction parsed from a localization attribute.
type Directive struct {
	Attr string // Empty for element text
	Key  string
}

// ParseDirectives splits an attribute value such as "[title]tip;label".
// Empty and malformed segments are dropped, as are directives naming an
// attribute outside TranslatableAttributes.
func ParseDirectives(value string) []Directive {
	var out []Directive
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "[") {
			end := strings.Index(part, "]")
			if end < 2 {
				continue
			}
			key := strings.TrimSpace(part[end+1:])
			if key == "" {
				continue
			}
			attr := strings.ToLower(strings.TrimSpace(part[1:end]))
			if !IsTranslatableAttribute(attr) {
				continue
			}
			out = append(out, Directive{Attr: attr, Key: key})
			continue
		}
		out = append(out, Directive{Key: part})
	}
	return out
}

// HTMLLocalizer fills marked elements of an HTML document from a
// TranslationMap.
type HTMLLocalizer struct {
	attribute   string
	ignoredTags map[string]bool
}

// NewHTMLLocalizer creates a localizer with the default attribute and
// ignored tags.
func NewHTMLLocalizer() *HTMLLocalizer {
	return &HTMLLocalizer{
		attribute:   DefaultAttribute,
		ignoredTags: DefaultIgnoredTags,
	}
}

// NewHTMLLocalizerWithIgnoredTags creates a localizer with custom ignored tags.
func NewHTMLLocalizerWithIgnoredTags(tags []string) *HTMLLocalizer {
	ignored := make(map[string]bool)
	for _, tag := range tags {
		ignored[strings.ToLower(tag)] = true
	}
	return &HTMLLocalizer{
		attribute:   DefaultAttribute,
		ignoredTags: ignored,
	}
}

// WithAttribute returns a copy of l reading directives from attr.
func (l *HTMLLocalizer) WithAttribute(attr string) *HTMLLocalizer {
	c := *l
	c.attribute = attr
	return &c
}

// Result is the outcome of a localization pass.
type Result struct {
	HTML    string
	Applied int      // Directives that found a translation
	Missing []string // Referenced keys absent from the map, sorted
}

// Localize applies translations to content. Keys without a translation are
// left untouched and reported in Result.Missing.
func (l *HTMLLocalizer) Localize(content string, translations calinga.TranslationMap) (*Result, error) {
	return l.localize(content, "", translations)
}

// LocalizeDocument is Localize plus setting the lang and dir attributes of
// the root element for language.
func (l *HTMLLocalizer) LocalizeDocument(content, language string, translations calinga.TranslationMap) (*Result, error) {
	return l.localize(content, language, translations)
}

func (l *HTMLLocalizer) localize(content, language string, translations calinga.TranslationMap) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	result := &Result{}
	missing := make(map[string]bool)

	l.each(doc, func(s *goquery.Selection, directives []Directive) {
		for _, d := range directives {
			translated, ok := translations[d.Key]
			if !ok {
				missing[d.Key] = true
				continue
			}
			if d.Attr != "" {
				s.SetAttr(d.Attr, translated)
			} else {
				s.SetText(preserveWhitespace(s.Text(), translated))
			}
			result.Applied++
		}
	})

	if language != "" {
		root := doc.Find("html").First()
		root.SetAttr("lang", calinga.ToHTMLLang(language))
		root.SetAttr("dir", calinga.GetDirection(language))
	}

	result.Missing = sortedKeys(missing)

	out, err := render(doc, content, language != "")
	if err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}
	result.HTML = out
	return result, nil
}

// Keys lists every key referenced by content, sorted and deduplicated.
func (l *HTMLLocalizer) Keys(content string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	seen := make(map[string]bool)
	l.each(doc, func(_ *goquery.Selection, directives []Directive) {
		for _, d := range directives {
			seen[d.Key] = true
		}
	})
	return sortedKeys(seen), nil
}

// each visits marked elements in document order, skipping excluded subtrees.
func (l *HTMLLocalizer) each(doc *goquery.Document, fn func(*goquery.Selection, []Directive)) {
	doc.Find("[" + l.attribute + "]").Each(func(_ int, s *goquery.Selection) {
		if l.excluded(s.Nodes[0]) {
			return
		}
		value, _ := s.Attr(l.attribute)
		if directives := ParseDirectives(value); len(directives) > 0 {
			fn(s, directives)
		}
	})
}

// excluded reports whether n or one of its ancestors is an ignored tag or
// carries the no-translate marker.
func (l *HTMLLocalizer) excluded(n *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if l.ignoredTags[strings.ToLower(n.Data)] {
			return true
		}
		for _, attr := range n.Attr {
			if attr.Key == NoTranslateAttribute {
				return true
			}
		}
	}
	return false
}

// render serializes the document. Fragments are returned without the
// html/head/body wrapper the parser adds.
func render(doc *goquery.Document, original string, forceDocument bool) (string, error) {
	if forceDocument || isDocument(original) {
		return doc.Html()
	}
	return doc.Find("body").Html()
}

func isDocument(content string) bool {
	lower := strings.ToLower(content)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype")
}

// preserveWhitespace keeps the original leading/trailing whitespace.
func preserveWhitespace(original, translated string) string {
	leadingLen := len(original) - len(strings.TrimLeft(original, " \t\n\r"))
	if leadingLen == len(original) {
		return translated
	}
	leading := original[:leadingLen]

	trailingLen := len(original) - len(strings.TrimRight(original, " \t\n\r"))
	trailing := original[len(original)-trailingLen:]

	return leading + translated + trailing
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
