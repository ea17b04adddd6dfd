// Package i18n resolves UI strings from embedded locale catalogs.
//
// Catalogs are flat key/value JSON files under locales/. Lookup falls back
// to the base locale and finally to the key itself, so a missing translation
// degrades to something greppable instead of an empty string.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

// LangCookieName stores the visitor's language preference.
const LangCookieName = "finch_lang"

//go:embed locales/*.json
var embeddedCatalogFS embed.FS

// Translator resolves message keys against per-locale catalogs.
type Translator struct {
	locales map[string]map[string]string
	tags    []language.Tag
	matcher language.Matcher
}

// Load builds a Translator from the catalogs embedded in this package.
func Load() (*Translator, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS builds a Translator from locales/*.json in the given filesystem.
func LoadFromFS(catalogFS fs.FS) (*Translator, error) {
	paths, err := fs.Glob(catalogFS, "locales/*.json")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	tr := &Translator{locales: map[string]map[string]string{}}

	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}

		locale := strings.TrimSuffix(path.Base(p), ".json")
		tag, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %s: %w", locale, err)
		}
		tr.locales[locale] = messages
		if locale == BaseLocale {
			// Base goes first so the matcher defaults to it.
			tr.tags = append([]language.Tag{tag}, tr.tags...)
		} else {
			tr.tags = append(tr.tags, tag)
		}
	}

	if _, ok := tr.locales[BaseLocale]; !ok {
		return nil, fmt.Errorf("base locale %s missing", BaseLocale)
	}

	tr.matcher = language.NewMatcher(tr.tags)
	return tr, nil
}

// Locales returns the locale names with a loaded catalog.
func (tr *Translator) Locales() []string {
	out := make([]string, 0, len(tr.locales))
	for name := range tr.locales {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// T resolves key in the given locale, falling back to the base locale and
// then to the key itself.
func (tr *Translator) T(locale, key string) string {
	if messages, ok := tr.locales[locale]; ok {
		if msg, ok := messages[key]; ok {
			return msg
		}
	}
	if locale != BaseLocale {
		if msg, ok := tr.locales[BaseLocale][key]; ok {
			return msg
		}
	}
	return key
}

// Func returns a single-locale lookup closure for use in templates.
func (tr *Translator) Func(locale string) func(string) string {
	return func(key string) string { return tr.T(locale, key) }
}

// ResolveLocale picks the best catalog locale for a request. Order of
// preference: profile setting, language cookie, Accept-Language header.
func (tr *Translator) ResolveLocale(r *http.Request, profileLocale string) string {
	if profileLocale != "" {
		if _, ok := tr.locales[profileLocale]; ok {
			return profileLocale
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if _, ok := tr.locales[cookie.Value]; ok {
			return cookie.Value
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if prefs, _, err := language.ParseAcceptLanguage(accept); err == nil {
			_, idx, conf := tr.matcher.Match(prefs...)
			if conf > language.No {
				return tr.localeName(idx)
			}
		}
	}

	return BaseLocale
}

func (tr *Translator) localeName(idx int) string {
	if idx < 0 || idx >= len(tr.tags) {
		return BaseLocale
	}
	want := tr.tags[idx]
	for name := range tr.locales {
		if tag, err := language.Parse(name); err == nil && tag == want {
			return name
		}
	}
	return BaseLocale
}
