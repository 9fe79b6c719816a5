// Package i18n holds the UI string bundles for the ten supported locales
// and resolves a visitor's language from stored preference or the
// Accept-Language header.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	// Default is the locale used when the visitor has expressed nothing.
	Default = "th"
	// Fallback fills in keys the active locale is missing.
	Fallback = "en"
)

// Supported is the fixed locale set. "jp" and "fil" are the app's historical
// codes, not ISO 639-1.
var Supported = []string{"th", "en", "jp", "id", "zh", "ko", "vi", "es", "fil", "hi"}

// aliases maps browser language tags onto the app's codes.
var aliases = map[string]string{
	"ja": "jp",
	"tl": "fil",
}

type Bundle struct {
	dict      map[string]map[string]string
	fallback  string
	supported map[string]struct{}
}

// Load parses every embedded locale file. The fallback locale is required;
// any other missing file would be a packaging bug, so it errors too.
func Load() (*Bundle, error) {
	b := &Bundle{
		dict:      map[string]map[string]string{},
		fallback:  Fallback,
		supported: map[string]struct{}{},
	}
	for _, l := range Supported {
		b.supported[l] = struct{}{}
		raw, err := localeFS.ReadFile("locales/" + l + ".json")
		if err != nil {
			return nil, fmt.Errorf("load locale %s: %w", l, err)
		}
		var m map[string]string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("unmarshal locale %s: %w", l, err)
		}
		b.dict[l] = m
	}
	return b, nil
}

func (b *Bundle) Fallback() string { return b.fallback }

func (b *Bundle) SupportedList() []string {
	out := make([]string, len(Supported))
	copy(out, Supported)
	return out
}

func (b *Bundle) IsSupported(lang string) bool {
	_, ok := b.supported[lang]
	return ok
}

// T returns the translation for key in lang, falling back to the fallback
// locale and finally to the key itself so the UI never renders blank text.
func (b *Bundle) T(lang, key string) string {
	if lang != "" {
		if m, ok := b.dict[lang]; ok {
			if v, ok := m[key]; ok {
				return v
			}
		}
	}
	if v, ok := b.dict[b.fallback][key]; ok {
		return v
	}
	return key
}

// Messages returns the full message map for lang with fallback keys filled
// in. The /api/i18n endpoint serves this to the page shells.
func (b *Bundle) Messages(lang string) map[string]string {
	out := make(map[string]string, len(b.dict[b.fallback]))
	for k, v := range b.dict[b.fallback] {
		out[k] = v
	}
	if m, ok := b.dict[lang]; ok {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Resolve picks the best supported locale from an Accept-Language header,
// honoring q-values and header order. An empty or useless header resolves
// to the app default.
func (b *Bundle) Resolve(acceptLang string) string {
	type langPref struct {
		base string
		q    float64
		pos  int
	}
	prefs := make([]langPref, 0, 8)
	for i, raw := range strings.Split(acceptLang, ",") {
		p := strings.TrimSpace(raw)
		if p == "" {
			continue
		}
		q := 1.0
		if sc := strings.IndexByte(p, ';'); sc != -1 {
			params := strings.TrimSpace(p[sc+1:])
			p = strings.TrimSpace(p[:sc])
			if strings.HasPrefix(params, "q=") {
				if v, err := parseQValue(strings.TrimPrefix(params, "q=")); err == nil {
					q = v
				}
			}
		}
		base := p
		if dash := strings.IndexByte(p, '-'); dash != -1 {
			base = p[:dash]
		}
		base = strings.ToLower(base)
		if mapped, ok := aliases[base]; ok {
			base = mapped
		}
		prefs = append(prefs, langPref{base: base, q: q, pos: i})
	}
	sort.SliceStable(prefs, func(i, j int) bool {
		if prefs[i].q == prefs[j].q {
			return prefs[i].pos < prefs[j].pos
		}
		return prefs[i].q > prefs[j].q
	})
	for _, lp := range prefs {
		if lp.q > 0 && b.IsSupported(lp.base) {
			return lp.base
		}
	}
	return Default
}

func parseQValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "1", "1.0", "1.00":
		return 1.0, nil
	case "0", "0.0", "0.00":
		return 0.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return v, nil
}
