package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var fs embed.FS

// catalog maps a locale to its flattened keys: "de" -> "form.submit" -> "Absenden"
type catalog map[string]map[string]string

var (
	mutex        sync.RWMutex
	translations = catalog{}
	defaultLang  = "de"
)

// SupportedLanguages lists the locales shipped with the binary
var SupportedLanguages = []string{"de", "en"}

// IsSupported reports whether lang is one of the shipped locales
func IsSupported(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// DefaultLang returns the fallback language
func DefaultLang() string {
	mutex.RLock()
	defer mutex.RUnlock()
	return defaultLang
}

// SetDefaultLang changes the fallback language. Unsupported values are ignored.
func SetDefaultLang(lang string) {
	if !IsSupported(lang) {
		log.Printf("[WARNING] Unsupported default language %q, keeping %q", lang, DefaultLang())
		return
	}
	mutex.Lock()
	defaultLang = lang
	mutex.Unlock()
}

// Load reads every embedded <lang>.json file and replaces the loaded catalog
func Load() error {
	entries, err := fs.ReadDir(".")
	if err != nil {
		return fmt.Errorf("failed to read embedded locales: %w", err)
	}

	loaded := catalog{}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".json" {
			continue
		}
		content, err := fs.ReadFile(entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read locale file %s: %w", entry.Name(), err)
		}
		var nested map[string]interface{}
		if err := json.Unmarshal(content, &nested); err != nil {
			return fmt.Errorf("failed to unmarshal locale %s: %w", entry.Name(), err)
		}

		flat := make(map[string]string)
		flatten("", nested, flat)
		loaded[strings.TrimSuffix(entry.Name(), ".json")] = flat
	}

	mutex.Lock()
	translations = loaded
	mutex.Unlock()

	for lang, keys := range loaded {
		log.Printf("Loaded locale: %s (%d keys)", lang, len(keys))
	}
	return nil
}

// flatten turns nested objects into dot-separated keys. Non-string leaves are formatted with %v.
func flatten(prefix string, nested map[string]interface{}, result map[string]string) {
	for k, v := range nested {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch child := v.(type) {
		case map[string]interface{}:
			flatten(key, child, result)
		case string:
			result[key] = child
		default:
			result[key] = fmt.Sprintf("%v", child)
		}
	}
}

// MissingKeys lists keys of the default language that lang does not define
func MissingKeys(lang string) []string {
	mutex.RLock()
	defer mutex.RUnlock()

	var missing []string
	for key := range translations[defaultLang] {
		if _, ok := translations[lang][key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// T translates key into the locale stored on ctx
func T(ctx context.Context, key string, args ...map[string]interface{}) string {
	return Translate(GetLocale(ctx), key, args...)
}

// Translate looks key up in lang, then in the default language, and returns the key
// itself when neither defines it. {name} placeholders are replaced from args.
func Translate(lang, key string, args ...map[string]interface{}) string {
	mutex.RLock()
	text, ok := translations[lang][key]
	if !ok {
		text, ok = translations[defaultLang][key]
	}
	mutex.RUnlock()

	if !ok {
		return key
	}
	return format(text, args...)
}

// format replaces {var} placeholders; unknown placeholders are left as they are
func format(text string, args ...map[string]interface{}) string {
	if len(args) == 0 || len(args[0]) == 0 {
		return text
	}
	pairs := make([]string, 0, 2*len(args[0]))
	for k, v := range args[0] {
		pairs = append(pairs, "{"+k+"}", fmt.Sprintf("%v", v))
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

type contextKey string

const LocaleContextKey contextKey = "locale"

// WithLocale returns a copy of ctx carrying lang
func WithLocale(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, LocaleContextKey, lang)
}

// GetLocale returns the locale stored by WithLocale, or the default language
func GetLocale(ctx context.Context) string {
	if lang, ok := ctx.Value(LocaleContextKey).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang()
}
