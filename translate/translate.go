// Package translate provides the localization table for reports and answers, using JSON-mappings with
// github.com/nicksnyder/go-i18n/i18n, & the Translater-helper for UI code that wants a fallback language.
package translate

import (
	"embed"
	"path"
	"strings"

	"github.com/Compufreak345/dbg"
	"github.com/nicksnyder/go-i18n/i18n"
	"golang.org/x/text/language"
)

const tTag = dbg.Tag("tankerlog/translate.go")

// Supported report languages.
const (
	Arabic  = "ar"
	French  = "fr"
	English = "en"
)

// DefaultLang is used whenever no (supported) language is requested.
const DefaultLang = Arabic

// SupportedLanguages lists the languages we ship translation files for, in display order.
var SupportedLanguages = []string{Arabic, French, English}

var rtlLanguages = map[string]bool{"ar": true, "fa": true, "he": true, "ur": true}

//go:embed translations/*.all.json
var translationFiles embed.FS

var matcher = language.NewMatcher([]language.Tag{language.Arabic, language.French, language.English})

func init() {
	MustLoadTranslations()
}

// MustLoadTranslations parses the embedded translation files and panics if one of them is broken.
func MustLoadTranslations() {
	entries, err := translationFiles.ReadDir("translations")
	if err != nil {
		panic(err)
	}
	for _, e := range entries {
		name := path.Join("translations", e.Name())
		buf, err := translationFiles.ReadFile(name)
		if err != nil {
			panic(err)
		}
		// the file name carries the language tag, e.g. "fr.all.json"
		if err = i18n.ParseTranslationFileBytes(name, buf); err != nil {
			panic(err)
		}
	}
}

// Resolve returns the display string for key in lang. Unknown languages and unmapped keys resolve to the key itself.
// Regional tags like "en-US" resolve through their base language.
func Resolve(lang string, key string) string {
	tfunc, err := i18n.Tfunc(BaseLanguage(lang))
	if err != nil {
		return key
	}
	return tfunc(key)
}

// BaseLanguage reduces a language tag to its lower-case primary subtag, "ar-MA" -> "ar".
func BaseLanguage(lang string) string {
	l := strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(l, "-_"); i >= 0 {
		l = l[:i]
	}
	return l
}

// IsRTL tells if lang is written right-to-left.
func IsRTL(lang string) bool {
	return rtlLanguages[BaseLanguage(lang)]
}

// NormalizeLanguage maps lang onto one of SupportedLanguages, DefaultLang if it is none of them.
func NormalizeLanguage(lang string) string {
	l := BaseLanguage(lang)
	for _, s := range SupportedLanguages {
		if s == l {
			return s
		}
	}
	if l != "" {
		dbg.W(tTag, "Unsupported language %q, using %s", lang, DefaultLang)
	}
	return DefaultLang
}

// MatchLanguage picks the best supported language for an Accept-Language header value.
func MatchLanguage(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLang
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLang
	}
	return SupportedLanguages[idx]
}

// Translater provides functions for translating
type Translater struct {
	DefaultLang  string
	FallbackLang string
}

// T translates a string with the given arguments for i18n.TranslateFunc, using FallbackLang if DefaultLang is not loaded.
func (t *Translater) T(key string, args ...interface{}) string {
	Tfunc, err := i18n.Tfunc(BaseLanguage(t.DefaultLang), BaseLanguage(t.FallbackLang))
	if err != nil {
		return key
	}
	return Tfunc(key, args...)
}

// IsRTL tells if the Translater's language is written right-to-left.
func (t *Translater) IsRTL() bool {
	return IsRTL(t.DefaultLang)
}

// Dir returns the html dir-attribute value for the Translater's language.
func (t *Translater) Dir() string {
	if t.IsRTL() {
		return "rtl"
	}
	return "ltr"
}
