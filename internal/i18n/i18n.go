// Package i18n holds the reader's translated strings.
//
// Russian is the default language; English is the alternative. Messages are
// registered in an x/text catalog and looked up by key.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported lists the available languages in switch order.
var Supported = []language.Tag{language.Russian, language.English}

var messages = map[language.Tag]map[string]string{
	language.Russian: {
		"title":            "RSS агрегатор",
		"subtitle":         "Начните читать RSS сегодня! Это легко, это красиво.",
		"example":          "Пример: https://lorem-rss.hexlet.app/feed",
		"button":           "Добавить",
		"invalidRSS":       "Ресурс не содержит валидный RSS",
		"invalidLink":      "Ссылка должна быть валидным URL",
		"valid":            "RSS успешно загружен",
		"input":            "Ссылка RSS",
		"posts":            "Посты",
		"feeds":            "Фиды",
		"view":             "Просмотр",
		"close":            "Закрыть",
		"readFull":         "Читать полностью",
		"RSSAlreadyExists": "RSS уже существует",
		"networkError":     "Ошибка сети",
		"loading":          "Загрузка",
		"polling":          "обновление",
		"idle":             "ожидание",
	},
	language.English: {
		"title":            "RSS aggregator",
		"subtitle":         "Start reading RSS today! It's easy, it's beautiful.",
		"example":          "Example: https://lorem-rss.hexlet.app/feed",
		"button":           "Add",
		"invalidRSS":       "The resource does not contain a valid RSS",
		"invalidLink":      "The link must be a valid URL",
		"valid":            "RSS successfully loaded",
		"input":            "RSS link",
		"posts":            "Posts",
		"feeds":            "Feeds",
		"view":             "View",
		"close":            "Close",
		"readFull":         "Read completely",
		"RSSAlreadyExists": "RSS already exists",
		"networkError":     "Network error",
		"loading":          "Loading",
		"polling":          "polling",
		"idle":             "idle",
	},
}

var cat = mustCatalog()

func mustCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(Supported[0]))
	for tag, entries := range messages {
		for key, msg := range entries {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("i18n: register %s/%s: %v", tag, key, err))
			}
		}
	}
	return b
}

// Keys returns every message key known for lang, unsorted.
func Keys(lang language.Tag) []string {
	out := make([]string, 0, len(messages[lang]))
	for k := range messages[lang] {
		out = append(out, k)
	}
	return out
}

// ParseLanguage maps a name such as "ru", "en" or "en-US" onto a supported tag.
func ParseLanguage(name string) (language.Tag, error) {
	tag, err := language.Parse(strings.TrimSpace(name))
	if err != nil {
		return language.Und, fmt.Errorf("parse language %q: %w", name, err)
	}
	base, _ := tag.Base()
	for _, s := range Supported {
		if sb, _ := s.Base(); sb == base {
			return s, nil
		}
	}
	return language.Und, fmt.Errorf("unsupported language %q", name)
}

// Translator renders messages in the current language.
// Not safe for concurrent use; the UI owns it.
type Translator struct {
	idx     int
	printer *message.Printer
}

// New returns a Translator for lang.
func New(lang language.Tag) *Translator {
	t := &Translator{}
	for i, s := range Supported {
		if s == lang {
			t.idx = i
		}
	}
	t.printer = message.NewPrinter(Supported[t.idx], message.Catalog(cat))
	return t
}

// T returns the message for key. Unknown keys render as the key itself.
func (t *Translator) T(key string) string {
	if key == "" {
		return ""
	}
	return t.printer.Sprintf(message.Key(key, key))
}

// Language returns the current language.
func (t *Translator) Language() language.Tag {
	return Supported[t.idx]
}

// Next switches to the following supported language and returns it.
func (t *Translator) Next() language.Tag {
	t.idx = (t.idx + 1) % len(Supported)
	t.printer = message.NewPrinter(Supported[t.idx], message.Catalog(cat))
	return Supported[t.idx]
}
