// Package localization renders USSD screen text in the caller's chosen language.
package localization

import (
	"embed"
	"fmt"
	"path"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLanguage is used when a session has not chosen a language yet and
// whenever a message is missing from the chosen language.
const DefaultLanguage = "en"

// Catalog holds the message bundle and one localizer per supported language.
type Catalog struct {
	bundle     *i18n.Bundle
	localizers map[string]*i18n.Localizer
	fallback   *i18n.Localizer
}

// NewCatalog loads every embedded locale file.
func NewCatalog() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("localization: read locales: %w", err)
	}
	for _, entry := range entries {
		name := path.Join("locales", entry.Name())
		buf, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("localization: read %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(buf, name); err != nil {
			return nil, fmt.Errorf("localization: parse %s: %w", name, err)
		}
	}

	c := &Catalog{
		bundle:     bundle,
		localizers: make(map[string]*i18n.Localizer, len(Languages)),
		fallback:   i18n.NewLocalizer(bundle, DefaultLanguage),
	}
	for _, lang := range Languages {
		c.localizers[lang.Code] = i18n.NewLocalizer(bundle, lang.Code, DefaultLanguage)
	}
	return c, nil
}

// MustCatalog is NewCatalog for process start-up and tests.
func MustCatalog() *Catalog {
	c, err := NewCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Data is template data for parameterized messages.
type Data map[string]any

// Text renders message id in lang, falling back to English and finally to
// the id itself so a reply is always produced.
func (c *Catalog) Text(lang, id string, data Data) string {
	cfg := &i18n.LocalizeConfig{MessageID: id}
	if data != nil {
		cfg.TemplateData = map[string]any(data)
	}
	if loc, ok := c.localizers[lang]; ok {
		if msg, err := loc.Localize(cfg); err == nil {
			return msg
		}
	}
	if msg, err := c.fallback.Localize(cfg); err == nil {
		return msg
	}
	return id
}

// Has reports whether lang defines message id itself, without fallback.
func (c *Catalog) Has(lang, id string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	loc := i18n.NewLocalizer(c.bundle, lang)
	_, got, err := loc.LocalizeWithTag(&i18n.LocalizeConfig{MessageID: id})
	return err == nil && got == tag
}

// Weekday returns the abbreviated weekday name in lang.
func (c *Catalog) Weekday(lang string, d time.Weekday) string {
	return c.Text(lang, fmt.Sprintf("weekday_%d", int(d)), nil)
}

// DateLayout is the day-month-year layout shown on handsets and stored on appointments.
const DateLayout = "02-01-2006"

// FormatDate renders t as "<weekday> DD-MM-YYYY" in lang.
func (c *Catalog) FormatDate(lang string, t time.Time) string {
	return c.Weekday(lang, t.Weekday()) + " " + t.Format(DateLayout)
}
