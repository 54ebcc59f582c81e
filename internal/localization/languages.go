package localization

import "strings"

// Language is one selectable interface language.
type Language struct {
	Choice string
	Code   string
	// Name is the English name used in provider language lists.
	Name string
}

// Languages are listed in the order offered on the language prompt.
var Languages = []Language{
	{Choice: "1", Code: "en", Name: "English"},
	{Choice: "2", Code: "sw", Name: "Swahili"},
	{Choice: "3", Code: "fr", Name: "French"},
	{Choice: "4", Code: "om", Name: "Oromo"},
	{Choice: "5", Code: "so", Name: "Somali"},
	{Choice: "6", Code: "am", Name: "Amharic"},
}

// LanguageByChoice resolves a language prompt selection.
func LanguageByChoice(choice string) (Language, bool) {
	choice = strings.TrimSpace(choice)
	for _, l := range Languages {
		if l.Choice == choice {
			return l, true
		}
	}
	return Language{}, false
}

// LanguageName maps a language code to its English name, or "" when unknown.
func LanguageName(code string) string {
	for _, l := range Languages {
		if strings.EqualFold(l.Code, code) {
			return l.Name
		}
	}
	return ""
}

// Supported reports whether code is a selectable language.
func Supported(code string) bool {
	return LanguageName(code) != ""
}
