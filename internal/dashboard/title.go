package dashboard

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dashpub/internal/jsontree"
)

// Title picks the display title: the definition's title, then the view
// label, then a title derived from the dashboard name.
func Title(definition map[string]any, label, name string) string {
	if title, ok := jsontree.LookupString(definition, "title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if label = strings.TrimSpace(label); label != "" {
		return label
	}
	return deriveTitle(name)
}

func deriveTitle(name string) string {
	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Dashboard"
	}
	return cases.Title(language.Und).String(title)
}
