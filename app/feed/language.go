package feed

import "golang.org/x/text/language"

// NormalizeLanguage canonicalizes an upstream language value ("EN-us",
// "pt_BR") to a well-formed BCP 47 tag. Unparseable values are returned
// unchanged so nothing upstream sends is lost.
func NormalizeLanguage(raw string) string {
	if raw == "" {
		return ""
	}

	tag, err := language.Parse(raw)
	if err != nil {
		return raw
	}
	return tag.String()
}
