package pokedex

import (
	"fmt"
	"strings"
	"unicode"
)

// Slug returns the name used in commit titles: lower-cased, spaces
// replaced by hyphens, then title-cased ("Mr. Mime" becomes "Mr.-Mime").
func Slug(name string) string {
	return title(strings.ReplaceAll(strings.ToLower(name), " ", "-"))
}

// DisplayID returns "<Name>:<id>" with the ID zero-padded to four digits.
func DisplayID(name string, id int) string {
	return fmt.Sprintf("%s:%04d", title(name), id)
}

// title upper-cases every cased letter that follows an uncased rune and
// lower-cases the rest. Apostrophes start a new word, so "Farfetch'd"
// becomes "Farfetch'D".
func title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		if prevCased {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(unicode.ToTitle(r))
		}
		prevCased = isCased(r)
	}
	return b.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}
