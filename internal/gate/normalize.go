package gate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NameKey normalizes an identity name into its uniqueness key: diacritics
// stripped, lowercased, inner whitespace collapsed. "Jan Novák" and
// "jan  novak" share a key and cannot both enroll.
func NameKey(name string) string {
	name = removeDiacritics(strings.TrimSpace(name))
	name = strings.ToLower(name)
	return strings.Join(strings.Fields(name), " ")
}
