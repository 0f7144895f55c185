// Package normalize produces comparable forms of player names so that
// records originating from different sources (full name, "F. Surname",
// "F Surname") can be matched against each other.
package normalize

import "strings"

// positionTags are the recognized status/position tokens that source
// sites append after a player's name. Only these are stripped; anything
// else in the name is preserved. Diacritics, hyphenation and
// apostrophes are deliberately left untouched.
var positionTags = map[string]bool{
	"DEF": true,
	"MID": true,
	"FWD": true,
	"FOR": true,
	"RUC": true,
	"INJ": true,
	"SUS": true,
}

// StripPositionTags removes trailing recognized position/status tags
// from a raw name, e.g. "Bailey Smith DEF,FWD" -> "Bailey Smith".
// Tags may be comma- or slash-joined and may span multiple trailing
// tokens. Nothing inside the name proper is ever removed.
func StripPositionTags(raw string) string {
	fields := strings.Fields(strings.TrimSpace(raw))
	for len(fields) > 0 && isTagToken(fields[len(fields)-1]) {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

func isTagToken(token string) bool {
	for _, part := range strings.FieldsFunc(token, func(r rune) bool {
		return r == ',' || r == '/'
	}) {
		if !positionTags[strings.ToUpper(part)] {
			return false
		}
	}
	return len(token) > 0
}

// Variants returns the candidate comparison forms for a name:
// the original, the "First Last" form (first and last token) and the
// "F. Last" initial form. Single-token names produce no extra variants.
func Variants(name string) []string {
	name = strings.TrimSpace(name)
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return []string{name}
	}
	first, last := fields[0], fields[len(fields)-1]
	variants := []string{name}
	if fl := first + " " + last; fl != name {
		variants = append(variants, fl)
	}
	variants = append(variants, string([]rune(first)[0:1])+". "+last)
	return variants
}

// Key returns the case-folded, whitespace-collapsed comparison key for
// a name. Two names with equal keys are treated as the same player by
// the deduplication pass.
func Key(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Surname returns the last whitespace-delimited token of a name, or ""
// for empty input.
func Surname(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// FirstInitial returns the upper-cased first rune of the first token,
// with any trailing "." ignored ("J." and "Jordan" both yield "J").
func FirstInitial(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	first := strings.TrimSuffix(fields[0], ".")
	if first == "" {
		return ""
	}
	return strings.ToUpper(string([]rune(first)[0:1]))
}

// FirstToken returns the first whitespace-delimited token with any
// trailing "." removed.
func FirstToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimSuffix(fields[0], ".")
}
