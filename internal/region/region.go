// Package region classifies a free-form location string into the bucket that
// decides which job sources are queried.
package region

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Bucket int

const (
	Global Bucket = iota
	Domestic
)

func (b Bucket) String() string {
	if b == Domestic {
		return "domestic"
	}
	return "global"
}

// Cities is the domestic gazetteer, in lookup order.
var Cities = []string{
	"istanbul", "ankara", "izmir", "bursa", "antalya",
	"adana", "gaziantep", "konya", "eskişehir", "kayseri",
}

// CountryAliases name the domestic country itself.
var CountryAliases = []string{"turkey", "türkiye", "turkiye"}

// RemoteSynonyms are location values that mean "remote work".
var RemoteSynonyms = []string{"remote", "remote work", "uzaktan"}

var (
	foldedCities    = foldAll(Cities)
	foldedCountries = foldAll(CountryAliases)
	foldedRemote    = foldAll(RemoteSynonyms)
)

// dotless ı and dotted İ fold to plain i so that "İSTANBUL", "Istanbul" and
// "ıstanbul" compare equal.
var turkishI = runes.Map(func(r rune) rune {
	if r == 'ı' {
		return 'i'
	}
	return r
})

// Fold lower-cases s, strips diacritics and maps the Turkish i variants to
// ASCII i. Folding is used on both sides of every comparison.
func Fold(s string) string {
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		turkishI,
		cases.Fold(),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.TrimSpace(out)
}

func foldAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Fold(s)
	}
	return out
}

// Classify returns Domestic when location mentions a domestic city or the
// country, and Global otherwise. It never fails.
func Classify(location string) Bucket {
	f := Fold(location)
	if f == "" {
		return Global
	}
	for _, name := range foldedCities {
		if strings.Contains(f, name) {
			return Domestic
		}
	}
	for _, name := range foldedCountries {
		if strings.Contains(f, name) {
			return Domestic
		}
	}
	return Global
}

// CityOf returns the first gazetteer city mentioned in location, folded, or
// "" when none is.
func CityOf(location string) string {
	f := Fold(location)
	for _, name := range foldedCities {
		if strings.Contains(f, name) {
			return name
		}
	}
	return ""
}

// IsRemote reports whether location is one of the remote-work synonyms.
func IsRemote(location string) bool {
	f := Fold(location)
	for _, s := range foldedRemote {
		if f == s {
			return true
		}
	}
	return false
}

// IsWorldwide reports whether location places no geographic restriction.
func IsWorldwide(location string) bool {
	switch Fold(location) {
	case "", "worldwide", "anywhere", "global":
		return true
	}
	return false
}
