// Package detector identifies the language a document is written in so the
// reasoning stages can be asked to answer in the same language.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// Languages a CV is realistically submitted in.
var supported = []lingua.Language{
	lingua.English,
	lingua.Turkish,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Russian,
	lingua.Ukrainian,
	lingua.Arabic,
}

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(supported...).
		WithMinimumRelativeDistance(0.1).
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of text's language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}

// Language is the detected language of a document.
type Language struct {
	Code string `json:"code,omitempty"`
	Name string `json:"name,omitempty"`
}

// Identify returns the ISO code and English name of text's language, or the
// zero Language when it cannot be determined.
func (d *Detector) Identify(text string) Language {
	lang, ok := d.Detect(text)
	if !ok {
		return Language{}
	}
	return Language{
		Code: strings.ToLower(lang.IsoCode639_1().String()),
		Name: lang.String(),
	}
}
