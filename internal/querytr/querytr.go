// Package querytr turns Turkish job-search queries into English ones for
// providers that index English titles only.
package querytr

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"
)

// Translator renders a search query in English.
type Translator interface {
	ToEnglish(ctx context.Context, text string) (string, error)
}

// phrases maps Turkish job-title fragments to English. Longer phrases are
// applied first so that "Yazılım Mühendisi" wins over "Mühendis".
var phrases = map[string]string{
	"Yazılım Mühendisi":     "Software Engineer",
	"Yazılım Geliştirici":   "Software Developer",
	"Yazılım Uzmanı":        "Software Specialist",
	"Veri Bilimci":          "Data Scientist",
	"Veri Mühendisi":        "Data Engineer",
	"Veri Analisti":         "Data Analyst",
	"Sistem Yöneticisi":     "System Administrator",
	"Proje Yöneticisi":      "Project Manager",
	"Ürün Yöneticisi":       "Product Manager",
	"Test Mühendisi":        "QA Engineer",
	"Siber Güvenlik Uzmanı": "Cyber Security Specialist",
	"Makine Öğrenmesi":      "Machine Learning",
	"Yapay Zeka":            "Artificial Intelligence",
	"Mobil Geliştirici":     "Mobile Developer",
	"Kıdemli":               "Senior",
	"Stajyer":               "Intern",
	"Geliştirici":           "Developer",
	"Mühendisi":             "Engineer",
	"Mühendis":              "Engineer",
	"Uzmanı":                "Specialist",
	"Uzman":                 "Specialist",
}

// PhraseTable translates by static phrase substitution. It never fails and
// never touches the network.
type PhraseTable struct {
	order []string
	table map[string]string
}

// NewPhraseTable returns the built-in Turkish to English title table.
func NewPhraseTable() *PhraseTable {
	return newPhraseTable(phrases)
}

func newPhraseTable(m map[string]string) *PhraseTable {
	order := make([]string, 0, len(m))
	for k := range m {
		order = append(order, k)
	}
	sort.Slice(order, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(order[i]), utf8.RuneCountInString(order[j])
		if li != lj {
			return li > lj
		}
		return order[i] < order[j]
	})
	return &PhraseTable{order: order, table: m}
}

func (p *PhraseTable) ToEnglish(_ context.Context, text string) (string, error) {
	return p.Replace(text), nil
}

// Replace applies every phrase substitution to text.
func (p *PhraseTable) Replace(text string) string {
	out := text
	for _, tr := range p.order {
		out = strings.ReplaceAll(out, tr, p.table[tr])
	}
	return out
}

// turkishLetters are the characters that do not occur in English text.
const turkishLetters = "çğıöşüÇĞİÖŞÜ"

// LooksTurkish reports whether text contains Turkish-only letters or one of
// the known Turkish title phrases.
func LooksTurkish(text string) bool {
	if strings.ContainsAny(text, turkishLetters) {
		return true
	}
	for tr := range phrases {
		if strings.Contains(text, tr) {
			return true
		}
	}
	return false
}
