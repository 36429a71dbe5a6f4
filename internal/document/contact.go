package document

import (
	"regexp"
)

// Contact holds the contact details found in a CV.
type Contact struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

var (
	emailPattern    = regexp.MustCompile(`(?i)[\w.+-]+@[\w-]+(\.[\w-]+)*\.[a-z]{2,}`)
	phonePattern    = regexp.MustCompile(`\+?\d{1,3}?[\s.-]?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{2}[\s.-]?\d{2}`)
	linkedinPattern = regexp.MustCompile(`(?i)linkedin\.com/in/([\w-]+)`)
	githubPattern   = regexp.MustCompile(`(?i)github\.com/([\w-]+)`)
)

// ExtractContact finds the first email, phone number and profile links in
// text.
func ExtractContact(text string) Contact {
	var c Contact
	c.Email = emailPattern.FindString(text)
	c.Phone = phonePattern.FindString(text)
	if m := linkedinPattern.FindStringSubmatch(text); m != nil {
		c.LinkedIn = "https://linkedin.com/in/" + m[1]
	}
	if m := githubPattern.FindStringSubmatch(text); m != nil {
		c.GitHub = "https://github.com/" + m[1]
	}
	return c
}
