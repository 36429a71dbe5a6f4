package jobsource

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amounts = message.NewPrinter(language.English)

// FormatSalary renders a provider salary range. A zero bound is treated as
// missing.
func FormatSalary(min, max float64, currency string) string {
	if currency == "" {
		currency = "USD"
	}
	switch {
	case min > 0 && max > 0:
		return amounts.Sprintf("$%d - $%d %s", round(min), round(max), currency)
	case min > 0:
		return amounts.Sprintf("From $%d %s", round(min), currency)
	}
	return NoSalary
}

func round(v float64) int64 {
	return int64(math.Round(v))
}

// FormatPosted renders how long ago a listing was posted relative to now.
func FormatPosted(posted, now time.Time) string {
	days := int(now.Sub(posted).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	}
	return posted.Format("Jan 02, 2006")
}
