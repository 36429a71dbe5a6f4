package jobsource

import "strings"

var (
	remoteKeywords = []string{
		"remote", "anywhere", "work from home", "wfh",
		"worldwide", "global", "distributed",
	}
	nonRemoteKeywords = []string{
		"hybrid", "office", "onsite", "on-site", "in-person",
		"headquarters", "hq",
	}
)

// IsTrulyRemote reports whether a listing advertises remote work and mentions
// no on-site arrangement in its location or employment type.
func IsTrulyRemote(l Listing) bool {
	location := strings.ToLower(l.Location)
	employment := strings.ToLower(l.EmploymentType)

	for _, kw := range nonRemoteKeywords {
		if strings.Contains(location, kw) || strings.Contains(employment, kw) {
			return false
		}
	}
	if strings.Contains(employment, "remote") {
		return true
	}
	for _, kw := range remoteKeywords {
		if strings.Contains(location, kw) {
			return true
		}
	}
	return false
}
