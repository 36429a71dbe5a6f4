package jobsource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTrulyRemote(t *testing.T) {
	tests := []struct {
		name string
		l    Listing
		want bool
	}{
		{"plain remote", Listing{Location: "Remote"}, true},
		{"worldwide", Listing{Location: "Anywhere in the world"}, true},
		{"remote employment type", Listing{Location: "Berlin", EmploymentType: "Remote, Full-time"}, true},
		{"hybrid location", Listing{Location: "Remote / Hybrid"}, false},
		{"hybrid employment", Listing{Location: "Remote", EmploymentType: "Hybrid"}, false},
		{"onsite", Listing{Location: "Remote (On-site first month)"}, false},
		{"office only", Listing{Location: "London office"}, false},
		{"no hint", Listing{Location: "Berlin, DE", EmploymentType: "FULLTIME"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTrulyRemote(tt.l))
		})
	}
}

func TestCurated(t *testing.T) {
	domestic := CuratedDomestic()
	assert.Len(t, domestic, 10)
	for _, l := range domestic {
		assert.Equal(t, l, Normalize(l))
	}

	domestic[0].Title = "changed"
	assert.NotEqual(t, "changed", CuratedDomestic()[0].Title)

	global := CuratedGlobal()
	assert.NotEmpty(t, global)
	for _, l := range global {
		assert.True(t, IsTrulyRemote(l), l.Title)
		assert.Equal(t, l, Normalize(l))
	}
}

func TestFilterByCity(t *testing.T) {
	all := CuratedDomestic()

	ankara := FilterByCity(all, "Ankara")
	assert.Len(t, ankara, 2)
	for _, l := range ankara {
		assert.Contains(t, l.Location, "Ankara")
	}

	assert.Len(t, FilterByCity(all, "İSTANBUL"), 9)
	assert.Len(t, FilterByCity(all, "izmir"), len(all))
	assert.Len(t, FilterByCity(all, ""), len(all))
}
