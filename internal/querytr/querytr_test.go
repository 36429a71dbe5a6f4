package querytr

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhraseTable_Replace(t *testing.T) {
	p := NewPhraseTable()

	tests := []struct {
		in   string
		want string
	}{
		{"Yazılım Mühendisi", "Software Engineer"},
		{"Kıdemli Yazılım Mühendisi", "Senior Software Engineer"},
		{"Makine Mühendisi", "Makine Engineer"},
		{"Veri Mühendisi", "Data Engineer"},
		{"Backend Developer", "Backend Developer"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := p.ToEnglish(context.Background(), tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPhraseTable_LongestFirst(t *testing.T) {
	p := newPhraseTable(map[string]string{"ab": "X", "abc": "Y"})
	assert.Equal(t, "Y X", p.Replace("abc ab"))
}

func TestLooksTurkish(t *testing.T) {
	assert.True(t, LooksTurkish("Yazılım Mühendisi"))
	assert.True(t, LooksTurkish("Geliştirici"))
	assert.True(t, LooksTurkish("Uzman"))
	assert.False(t, LooksTurkish("Software Engineer"))
	assert.False(t, LooksTurkish(""))
}

func TestGoogleTranslator_FallsBackAndCloses(t *testing.T) {
	g := NewGoogleTranslator(filepath.Join(t.TempDir(), "missing.json"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	got, err := g.ToEnglish(ctx, "Yazılım Mühendisi")
	assert.NoError(t, err)
	assert.Equal(t, "Software Engineer", got)

	assert.NoError(t, g.Close())
	assert.NoError(t, g.Close())
}
