package loremaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBatch() *Batch {
	return &Batch{Characters: SampleCharacters(testDay), Source: SourceSample, LoadedAt: testDay}
}

func TestSampleCharacters(t *testing.T) {
	chars := SampleCharacters(testDay)
	require.Len(t, chars, 4)
	assert.Equal(t, "mystic-man", chars[0].Slug)
	for _, c := range chars {
		assert.NotEmpty(t, c.ID)
		for _, p := range c.Powers {
			assert.True(t, p.Level >= 0 && p.Level <= 10)
			if p.Estimated {
				assert.True(t, p.Level >= 4 && p.Level <= 9)
			}
		}
	}
}

func TestBatchFind(t *testing.T) {
	b := sampleBatch()
	c, ok := b.Find("ama-serwaa")
	require.True(t, ok)
	assert.Equal(t, "Ama Serwaa", c.Name)

	_, ok = b.Find("nobody")
	assert.False(t, ok)

	var empty *Batch
	_, ok = empty.Find("ama-serwaa")
	assert.False(t, ok)
}

func TestAllies(t *testing.T) {
	b := sampleBatch()
	mystic, ok := b.Find("mystic-man")
	require.True(t, ok)

	allies := Allies(b, mystic)
	names := make([]string, 0, len(allies))
	for _, a := range allies {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Ama Serwaa", "Nana Yaa"}, names)

	kofi, _ := b.Find("kofi-obsidian")
	assert.Empty(t, Allies(b, kofi))
	assert.Empty(t, Allies(nil, mystic))
}

func TestFeatured(t *testing.T) {
	chars := SampleCharacters(testDay)
	c, ok := Featured(chars, testDay)
	require.True(t, ok)
	assert.Equal(t, "Nana Yaa", c.Name)

	again, _ := Featured(chars, testDay)
	assert.Equal(t, c.Slug, again.Slug)

	_, ok = Featured(nil, testDay)
	assert.False(t, ok)
}
