package loremaker

import (
	"strings"
	"time"

	"loremaker/pkg/models"
)

// Batch is the result of one load. Error lists every fallback step that was
// needed and is informational: Characters is always usable.
type Batch struct {
	Characters []models.Character `json:"characters"`
	Error      string             `json:"error,omitempty"`
	Source     string             `json:"source"`
	LoadedAt   time.Time          `json:"loaded_at"`
}

// SourceSample marks a batch built from the built-in dataset.
const SourceSample = "sample"

func (b *Batch) IsSample() bool {
	return b != nil && b.Source == SourceSample
}

// Find looks a character up by slug, then by id.
func (b *Batch) Find(key string) (models.Character, bool) {
	if b == nil {
		return models.Character{}, false
	}
	key = strings.TrimSpace(key)
	for _, c := range b.Characters {
		if c.Slug == key {
			return c, true
		}
	}
	for _, c := range b.Characters {
		if c.ID == key {
			return c, true
		}
	}
	return models.Character{}, false
}

// Allies returns the other characters in the batch that share at least one
// faction with c, in batch order.
func Allies(b *Batch, c models.Character) []models.Character {
	out := make([]models.Character, 0)
	if b == nil || len(c.Faction) == 0 {
		return out
	}
	factions := make(map[string]bool, len(c.Faction))
	for _, f := range c.Faction {
		factions[strings.ToLower(f)] = true
	}
	for _, other := range b.Characters {
		if other.Slug == c.Slug {
			continue
		}
		for _, f := range other.Faction {
			if factions[strings.ToLower(f)] {
				out = append(out, other)
				break
			}
		}
	}
	return out
}

// Featured picks the character of the day. It is stable for a given date and
// batch order.
func Featured(chars []models.Character, day time.Time) (models.Character, bool) {
	if len(chars) == 0 {
		return models.Character{}, false
	}
	idx := int(SeededValue("featured", DayKey(day)) * float64(len(chars)))
	return chars[idx], true
}
