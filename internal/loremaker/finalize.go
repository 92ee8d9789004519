package loremaker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"loremaker/pkg/models"
)

// Slugify lowercases s, folds accents and collapses every run of characters
// outside [a-z0-9] into a single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(foldDiacritics(strings.TrimSpace(s)))
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash {
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

// Finalize gives every character a unique slug and a unique id, then fills
// estimated power levels for the given day. Length and order are preserved.
func Finalize(chars []models.Character, day time.Time) []models.Character {
	out := make([]models.Character, len(chars))
	usedSlugs := make(map[string]bool, len(chars))
	usedIDs := make(map[string]bool, len(chars))

	for i, c := range chars {
		base := firstNonEmpty(
			Slugify(c.Slug),
			Slugify(c.Name),
			Slugify(c.ID),
			"character-"+strconv.Itoa(i+1),
		)
		c.Slug = claimUnique(base, usedSlugs)

		id := strings.TrimSpace(c.ID)
		if id == "" {
			id = c.Slug
		}
		c.ID = claimUnique(id, usedIDs)

		c.Powers = BackfillPowers(c.Powers, day)
		out[i] = c
	}
	return out
}

// claimUnique returns base, or base-2, base-3, ... whichever is free first,
// and marks it used.
func claimUnique(base string, used map[string]bool) string {
	key := base
	for n := 2; used[key]; n++ {
		key = fmt.Sprintf("%s-%d", base, n)
	}
	used[key] = true
	return key
}

// BackfillPowers returns a copy of powers with every estimated level replaced
// by the placeholder for day.
func BackfillPowers(powers []models.Power, day time.Time) []models.Power {
	out := make([]models.Power, len(powers))
	copy(out, powers)
	for i := range out {
		if out[i].Estimated {
			out[i].Level = DailyLevel(out[i].Name, day)
		}
	}
	return out
}

// BuildCharacters runs rows through the whole pipeline: blank rows are
// dropped, columns resolved, rows built and the batch finalized.
func BuildCharacters(rows [][]string, day time.Time) []models.Character {
	mapping, data := MapTable(DropBlankRows(rows))
	chars := make([]models.Character, 0, len(data))
	for _, row := range data {
		if c, ok := BuildCharacter(row, mapping); ok {
			chars = append(chars, c)
		}
	}
	return Finalize(chars, day)
}
