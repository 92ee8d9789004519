package loremaker

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"loremaker/pkg/models"
)

// BuildCharacter turns one data row into a Character. It reports false when
// no usable name can be found; every other field is optional.
func BuildCharacter(row []string, m ColumnMapping) (models.Character, bool) {
	name := ensureName(row, m)
	if name == "" {
		return models.Character{}, false
	}

	c := models.Character{
		ID:              m.value(row, FieldID),
		Slug:            m.value(row, FieldSlug),
		Name:            name,
		Alias:           SplitList(m.value(row, FieldAlias)),
		Gender:          m.value(row, FieldGender),
		Alignment:       m.value(row, FieldAlignment),
		Locations:       ParseLocations(m.value(row, FieldLocation)),
		Status:          m.value(row, FieldStatus),
		Era:             m.value(row, FieldEra),
		FirstAppearance: m.value(row, FieldFirstAppearance),
		Powers:          ParsePowers(m.value(row, FieldPowers)),
		Faction:         SplitList(m.value(row, FieldFaction)),
		Tags:            SplitList(m.value(row, FieldTags)),
		ShortDesc:       m.value(row, FieldShortDesc),
		LongDesc:        m.value(row, FieldLongDesc),
		Stories:         SplitList(m.value(row, FieldStories)),
		Cover:           NormalizeDriveURL(m.value(row, FieldCover)),
		Gallery:         make([]string, 0),
	}
	for i := 1; i <= GalleryFields; i++ {
		if u := NormalizeDriveURL(m.value(row, GalleryField(i))); u != "" {
			c.Gallery = append(c.Gallery, u)
		}
	}
	return c, true
}

// ensureName returns the mapped name, or else the first cell in the row that
// could be a name. A mapped cell is taken as is unless it repeats a name
// column label; the fallback scan also skips header keywords, URLs and
// numeric tokens.
func ensureName(row []string, m ColumnMapping) string {
	if name := m.value(row, FieldName); name != "" && !isNameLabel(name) {
		return name
	}
	for _, raw := range row {
		if cell := strings.TrimSpace(raw); usableName(cell) {
			return cell
		}
	}
	return ""
}

func usableName(cell string) bool {
	return cell != "" && !isKnownHeader(cell) && !isURL(cell) && !isNumericToken(cell)
}

func isNameLabel(cell string) bool {
	c := canonicalize(cell)
	for _, a := range aliasesFor(FieldName) {
		if c == canonicalize(a) {
			return true
		}
	}
	return false
}

var (
	andWordRe = regexp.MustCompile(`(?i)\band\b`)
	listSepRe = regexp.MustCompile(`[|;]`)
)

// SplitList splits a free-text list on commas, pipes, semicolons and the word
// "and". Pieces are trimmed and empties dropped; duplicates are kept.
func SplitList(s string) []string {
	s = andWordRe.ReplaceAllString(s, ",")
	s = listSepRe.ReplaceAllString(s, ",")
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseLocations splits like SplitList, flattens any item that still holds
// commas and removes duplicates keeping the first occurrence.
func ParseLocations(s string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, item := range SplitList(s) {
		for _, part := range strings.Split(item, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

const levelPattern = `(-?\d+(?:\.\d+)?)\s*(?:/\s*10)?`

// Tried in order: "Spellcraft:9" or "Flight = 7/10", then "Teleportation(7)",
// then a trailing number as in "Reflexes 6" or "Strength8".
var powerLevelRes = []*regexp.Regexp{
	regexp.MustCompile(`^(.+?)\s*[:=]\s*` + levelPattern + `$`),
	regexp.MustCompile(`^(.+?)\s*\(\s*` + levelPattern + `\s*\)$`),
	regexp.MustCompile(`^(.+?)\s*` + levelPattern + `$`),
}

// ParsePowers extracts "name level" pairs. Items without a level get level 0
// and are marked Estimated for the daily backfill.
func ParsePowers(s string) []models.Power {
	items := SplitList(s)
	out := make([]models.Power, 0, len(items))
	for _, item := range items {
		out = append(out, parsePower(item))
	}
	return out
}

func parsePower(item string) models.Power {
	for _, re := range powerLevelRes {
		m := re.FindStringSubmatch(item)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if !hasLetter(name) {
			continue
		}
		return models.Power{Name: name, Level: clampLevel(m[2])}
	}
	return models.Power{Name: item, Level: 0, Estimated: true}
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func clampLevel(raw string) int {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	n := int(math.Round(f))
	switch {
	case n < 0:
		return 0
	case n > 10:
		return 10
	}
	return n
}

var driveFileRe = regexp.MustCompile(`/file/d/([^/?#]+)`)

// NormalizeDriveURL rewrites Google Drive sharing links, with or without a
// scheme, to their direct-view form. Anything else, including non-URLs, is returned trimmed but otherwise
// unchanged.
func NormalizeDriveURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	target := s
	if strings.HasPrefix(strings.ToLower(s), "drive.google.com/") {
		target = "https://" + s
	}
	u, err := url.Parse(target)
	if err != nil || !strings.EqualFold(u.Hostname(), "drive.google.com") {
		return s
	}

	id := ""
	if m := driveFileRe.FindStringSubmatch(u.Path); m != nil {
		id = m[1]
	} else {
		id = u.Query().Get("id")
	}
	if id == "" {
		return s
	}
	return "https://drive.google.com/uc?export=view&id=" + url.QueryEscape(id)
}
