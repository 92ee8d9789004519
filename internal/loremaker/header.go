package loremaker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical field names a source column can be mapped to.
const (
	FieldID              = "id"
	FieldSlug            = "slug"
	FieldName            = "name"
	FieldAlias           = "alias"
	FieldGender          = "gender"
	FieldAlignment       = "alignment"
	FieldLocation        = "location"
	FieldStatus          = "status"
	FieldEra             = "era"
	FieldFirstAppearance = "first_appearance"
	FieldPowers          = "powers"
	FieldFaction         = "faction"
	FieldTags            = "tags"
	FieldShortDesc       = "short_desc"
	FieldLongDesc        = "long_desc"
	FieldStories         = "stories"
	FieldCover           = "cover"

	// GalleryFields is the number of gallery_N columns recognised.
	GalleryFields = 15
	// headerScanRows bounds how far down a header row is searched for.
	headerScanRows = 3
)

type fieldAliases struct {
	Field   string
	Aliases []string
}

// fieldTable is ordered: when two fields could claim the same column the
// earlier one wins.
var fieldTable = buildFieldTable()

func buildFieldTable() []fieldAliases {
	table := []fieldAliases{
		{FieldID, []string{"id", "character id", "char id", "uid"}},
		{FieldSlug, []string{"slug"}},
		{FieldName, []string{"character", "character name", "name"}},
		{FieldAlias, []string{"alias", "aliases", "aka", "also known as", "codename"}},
		{FieldGender, []string{"gender", "sex"}},
		{FieldAlignment, []string{"alignment", "allegiance"}},
		{FieldLocation, []string{"location", "locations", "base", "base of operations", "home"}},
		{FieldStatus, []string{"status", "state"}},
		{FieldEra, []string{"era", "time period", "period"}},
		{FieldFirstAppearance, []string{"first appearance", "debut", "first seen"}},
		{FieldPowers, []string{"powers", "power", "abilities", "powers & abilities"}},
		{FieldFaction, []string{"faction", "factions", "team", "affiliation", "affiliations"}},
		{FieldTags, []string{"tags", "tag", "keywords"}},
		{FieldShortDesc, []string{"short description", "short desc", "tagline", "summary"}},
		{FieldLongDesc, []string{"long description", "long desc", "description", "bio", "biography"}},
		{FieldStories, []string{"stories", "story", "appearances"}},
		{FieldCover, []string{"cover image", "cover", "cover url", "portrait", "main image"}},
	}
	for i := 1; i <= GalleryFields; i++ {
		table = append(table, fieldAliases{
			Field: GalleryField(i),
			Aliases: []string{
				fmt.Sprintf("gallery image %d", i),
				fmt.Sprintf("gallery %d", i),
				fmt.Sprintf("img %d", i),
				fmt.Sprintf("image %d", i),
			},
		})
	}
	return table
}

// GalleryField returns the canonical name of the i-th gallery column (1-based).
func GalleryField(i int) string {
	return fmt.Sprintf("gallery_%d", i)
}

var knownHeaders = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, fa := range fieldTable {
		set[fa.Field] = struct{}{}
		for _, a := range fa.Aliases {
			set[a] = struct{}{}
			set[canonicalize(a)] = struct{}{}
		}
	}
	return set
}()

// isKnownHeader reports whether s reads like a header label rather than data.
func isKnownHeader(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return false
	}
	if _, ok := knownHeaders[s]; ok {
		return true
	}
	c := canonicalize(s)
	if c == "" {
		return false
	}
	_, ok := knownHeaders[c]
	return ok
}

// ColumnMapping maps a canonical field to a zero-based column index. Fields
// absent from the source have no entry.
type ColumnMapping map[string]int

func (m ColumnMapping) Index(field string) (int, bool) {
	idx, ok := m[field]
	return idx, ok
}

func (m ColumnMapping) value(row []string, field string) string {
	idx, ok := m[field]
	if !ok {
		return ""
	}
	return cellAt(row, idx)
}

// ResolveColumns maps a header row to canonical fields. Each alias list is
// tried in order against the trimmed, case-folded header, then again against
// the canonical form of both sides. A column is claimed by at most one field.
func ResolveColumns(header []string) ColumnMapping {
	mapping := make(ColumnMapping)
	claimed := make(map[int]bool)

	lowered := make([]string, len(header))
	canonical := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
		canonical[i] = canonicalize(h)
	}

	for _, fa := range fieldTable {
		idx := findAlias(fa.Aliases, lowered, claimed, strings.ToLower)
		if idx < 0 {
			idx = findAlias(fa.Aliases, canonical, claimed, canonicalize)
		}
		if idx < 0 {
			continue
		}
		mapping[fa.Field] = idx
		claimed[idx] = true
	}
	return mapping
}

func findAlias(aliases, header []string, claimed map[int]bool, fold func(string) string) int {
	for _, alias := range aliases {
		want := fold(alias)
		if want == "" {
			continue
		}
		for i, h := range header {
			if !claimed[i] && h == want {
				return i
			}
		}
	}
	return -1
}

var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldDiacritics strips combining marks ("Éire" -> "Eire").
func foldDiacritics(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// canonicalize case-folds s and keeps only letters and digits.
func canonicalize(s string) string {
	s = strings.ToLower(foldDiacritics(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DetectHeader looks for a header among the first rows: a row that names the
// name column, or that has at least two cells matching known aliases.
func DetectHeader(rows [][]string) (int, bool) {
	nameAliases := aliasesFor(FieldName)
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		hits := 0
		for _, cell := range rows[i] {
			if !isKnownHeader(cell) {
				continue
			}
			hits++
			c := canonicalize(cell)
			for _, a := range nameAliases {
				if c == canonicalize(a) {
					return i, true
				}
			}
		}
		if hits >= 2 {
			return i, true
		}
	}
	return -1, false
}

func aliasesFor(field string) []string {
	for _, fa := range fieldTable {
		if fa.Field == field {
			return fa.Aliases
		}
	}
	return nil
}

var (
	urlRe        = regexp.MustCompile(`(?i)^(https?://|www\.)\S+$`)
	numericRe    = regexp.MustCompile(`^[\d\s.,/+\-]+$`)
	personLikeRe = regexp.MustCompile(`^\p{Lu}[\p{Ll}'’\-]*(?:\s+\p{Lu}[\p{Ll}'’\-]*)+$`)
	nameMarksRe  = regexp.MustCompile(`[\s\-'’]`)
)

func isURL(s string) bool {
	return urlRe.MatchString(strings.TrimSpace(s))
}

func isNumericToken(s string) bool {
	return numericRe.MatchString(strings.TrimSpace(s))
}

// GuessNameColumn scores every column by how much its cells look like
// personal names and returns the best one. Ties go to the lowest index.
func GuessNameColumn(rows [][]string) (int, bool) {
	var scores []float64
	for _, row := range rows {
		for col, raw := range row {
			cell := strings.TrimSpace(raw)
			if cell == "" || isURL(cell) || isNumericToken(cell) || isKnownHeader(cell) {
				continue
			}
			for len(scores) <= col {
				scores = append(scores, 0)
			}
			scores[col] += 1 + nameBonus(cell)
		}
	}

	best, bestScore := -1, 0.0
	for col, score := range scores {
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	return best, best >= 0
}

func nameBonus(cell string) float64 {
	bonus := 0.0
	if nameMarksRe.MatchString(cell) {
		bonus += 0.5
	}
	if personLikeRe.MatchString(cell) {
		bonus += 0.75
	}
	hasUpper, hasLower := false, false
	for _, r := range cell {
		hasUpper = hasUpper || unicode.IsUpper(r)
		hasLower = hasLower || unicode.IsLower(r)
	}
	if hasUpper && hasLower {
		bonus += 0.25
	}
	return bonus
}

// MapTable resolves the column mapping for a table and returns the data rows
// that follow the header. Without a recognisable header every row is data and
// the name column is guessed.
func MapTable(rows [][]string) (ColumnMapping, [][]string) {
	if idx, ok := DetectHeader(rows); ok {
		return ResolveColumns(rows[idx]), rows[idx+1:]
	}
	mapping := make(ColumnMapping)
	if col, ok := GuessNameColumn(rows); ok {
		mapping[FieldName] = col
	}
	return mapping, rows
}
