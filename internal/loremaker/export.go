package loremaker

import (
	"strconv"
	"strings"

	"loremaker/pkg/models"
)

// exportColumns is the header layout ExportRow writes. Every label is a
// recognised alias, so an exported file maps back onto the same fields.
var exportColumns = []string{
	"ID", "Slug", "Character", "Alias", "Gender", "Alignment", "Location", "Status", "Era",
	"First Appearance", "Powers", "Faction", "Tags", "Short Description", "Long Description",
	"Stories", "Cover Image",
}

// ExportHeader returns the header row for ExportRow.
func ExportHeader() []string {
	out := append([]string(nil), exportColumns...)
	for i := 1; i <= GalleryFields; i++ {
		out = append(out, "Gallery Image "+strconv.Itoa(i))
	}
	return out
}

// ExportRow flattens a character back into sheet cells. Estimated powers are
// written without a level so they are re-estimated on the next load.
func ExportRow(c models.Character) []string {
	powers := make([]string, 0, len(c.Powers))
	for _, p := range c.Powers {
		if p.Estimated {
			powers = append(powers, p.Name)
			continue
		}
		powers = append(powers, p.Name+":"+strconv.Itoa(p.Level))
	}

	row := []string{
		c.ID, c.Slug, c.Name, joinList(c.Alias), c.Gender, c.Alignment, joinList(c.Locations),
		c.Status, c.Era, c.FirstAppearance, strings.Join(powers, ", "), joinList(c.Faction),
		joinList(c.Tags), c.ShortDesc, c.LongDesc, joinList(c.Stories), c.Cover,
	}
	for i := 0; i < GalleryFields; i++ {
		g := ""
		if i < len(c.Gallery) {
			g = c.Gallery[i]
		}
		row = append(row, g)
	}
	return row
}

func joinList(items []string) string {
	return strings.Join(items, " | ")
}
