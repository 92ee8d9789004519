package loremaker

import (
	"time"

	"loremaker/pkg/models"
)

// sampleRows is the dataset served when no remote sheet can be read. It goes
// through the same pipeline as fetched data.
var sampleRows = [][]string{
	{"Character", "Alias", "Gender", "Alignment", "Location", "Status", "Era", "First Appearance", "Powers", "Faction", "Tags", "Short Description", "Stories"},
	{
		"Mystic Man", "The Veiled One | Mystic", "Male", "Hero", "Accra, Kumasi", "Active", "Modern",
		"Issue #1", "Spellcraft:9, Teleportation(7), Reflexes 6", "Night Council", "magic, mentor",
		"A street magician who found the real thing.", "Origins; The Long Night",
	},
	{
		"Ama Serwaa", "Sunshield", "Female", "Hero", "Kumasi", "Active", "Modern",
		"Issue #3", "Light Manipulation: 8/10, Flight", "Night Council", "light, leader",
		"Captain of the Night Council.", "The Long Night",
	},
	{
		"Kofi Obsidian", "The Quiet Storm", "Male", "Villain", "Lagos; Accra", "Unknown", "Ancient",
		"Issue #5", "Storm Calling, Shadow Step(6)", "Obsidian Court", "weather, rival",
		"An old power that woke up angry.", "Origins",
	},
	{
		"Nana Yaa", "Keeper", "Female", "Neutral", "Elmina", "Deceased", "Colonial",
		"Issue #2", "Foresight 9 and Memory Walk", "Night Council | Keepers", "seer",
		"She saw every ending but her own.", "The Long Night; Tidewater",
	},
}

// SampleCharacters builds the built-in dataset for the given day.
func SampleCharacters(day time.Time) []models.Character {
	return BuildCharacters(sampleRows, day)
}
