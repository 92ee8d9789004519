package models

// Power is a named ability with a level from 0 to 10.
type Power struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	// Estimated is set when the source gave no level; the level is then
	// filled with the daily placeholder value.
	Estimated bool `json:"estimated,omitempty"`
}

// Character is the normalized form of one spreadsheet row.
//
// Every source format is mapped into this structure first; the API and the
// snapshot archive only ever see this representation.
type Character struct {
	ID              string   `json:"id"`
	Slug            string   `json:"slug"`
	Name            string   `json:"name"`
	Alias           []string `json:"alias"`
	Gender          string   `json:"gender,omitempty"`
	Alignment       string   `json:"alignment,omitempty"`
	Locations       []string `json:"locations"`
	Status          string   `json:"status,omitempty"`
	Era             string   `json:"era,omitempty"`
	FirstAppearance string   `json:"firstAppearance,omitempty"`
	Powers          []Power  `json:"powers"`
	Faction         []string `json:"faction"`
	Tags            []string `json:"tags"`
	ShortDesc       string   `json:"shortDesc,omitempty"`
	LongDesc        string   `json:"longDesc,omitempty"`
	Stories         []string `json:"stories"`
	Cover           string   `json:"cover,omitempty"`
	Gallery         []string `json:"gallery"`
}
