package sync

import "time"

const EventCharactersLoaded = "characters.loaded"

// LoadEvent is pushed to feed clients whenever a batch replaces the last one.
type LoadEvent struct {
	Type     string    `json:"type"`
	Source   string    `json:"source"`
	Count    int       `json:"count"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
}
