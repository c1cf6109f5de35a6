package entity

// Database is one extraction snapshot for a (database id, release year) pair.
type Database struct {
	ID      string  `json:"id"`
	Version int     `json:"version"`
	URL     string  `json:"url"`
	Entries []Entry `json:"entries"`
}
