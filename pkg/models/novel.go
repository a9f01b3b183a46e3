package models

// Novel is one catalog entry from the read-only dataset.
//
// Aliases is stored as a raw delimited string and searched as-is;
// the catalog builder decides the delimiter, we never split it.
type Novel struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Platform string `json:"platform,omitempty"`
	Aliases  string `json:"aliases,omitempty"`
}

// SearchHit is the (id, title) pair remembered in a search session so a
// follow-up numeric command can resolve back to the catalog row.
type SearchHit struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
