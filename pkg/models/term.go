package models

// TermEntry is one glossary record. The source files carry Chinese field
// names; a term may have a split new/old explanation or a single generic one.
type TermEntry struct {
	Name           string `json:"名称"`
	NewExplanation string `json:"新版解释,omitempty"`
	OldExplanation string `json:"老版解释,omitempty"`
	Explanation    string `json:"解释,omitempty"`
}
