package types

// RankedEntry is one row of a search result, in display order
type RankedEntry struct {
	// Identification
	Index int // Position of the entry in the search index
	Rank  int // Position in result set (1-based)

	// Scoring
	Score float64 // Sum of matching bit weights plus per-bit tiebreaker bonus

	// Display metadata
	Path               string
	OwnerName          string
	MemberLabel        string // Empty for modules
	DescriptionSnippet string // Empty when the entry has no leading paragraph
}

// Title joins owner and member label the way result lists display them
func (r *RankedEntry) Title() string {
	return r.OwnerName + r.MemberLabel
}

// Validate checks if the ranked entry is valid
func (r *RankedEntry) Validate() error {
	if r.Rank < 1 {
		return ErrInvalidRank
	}

	if r.Score <= 0 {
		return ErrInvalidScore
	}

	if r.Path == "" {
		return ErrEmptyPath
	}

	return nil
}
