package domain

// VoteThreshold is the exclusive lower bound for public visibility.
// Content whose running score is at or below it is hidden from every reader.
const VoteThreshold = -3

// IsVisible reports whether an entity with the given running score is listable
func IsVisible(score int) bool {
	return score > VoteThreshold
}
