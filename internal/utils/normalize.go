package utils

// maxRank is the largest rank a response can carry.
const maxRank = 1<<16 - 1

// CreateRankList returns the 1 based positions of count ranked results.
// Positions past maxRank all get maxRank.
func CreateRankList(count int) []uint16 {
	if count <= 0 {
		return []uint16{}
	}
	ranks := make([]uint16, count)
	for i := range ranks {
		ranks[i] = uint16(min(i+1, maxRank))
	}
	return ranks
}

// ClampLimit turns a requested result count into one the caller serves:
// fallback when nothing usable was asked for, at most maxLimit otherwise.
// A maxLimit below 1 means no upper bound.
func ClampLimit(requested, fallback, maxLimit int) int {
	limit := requested
	if limit < 1 {
		limit = fallback
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
