package anthropic

// maxCacheBreakpoints is the vendor's ceiling on cache_control markers per
// request, system and message blocks combined.
const maxCacheBreakpoints = 4

// cachePositions records where cache markers were encountered during
// mapping: indices into the system-block sequence and indices into the
// vendor-message sequence, each pointing at the last block written when the
// marker appeared.
type cachePositions struct {
	system  []int
	message []int
}

// planCacheBreakpoints decides which recorded positions survive when more
// markers exist than the vendor allows. System positions always win: system
// and tool-definition content changes least often and is placed first in the
// request, so caching it pays off on every call. The remaining capacity goes
// to the most recent message positions, which are the likeliest to be reused
// on the next turn.
func planCacheBreakpoints(system, message []int, limit int) ([]int, []int) {
	if len(system)+len(message) <= limit {
		return system, message
	}
	if len(system) >= limit {
		return system[:limit], nil
	}
	remaining := limit - len(system)
	return system, message[len(message)-remaining:]
}
