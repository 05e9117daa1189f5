package route

// Score is the specificity of a pattern. Compare scores with Compare.
type Score struct {
	catchAll bool
	ranks    []Rank
}

// Score returns the specificity score of the pattern. Route groups do not contribute.
func (p *Pattern) Score() Score {
	ranks := make([]Rank, len(p.matchable))
	for i, seg := range p.matchable {
		ranks[i] = seg.rank
	}
	return Score{catchAll: p.catchAll, ranks: ranks}
}

// Compare returns a positive number when s is more specific than o, a negative
// number when it is less specific and zero when both rank equally.
func (s Score) Compare(o Score) int {
	if s.catchAll != o.catchAll {
		if s.catchAll {
			return -1
		}
		return 1
	}

	n := min(len(s.ranks), len(o.ranks))
	for i := range n {
		if s.ranks[i] != o.ranks[i] {
			return int(s.ranks[i]) - int(o.ranks[i])
		}
	}

	// Shared prefix: the shorter pattern leaves nothing to optional or catch-all tails.
	return len(o.ranks) - len(s.ranks)
}

// Ranks returns a copy of the per-segment ranks.
func (s Score) Ranks() []Rank {
	out := make([]Rank, len(s.ranks))
	copy(out, s.ranks)
	return out
}
