package engine

// maxScore returns the larger of x or y.
func maxScore(x, y Score) Score {
	if x > y {
		return x
	}
	return y
}

// minScore returns the smaller of x or y.
func minScore(x, y Score) Score {
	if x < y {
		return x
	}
	return y
}

// ClampScore restricts s to the inclusive range [-limit, limit]. Mate scores
// become +-limit, which keeps arithmetic on them from overflowing.
func ClampScore(s Score, limit Score) Score {
	if s > limit {
		return limit
	}
	if s < -limit {
		return -limit
	}
	return s
}
