package locate

// rankScoreTable reconstitutes the Wilcoxon-like rank-to-score table spec
// §4.4/§9 (Open Question b) says is normally supplied as an auxiliary data
// file from the original source. In its absence we use a piecewise-linear
// table symmetric about 0 that ramps linearly through the bulk of the
// distribution and saturates at +/-1 in the tails — the shape a rank-sum
// (R-estimator) score function is required to have, chosen rather than
// guessed at network-specific calibration constants. x is a normalized rank
// position in [-1,1] (u = (2*rank-(n+1))/(n-1)); y is the score.
var rankScoreTable = []struct{ x, y float64 }{
	{-1.0, -1.0},
	{-0.8, -1.0},
	{-0.4, -0.5},
	{0.0, 0.0},
	{0.4, 0.5},
	{0.8, 1.0},
	{1.0, 1.0},
}

// rankScore linearly interpolates rankScoreTable at u, clamping outside
// [-1,1].
func rankScore(u float64) float64 {
	if u <= rankScoreTable[0].x {
		return rankScoreTable[0].y
	}
	last := len(rankScoreTable) - 1
	if u >= rankScoreTable[last].x {
		return rankScoreTable[last].y
	}
	for i := 0; i < last; i++ {
		x0, x1 := rankScoreTable[i].x, rankScoreTable[i+1].x
		if u >= x0 && u <= x1 {
			y0, y1 := rankScoreTable[i].y, rankScoreTable[i+1].y
			if x1 == x0 {
				return y0
			}
			t := (u - x0) / (x1 - x0)
			return y0 + t*(y1-y0)
		}
	}
	return 0
}

// rankScoreForIndex maps a zero-based sorted position (rank) among n
// observations to a normalized rank position in [-1,1] and looks up its
// score.
func rankScoreForIndex(rank, n int) float64 {
	if n <= 1 {
		return 0
	}
	u := (2*float64(rank) - float64(n-1)) / float64(n-1)
	return rankScore(u)
}
