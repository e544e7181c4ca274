package plot

// StarLabel converts a p-value to the standard significance star notation.
// The mapping is total: non-significant values yield "ns" even though the
// layout engine filters those out before labeling.
func StarLabel(p float64) string {
	switch {
	case p < 0.0001:
		return "****"
	case p < 0.001:
		return "***"
	case p < 0.01:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return "ns"
	}
}
