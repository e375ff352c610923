package satgrid

// FirstAndLast returns the indices of the first and last true value in
// qualifies, or (-1, -1) if no value is true.
func FirstAndLast(qualifies []bool) (int, int) {
	first, last := -1, -1
	for i, q := range qualifies {
		if q {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last
}

// SwathEdges finds, for every row of the view angle grid, the first and last
// column within maxAngle degrees of view, defining the usable swath. Rows
// with no qualifying column get (-1, -1).
func SwathEdges(viewAngle [][]float64, maxAngle float64) ([]int, []int) {
	start := make([]int, len(viewAngle))
	end := make([]int, len(viewAngle))
	qualifies := make([]bool, 0)
	for i, row := range viewAngle {
		qualifies = qualifies[:0]
		for _, v := range row {
			qualifies = append(qualifies, v <= maxAngle)
		}
		start[i], end[i] = FirstAndLast(qualifies)
	}
	return start, end
}
