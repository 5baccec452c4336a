package audio

const deltaWidth = 9

// delta returns the local derivative of each row along time, estimated by
// a least-squares polynomial fit over deltaWidth frames. Frames within
// half a window of either edge take the value of the nearest full window,
// which is exact for a fit of the same degree as the derivative. Rows
// shorter than one window have no estimate and yield zeros.
func delta(data [][]float64, order int) [][]float64 {
	half := deltaWidth / 2
	var coef [deltaWidth]float64
	for i := range coef {
		k := float64(i - half)
		switch order {
		case 1:
			coef[i] = k / 60
		case 2:
			coef[i] = (k*k - 20.0/3) / 154
		}
	}

	out := make([][]float64, len(data))
	for r, row := range data {
		d := make([]float64, len(row))
		out[r] = d
		n := len(row)
		if n < deltaWidth {
			continue
		}
		for t := half; t < n-half; t++ {
			s := 0.0
			for i, c := range coef {
				s += c * row[t-half+i]
			}
			d[t] = s
		}
		for t := 0; t < half; t++ {
			d[t] = d[half]
			d[n-1-t] = d[n-1-half]
		}
	}
	return out
}
