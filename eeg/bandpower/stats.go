package bandpower

import "math"

// Mean averages band powers across repeated epochs. Zero epochs yield an
// all-zero result.
func Mean(epochs []BandPowers) BandPowers {
	if len(epochs) == 0 {
		return BandPowers{}
	}
	var m BandPowers
	for _, e := range epochs {
		m.Theta += e.Theta
		m.Alpha += e.Alpha
		m.Beta += e.Beta
		m.Total += e.Total
	}
	n := float64(len(epochs))
	m.Theta /= n
	m.Alpha /= n
	m.Beta /= n
	m.Total /= n
	return m
}

// Std computes the sample standard deviation (n-1 divisor) of band powers
// across epochs. Fewer than two epochs yield an all-zero result.
func Std(epochs []BandPowers) BandPowers {
	if len(epochs) < 2 {
		return BandPowers{}
	}
	m := Mean(epochs)
	var s BandPowers
	for _, e := range epochs {
		s.Theta += (e.Theta - m.Theta) * (e.Theta - m.Theta)
		s.Alpha += (e.Alpha - m.Alpha) * (e.Alpha - m.Alpha)
		s.Beta += (e.Beta - m.Beta) * (e.Beta - m.Beta)
		s.Total += (e.Total - m.Total) * (e.Total - m.Total)
	}
	n := float64(len(epochs) - 1)
	s.Theta = math.Sqrt(s.Theta / n)
	s.Alpha = math.Sqrt(s.Alpha / n)
	s.Beta = math.Sqrt(s.Beta / n)
	s.Total = math.Sqrt(s.Total / n)
	return s
}
