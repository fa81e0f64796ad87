package spectral

import "math"

// WindowType selects the taper applied to each Welch segment.
type WindowType int

const (
	WindowHann WindowType = iota
	WindowHamming
	WindowRectangular
)

// String returns the window name used in config files.
func (w WindowType) String() string {
	switch w {
	case WindowHann:
		return "hann"
	case WindowHamming:
		return "hamming"
	case WindowRectangular:
		return "rectangular"
	}
	return "unknown"
}

// ParseWindowType maps a window name from the config boundary.
func ParseWindowType(name string) (WindowType, bool) {
	switch name {
	case "hann":
		return WindowHann, true
	case "hamming":
		return WindowHamming, true
	case "rectangular":
		return WindowRectangular, true
	}
	return 0, false
}

// Hann returns the symmetric Hann window: zero at the edges, one at the
// center.
func Hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}

// Hamming returns the symmetric Hamming window (0.08 at the edges).
func Hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2.0*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// Rectangular returns the all-ones window.
func Rectangular(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}

// MakeWindow builds the window of the given type and length.
func MakeWindow(t WindowType, n int) []float64 {
	switch t {
	case WindowHamming:
		return Hamming(n)
	case WindowRectangular:
		return Rectangular(n)
	default:
		return Hann(n)
	}
}

// WindowPower returns the sum of squared window values, used to normalize
// periodograms to power spectral density. Rectangular gives n; Hann gives
// roughly 0.375n.
func WindowPower(w []float64) float64 {
	var sum float64
	for _, v := range w {
		sum += v * v
	}
	return sum
}
