package filter

import "fmt"

// State is the delay line for streaming application, direct form II
// transposed. Feeding a signal through in chunks with one State produces
// the same output as one large call.
type State struct {
	z []float64
}

// NewState returns a zero-initialized delay line sized to the coefficient
// arrays.
func NewState(c Coefficients) *State {
	n := len(c.B)
	if len(c.A) > n {
		n = len(c.A)
	}
	return &State{z: make([]float64, n)}
}

// Reset zeroes the delay line.
func (s *State) Reset() {
	for i := range s.z {
		s.z[i] = 0
	}
}

// Apply runs the streaming IIR filter over input, consuming and updating
// state so chunked and unchunked processing agree.
func Apply(input []float64, c Coefficients, state *State) ([]float64, error) {
	if len(c.B) == 0 || len(c.A) == 0 {
		return nil, fmt.Errorf("filter apply: empty coefficients")
	}
	if c.A[0] == 0 {
		return nil, fmt.Errorf("filter apply: a[0] must be non-zero")
	}
	n := len(c.B)
	if len(c.A) > n {
		n = len(c.A)
	}
	if state == nil || len(state.z) < n {
		return nil, fmt.Errorf("filter apply: state not sized for coefficients")
	}

	// Pad both coefficient arrays to a common length.
	b := make([]float64, n)
	a := make([]float64, n)
	copy(b, c.B)
	copy(a, c.A)

	out := make([]float64, len(input))
	z := state.z
	for i, x := range input {
		y := b[0]*x + z[0]
		for j := 0; j < n-1; j++ {
			z[j] = b[j+1]*x + z[j+1] - a[j+1]*y
		}
		out[i] = y
	}
	return out, nil
}

// ApplyZeroPhase runs the filter forward and backward (filtfilt style) to
// cancel phase delay. Output length equals input length.
func ApplyZeroPhase(input []float64, c Coefficients) ([]float64, error) {
	forward, err := Apply(input, c, NewState(c))
	if err != nil {
		return nil, err
	}
	reverse(forward)
	backward, err := Apply(forward, c, NewState(c))
	if err != nil {
		return nil, err
	}
	reverse(backward)
	return backward, nil
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// BandpassFilter keeps a design and its streaming state together for one
// channel.
type BandpassFilter struct {
	cfg    Config
	coeffs Coefficients
	state  *State
}

// New designs the filter and allocates fresh state.
func New(cfg Config) (*BandpassFilter, error) {
	coeffs, err := Design(cfg)
	if err != nil {
		return nil, err
	}
	return &BandpassFilter{
		cfg:    cfg,
		coeffs: coeffs,
		state:  NewState(coeffs),
	}, nil
}

// Process filters one chunk, preserving internal state across calls.
func (f *BandpassFilter) Process(chunk []float64) []float64 {
	out, err := Apply(chunk, f.coeffs, f.state)
	if err != nil {
		// Design and state are validated at construction; Apply cannot
		// fail on a constructed filter.
		return make([]float64, len(chunk))
	}
	return out
}

// Reset zeroes the delay line; replaying the same input afterwards
// reproduces the output of a fresh instance.
func (f *BandpassFilter) Reset() {
	f.state.Reset()
}

// Config returns a copy of the design parameters.
func (f *BandpassFilter) Config() Config {
	return f.cfg
}

// Coefficients returns defensive copies of the coefficient arrays.
func (f *BandpassFilter) Coefficients() Coefficients {
	b := make([]float64, len(f.coeffs.B))
	a := make([]float64, len(f.coeffs.A))
	copy(b, f.coeffs.B)
	copy(a, f.coeffs.A)
	return Coefficients{B: b, A: a}
}
