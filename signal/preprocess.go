package signal

import "gonum.org/v1/gonum/mat"

// Params configures one preprocessing pass: decimate by N, then filter
// with an order f_order Butterworth filter of the given type and
// cutoff(s) Wn (Hz), interpreted relative to fs/N the way SciPy's
// butter(..., fs=fs/N) does.
type Params struct {
	N      int
	Fs     float64
	FOrder int
	Wn     []float64
	BType  FilterType
}

// Dt returns the effective sample period after preprocessing.
func (p Params) Dt() float64 {
	return float64(p.N) / p.Fs
}

// Preprocess runs the moving-mean downsample followed by the zero-phase
// Butterworth filter described in the spec's Signal Preprocessor
// component, returning a new (ceil(T/N), S) matrix.
func Preprocess(data *mat.Dense, p Params) (*mat.Dense, error) {
	reduced := Downsample(data, p.N)

	fsReduced := p.Fs / float64(p.N)
	b, a, err := Design(p.FOrder, p.Wn, p.BType, fsReduced)
	if err != nil {
		return nil, err
	}

	return Filtfilt(reduced, b, a), nil
}
