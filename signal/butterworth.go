package signal

import (
	"fmt"
	"math"
	"math/cmplx"
)

// FilterType selects the Butterworth response shape, mirroring SciPy's
// btype argument.
type FilterType int

const (
	Lowpass FilterType = iota
	Highpass
	Bandpass
	Bandstop
)

func (t FilterType) String() string {
	switch t {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Bandstop:
		return "bandstop"
	default:
		return "unknown"
	}
}

// Design computes digital Butterworth filter coefficients (b, a) of order
// n with cutoff(s) wn, interpreted relative to fs the way SciPy's
// butter(N, Wn, btype, fs=fs) does: wn carries one frequency in Hz for
// lowpass/highpass, two for bandpass/bandstop (the low and high edges).
//
// No third-party Go package in the reviewed ecosystem implements
// SciPy-compatible Butterworth design (analog prototype, frequency
// transform, bilinear transform); this follows the same sequence of
// steps SciPy's signal.butter takes internally (buttap -> lp2lp/hp/bp/bs
// -> bilinear_zpk -> zpk2tf), using math/cmplx for the pole/zero algebra.
func Design(n int, wn []float64, btype FilterType, fs float64) (b, a []float64, err error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("signal: filter order must be >= 1, got %d", n)
	}
	nyq := fs / 2
	normalized := make([]float64, len(wn))
	for i, w := range wn {
		normalized[i] = w / nyq
		if normalized[i] <= 0 || normalized[i] >= 1 {
			return nil, nil, fmt.Errorf("signal: cutoff %g is not within (0, nyquist=%g)", w, nyq)
		}
	}

	// Pre-warp the normalized digital cutoff(s) into analog angular
	// frequency for a bilinear transform with the conventional fs=2.
	warped := make([]float64, len(normalized))
	for i, wnorm := range normalized {
		warped[i] = 4 * math.Tan(math.Pi*wnorm/2)
	}

	zerosLP, polesLP, gainLP := buttap(n)

	var z, p []complex128
	var k float64

	switch btype {
	case Lowpass:
		z, p, k = lp2lp(zerosLP, polesLP, gainLP, warped[0])
	case Highpass:
		z, p, k = lp2hp(zerosLP, polesLP, gainLP, warped[0])
	case Bandpass:
		if len(warped) != 2 {
			return nil, nil, fmt.Errorf("signal: bandpass requires two cutoffs")
		}
		bw := warped[1] - warped[0]
		wo := math.Sqrt(warped[0] * warped[1])
		z, p, k = lp2bp(zerosLP, polesLP, gainLP, wo, bw)
	case Bandstop:
		if len(warped) != 2 {
			return nil, nil, fmt.Errorf("signal: bandstop requires two cutoffs")
		}
		bw := warped[1] - warped[0]
		wo := math.Sqrt(warped[0] * warped[1])
		z, p, k = lp2bs(zerosLP, polesLP, gainLP, wo, bw)
	default:
		return nil, nil, fmt.Errorf("signal: unknown filter type %v", btype)
	}

	zd, pd, kd := bilinear(z, p, k, 2.0)
	b, a = zpk2tf(zd, pd, kd)
	return b, a, nil
}

// buttap returns the zeros, poles and gain of the order-n analog
// Butterworth lowpass prototype with unit cutoff.
func buttap(n int) (zeros, poles []complex128, gain float64) {
	poles = make([]complex128, n)
	for k := 0; k < n; k++ {
		theta := math.Pi * float64(2*k+n+1) / float64(2*n)
		poles[k] = cmplx.Exp(complex(0, theta))
	}
	return nil, poles, 1.0
}

// lp2lp rescales an analog lowpass prototype to cutoff wo.
func lp2lp(zeros, poles []complex128, k float64, wo float64) ([]complex128, []complex128, float64) {
	degree := len(poles) - len(zeros)
	z := scaleRoots(zeros, wo)
	p := scaleRoots(poles, wo)
	kNew := k * math.Pow(wo, float64(degree))
	return z, p, kNew
}

// lp2hp converts an analog lowpass prototype to highpass with cutoff wo.
func lp2hp(zeros, poles []complex128, k float64, wo float64) ([]complex128, []complex128, float64) {
	degree := len(poles) - len(zeros)

	z := make([]complex128, len(zeros))
	for i, zi := range zeros {
		z[i] = complex(wo, 0) / zi
	}
	p := make([]complex128, len(poles))
	for i, pi := range poles {
		p[i] = complex(wo, 0) / pi
	}
	// Extra zeros at the origin account for the degree difference.
	for i := 0; i < degree; i++ {
		z = append(z, 0)
	}

	num, den := complex(1, 0), complex(1, 0)
	for _, zi := range zeros {
		num *= -zi
	}
	for _, pi := range poles {
		den *= -pi
	}
	kNew := k * real(num/den)
	return z, p, kNew
}

// lp2bp converts an analog lowpass prototype to bandpass with center wo
// and bandwidth bw.
func lp2bp(zeros, poles []complex128, k float64, wo, bw float64) ([]complex128, []complex128, float64) {
	degree := len(poles) - len(zeros)

	zLP := scaleRoots(zeros, bw/2)
	pLP := scaleRoots(poles, bw/2)

	z := make([]complex128, 0, 2*len(zLP)+degree)
	p := make([]complex128, 0, 2*len(pLP))

	for _, zi := range zLP {
		disc := cmplx.Sqrt(zi*zi - complex(wo*wo, 0))
		z = append(z, zi+disc, zi-disc)
	}
	for _, pi := range pLP {
		disc := cmplx.Sqrt(pi*pi - complex(wo*wo, 0))
		p = append(p, pi+disc, pi-disc)
	}
	for i := 0; i < degree; i++ {
		z = append(z, 0)
	}

	kNew := k * math.Pow(bw, float64(degree))
	return z, p, kNew
}

// lp2bs converts an analog lowpass prototype to bandstop with center wo
// and bandwidth bw.
func lp2bs(zeros, poles []complex128, k float64, wo, bw float64) ([]complex128, []complex128, float64) {
	degree := len(poles) - len(zeros)

	z := make([]complex128, 0, 2*len(poles))
	p := make([]complex128, 0, 2*len(poles))

	// Butterworth lowpass prototypes have no finite zeros, so the
	// reciprocal step used by SciPy's lp2bs_zpk degenerates to placing
	// wo*j/-wo*j pairs for each missing zero.
	for i := 0; i < len(poles)-degree; i++ {
		z = append(z, complex(0, wo), complex(0, -wo))
	}

	pInv := make([]complex128, len(poles))
	for i, pi := range poles {
		pInv[i] = complex(bw/2, 0) / pi
	}
	for _, pi := range pInv {
		disc := cmplx.Sqrt(pi*pi - complex(wo*wo, 0))
		p = append(p, pi+disc, pi-disc)
	}
	for i := 0; i < degree; i++ {
		z = append(z, complex(0, wo), complex(0, -wo))
	}

	num, den := complex(1, 0), complex(1, 0)
	for _, zi := range zeros {
		num *= -zi
	}
	for _, pi := range poles {
		den *= -pi
	}
	kNew := k * real(num/den)
	return z, p, kNew
}

func scaleRoots(roots []complex128, factor float64) []complex128 {
	out := make([]complex128, len(roots))
	for i, r := range roots {
		out[i] = r * complex(factor, 0)
	}
	return out
}

// bilinear applies the bilinear transform to map an analog zpk filter to
// a digital one, with the conventional sample frequency fs (2.0 pairs
// with the pre-warping applied by the caller).
func bilinear(z, p []complex128, k float64, fs float64) (zd, pd []complex128, kd float64) {
	fs2 := complex(2*fs, 0)

	degree := len(p) - len(z)

	zd = make([]complex128, len(z), len(z)+degree)
	for i, zi := range z {
		zd[i] = (fs2 + zi) / (fs2 - zi)
	}
	pd = make([]complex128, len(p))
	for i, pi := range p {
		pd[i] = (fs2 + pi) / (fs2 - pi)
	}
	for i := 0; i < degree; i++ {
		zd = append(zd, -1)
	}

	numProd, denProd := complex(1, 0), complex(1, 0)
	for _, zi := range z {
		numProd *= fs2 - zi
	}
	for _, pi := range p {
		denProd *= fs2 - pi
	}
	kd = k * real(numProd/denProd)
	return zd, pd, kd
}

// zpk2tf expands zero/pole/gain form into transfer function numerator
// and denominator coefficients via polynomial multiplication of the
// (s - root) factors.
func zpk2tf(z, p []complex128, k float64) (b, a []float64) {
	bc := polyFromRoots(z)
	for i := range bc {
		bc[i] *= complex(k, 0)
	}
	ac := polyFromRoots(p)

	b = make([]float64, len(bc))
	for i, c := range bc {
		b[i] = real(c)
	}
	a = make([]float64, len(ac))
	for i, c := range ac {
		a[i] = real(c)
	}
	return b, a
}

// polyFromRoots multiplies out the monic polynomial whose roots are the
// given values, returning coefficients from highest to lowest degree.
func polyFromRoots(roots []complex128) []complex128 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	return coeffs
}
