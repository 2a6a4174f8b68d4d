package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Features is a log-mel spectrogram, NMels rows by frame-count columns.
type Features struct {
	Mel [][]float32
}

// Shape returns (mel bins, frames).
func (f *Features) Shape() (int, int) {
	if f == nil || len(f.Mel) == 0 {
		return 0, 0
	}
	return len(f.Mel), len(f.Mel[0])
}

// Flatten returns the spectrogram in row-major order.
func (f *Features) Flatten() []float32 {
	rows, cols := f.Shape()
	out := make([]float32, 0, rows*cols)
	for _, row := range f.Mel {
		out = append(out, row...)
	}
	return out
}

// Slaney mel scale: linear below 1 kHz, logarithmic above.
const (
	melLinearStep = 200.0 / 3
	melMinLogHz   = 1000.0
	melMinLogMel  = melMinLogHz / melLinearStep
)

var melLogStep = math.Log(6.4) / 27

func hzToMel(f float64) float64 {
	if f < melMinLogHz {
		return f / melLinearStep
	}
	return melMinLogMel + math.Log(f/melMinLogHz)/melLogStep
}

func melToHz(m float64) float64 {
	if m < melMinLogMel {
		return m * melLinearStep
	}
	return melMinLogHz * math.Exp(melLogStep*(m-melMinLogMel))
}

// melFilterBank builds Slaney-normalized triangular filters over 0..sr/2,
// one row per mel bin and one column per FFT bin.
func melFilterBank(sr, nFFT, nMels int) [][]float64 {
	nFreqs := nFFT/2 + 1
	fftFreqs := make([]float64, nFreqs)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sr) / float64(nFFT)
	}

	minMel, maxMel := hzToMel(0), hzToMel(float64(sr)/2)
	melF := make([]float64, nMels+2)
	for i := range melF {
		melF[i] = melToHz(minMel + (maxMel-minMel)*float64(i)/float64(nMels+1))
	}

	filters := make([][]float64, nMels)
	for m := 0; m < nMels; m++ {
		row := make([]float64, nFreqs)
		norm := 2 / (melF[m+2] - melF[m])
		for k, f := range fftFreqs {
			lower := (f - melF[m]) / (melF[m+1] - melF[m])
			upper := (melF[m+2] - f) / (melF[m+2] - melF[m+1])
			row[k] = math.Max(0, math.Min(lower, upper)) * norm
		}
		filters[m] = row
	}
	return filters
}

var (
	melFilters = sync.OnceValue(func() [][]float64 {
		return melFilterBank(SampleRate, NFFT, NMels)
	})
	hannWindow = sync.OnceValue(func() []float64 {
		w := make([]float64, NFFT)
		for n := range w {
			w[n] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(n)/NFFT)
		}
		return w
	})
)

// LogMel computes the log-mel spectrogram of a 16 kHz waveform: centered STFT
// with reflect padding, periodic Hann window, power spectrum, mel projection,
// then log10 clamped to 8 decades below the peak and scaled to about [-1, 1].
// The final STFT frame is dropped, so NSamples in gives NFrames out.
func LogMel(samples []float32) *Features {
	n := len(samples)
	pad := NFFT / 2
	padded := make([]float64, n+2*pad)
	for i, v := range samples {
		padded[pad+i] = float64(v)
	}
	for i := 0; i < pad; i++ {
		if i+1 < n {
			padded[pad-1-i] = float64(samples[i+1])
		}
		if n-2-i >= 0 {
			padded[pad+n+i] = float64(samples[n-2-i])
		}
	}

	frames := n / HopLength
	filters := melFilters()
	window := hannWindow()
	fft := fourier.NewFFT(NFFT)

	mel := make([][]float32, NMels)
	for m := range mel {
		mel[m] = make([]float32, frames)
	}

	frame := make([]float64, NFFT)
	power := make([]float64, NFFT/2+1)
	var coeffs []complex128
	logMax := math.Inf(-1)
	logSpec := make([][]float64, NMels)
	for m := range logSpec {
		logSpec[m] = make([]float64, frames)
	}

	for t := 0; t < frames; t++ {
		start := t * HopLength
		for i := 0; i < NFFT; i++ {
			frame[i] = padded[start+i] * window[i]
		}
		coeffs = fft.Coefficients(coeffs, frame)
		for k := range power {
			a := cmplx.Abs(coeffs[k])
			power[k] = a * a
		}
		for m, row := range filters {
			var sum float64
			for k, w := range row {
				if w != 0 {
					sum += w * power[k]
				}
			}
			v := math.Log10(math.Max(sum, 1e-10))
			logSpec[m][t] = v
			if v > logMax {
				logMax = v
			}
		}
	}

	floor := logMax - 8
	for m := range logSpec {
		for t, v := range logSpec[m] {
			if v < floor {
				v = floor
			}
			mel[m][t] = float32((v + 4) / 4)
		}
	}
	return &Features{Mel: mel}
}
