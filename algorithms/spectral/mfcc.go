package spectral

import (
	"fmt"
	"math"
)

// MFCC computes Mel-Frequency Cepstral Coefficients from a power spectrogram:
// mel filter bank -> dB -> orthonormal DCT-II
type MFCC struct {
	numCoefficients int
	numMelFilters   int
	sampleRate      int
	lowFreq         float64
	highFreq        float64
	lifterCoeff     float64
	decibel         DecibelParams

	melScale    *MelScale
	filterBank  [][]float64
	dctMatrix   [][]float64
	initialized bool
}

// MFCCParams contains parameters for MFCC computation
type MFCCParams struct {
	NumCoefficients int           `json:"num_coefficients"` // default 13
	NumMelFilters   int           `json:"num_mel_filters"`  // default 128
	LowFreq         float64       `json:"low_freq"`         // default 0
	HighFreq        float64       `json:"high_freq"`        // default sampleRate/2
	LifterCoeff     float64       `json:"lifter_coeff"`     // 0 disables liftering
	Decibel         DecibelParams `json:"decibel"`
}

// DefaultMFCCParams returns 13 coefficients over 128 Slaney mel bands, no liftering
func DefaultMFCCParams(sampleRate int) MFCCParams {
	return MFCCParams{
		NumCoefficients: 13,
		NumMelFilters:   128,
		LowFreq:         0.0,
		HighFreq:        float64(sampleRate) / 2.0,
		Decibel:         DefaultDecibelParams(),
	}
}

// NewMFCC creates a new MFCC computer with default parameters
func NewMFCC(sampleRate, numCoefficients int) *MFCC {
	params := DefaultMFCCParams(sampleRate)
	params.NumCoefficients = numCoefficients
	return NewMFCCWithParams(sampleRate, params)
}

// NewMFCCWithParams creates a new MFCC computer with custom parameters
func NewMFCCWithParams(sampleRate int, params MFCCParams) *MFCC {
	if params.NumCoefficients <= 0 {
		params.NumCoefficients = 13
	}
	if params.NumMelFilters <= 0 {
		params.NumMelFilters = 128
	}
	if params.HighFreq <= 0 {
		params.HighFreq = float64(sampleRate) / 2.0
	}
	if params.Decibel == (DecibelParams{}) {
		params.Decibel = DefaultDecibelParams()
	}

	return &MFCC{
		numCoefficients: params.NumCoefficients,
		numMelFilters:   params.NumMelFilters,
		sampleRate:      sampleRate,
		lowFreq:         params.LowFreq,
		highFreq:        params.HighFreq,
		lifterCoeff:     params.LifterCoeff,
		decibel:         params.Decibel,
		melScale:        NewMelScale(),
	}
}

// Initialize prepares the filter bank and DCT matrix for the given FFT size
func (mfcc *MFCC) Initialize(fftSize int) error {
	if fftSize <= 0 {
		return fmt.Errorf("invalid FFT size: %d", fftSize)
	}
	if mfcc.numCoefficients > mfcc.numMelFilters {
		return fmt.Errorf("cannot take %d coefficients from %d mel bands", mfcc.numCoefficients, mfcc.numMelFilters)
	}

	mfcc.filterBank = mfcc.melScale.CreateMelFilterBank(
		mfcc.numMelFilters,
		fftSize,
		mfcc.sampleRate,
		mfcc.lowFreq,
		mfcc.highFreq,
	)

	if len(mfcc.filterBank) == 0 {
		return fmt.Errorf("failed to create mel filter bank")
	}

	mfcc.createDCTMatrix()

	mfcc.initialized = true
	return nil
}

// LogMelSpectrogram returns the Time x Mel dB spectrogram of a power spectrogram
func (mfcc *MFCC) LogMelSpectrogram(powerSpectrogram [][]float64) ([][]float64, error) {
	if len(powerSpectrogram) == 0 {
		return [][]float64{}, nil
	}

	if !mfcc.initialized {
		fftSize := (len(powerSpectrogram[0]) - 1) * 2
		if err := mfcc.Initialize(fftSize); err != nil {
			return nil, fmt.Errorf("failed to initialize MFCC: %w", err)
		}
	}

	mel := mfcc.melScale.MelSpectrogram(powerSpectrogram, mfcc.filterBank)
	return PowerToDB(mel, mfcc.decibel), nil
}

// ComputeFrames returns Time x Coefficient MFCCs for a power spectrogram
func (mfcc *MFCC) ComputeFrames(powerSpectrogram [][]float64) ([][]float64, error) {
	logMel, err := mfcc.LogMelSpectrogram(powerSpectrogram)
	if err != nil {
		return nil, err
	}
	return mfcc.FromLogMel(logMel), nil
}

// FromLogMel applies the DCT (and optional liftering) to an existing Time x Mel
// dB spectrogram. Initialize or LogMelSpectrogram must have run first.
func (mfcc *MFCC) FromLogMel(logMel [][]float64) [][]float64 {
	frames := make([][]float64, len(logMel))
	for t, frame := range logMel {
		coeffs := mfcc.applyDCT(frame)
		if mfcc.lifterCoeff > 0 {
			coeffs = mfcc.applyLiftering(coeffs)
		}
		frames[t] = coeffs
	}
	return frames
}

// createDCTMatrix builds the orthonormal DCT-II matrix
func (mfcc *MFCC) createDCTMatrix() {
	n := float64(mfcc.numMelFilters)
	mfcc.dctMatrix = make([][]float64, mfcc.numCoefficients)

	for k := range mfcc.numCoefficients {
		mfcc.dctMatrix[k] = make([]float64, mfcc.numMelFilters)

		scale := math.Sqrt(2.0 / n)
		if k == 0 {
			scale = math.Sqrt(1.0 / n)
		}

		for i := range mfcc.numMelFilters {
			mfcc.dctMatrix[k][i] = scale * math.Cos(math.Pi*float64(k)*(float64(i)+0.5)/n)
		}
	}
}

func (mfcc *MFCC) applyDCT(logMelSpectrum []float64) []float64 {
	coeffs := make([]float64, mfcc.numCoefficients)

	for k, basis := range mfcc.dctMatrix {
		sum := 0.0
		for n := 0; n < len(logMelSpectrum) && n < len(basis); n++ {
			sum += logMelSpectrum[n] * basis[n]
		}
		coeffs[k] = sum
	}

	return coeffs
}

// applyLiftering applies sinusoidal liftering, leaving C0 untouched
func (mfcc *MFCC) applyLiftering(coeffs []float64) []float64 {
	liftered := make([]float64, len(coeffs))

	for i, coeff := range coeffs {
		if i == 0 {
			liftered[i] = coeff
			continue
		}
		lifter := 1.0 + (mfcc.lifterCoeff/2.0)*math.Sin(math.Pi*float64(i)/mfcc.lifterCoeff)
		liftered[i] = coeff * lifter
	}

	return liftered
}

// GetFilterBank returns the mel filter bank
func (mfcc *MFCC) GetFilterBank() [][]float64 {
	return mfcc.filterBank
}

// GetParams returns the current MFCC parameters
func (mfcc *MFCC) GetParams() MFCCParams {
	return MFCCParams{
		NumCoefficients: mfcc.numCoefficients,
		NumMelFilters:   mfcc.numMelFilters,
		LowFreq:         mfcc.lowFreq,
		HighFreq:        mfcc.highFreq,
		LifterCoeff:     mfcc.lifterCoeff,
		Decibel:         mfcc.decibel,
	}
}
