package spectral

import "math"

// DecibelParams controls power to dB conversion
type DecibelParams struct {
	Ref   float64 `json:"ref"`    // reference power mapped to 0 dB (default 1)
	Amin  float64 `json:"amin"`   // floor applied before the logarithm (default 1e-10)
	TopDB float64 `json:"top_db"` // dynamic range kept below the peak; <= 0 disables
}

// DefaultDecibelParams returns ref 1.0, amin 1e-10, top_db 80
func DefaultDecibelParams() DecibelParams {
	return DecibelParams{Ref: 1.0, Amin: 1e-10, TopDB: 80.0}
}

// PowerToDB converts a power matrix to decibels: 10*log10(max(amin, S)/ref),
// then clips everything more than TopDB below the global maximum.
// The input is not modified.
func PowerToDB(power [][]float64, params DecibelParams) [][]float64 {
	if params.Amin <= 0 {
		params.Amin = 1e-10
	}
	if params.Ref <= 0 {
		params.Ref = 1.0
	}

	refDB := 10.0 * math.Log10(math.Max(params.Amin, params.Ref))
	peak := math.Inf(-1)

	db := make([][]float64, len(power))
	for t, row := range power {
		db[t] = make([]float64, len(row))
		for i, p := range row {
			v := 10.0*math.Log10(math.Max(params.Amin, p)) - refDB
			db[t][i] = v
			peak = math.Max(peak, v)
		}
	}

	if params.TopDB > 0 && !math.IsInf(peak, -1) {
		floor := peak - params.TopDB
		for _, row := range db {
			for i, v := range row {
				if v < floor {
					row[i] = floor
				}
			}
		}
	}

	return db
}
