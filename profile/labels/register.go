package labels

import (
	"math/rand"
	"sync"

	"github.com/RyanBlaney/sonido-insight/profile/extractors"
)

// RegisterStrategy picks a vocal register label for a clip that has vocals
type RegisterStrategy interface {
	Register(features *extractors.FeatureVector, vocalTypes []string) string
	Name() string
}

// CentroidRegister maps the spectral centroid in 1 kHz bands onto the vocal
// types, skipping the trailing "instrumental" entry. Deterministic.
type CentroidRegister struct{}

// Name returns the config value that selects this strategy
func (CentroidRegister) Name() string { return "centroid" }

// Register returns the vocal type for the centroid's 1 kHz band, clamped to
// the last non-instrumental entry; an empty list yields "None"
func (CentroidRegister) Register(features *extractors.FeatureVector, vocalTypes []string) string {
	if len(vocalTypes) == 0 {
		return noneLabel
	}
	candidates := len(vocalTypes) - 1
	if candidates < 1 {
		candidates = 1
	}

	idx := 0
	if features != nil && features.SpectralCentroid > 0 {
		idx = int(features.SpectralCentroid / 1000)
	}
	idx = min(max(idx, 0), candidates-1)

	return vocalTypes[idx]
}

// RandomRegister draws uniformly over all vocal types from a seeded source
type RandomRegister struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRegister creates a seeded random strategy
func NewRandomRegister(seed int64) *RandomRegister {
	return &RandomRegister{rng: rand.New(rand.NewSource(seed))}
}

// Name returns the config value that selects this strategy
func (r *RandomRegister) Name() string { return "random" }

// Register ignores the features and draws one of vocalTypes; safe for
// concurrent use
func (r *RandomRegister) Register(_ *extractors.FeatureVector, vocalTypes []string) string {
	if len(vocalTypes) == 0 {
		return noneLabel
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return vocalTypes[r.rng.Intn(len(vocalTypes))]
}
