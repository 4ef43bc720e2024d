package dashboard

import (
	"github.com/RyanBlaney/sonido-insight/algorithms/common"
)

// Pill CSS classes
const (
	PillDefault    = "pill"
	PillInstrument = "pill pill-instrument"
	PillUseCase    = "pill pill-usecase"
	PillQuality    = "pill pill-quality"
)

// Pill is a rounded tag
type Pill struct {
	Text  string
	Class string
}

// ProgressBar is a filled bar with evenly spaced labels underneath
type ProgressBar struct {
	Value  float64 // 0..1
	Labels []string
}

// NewProgressBar clamps value into [0, 1]
func NewProgressBar(value float64, labels ...string) ProgressBar {
	return ProgressBar{
		Value:  common.Clamp(value, 0, 1),
		Labels: labels,
	}
}

// Percent returns the fill width in percent
func (p ProgressBar) Percent() float64 {
	return common.Round(p.Value*100, 1)
}

// EmotionBar is a negative-to-positive gradient with a marker at Value
type EmotionBar struct {
	Value         float64
	MarkerPercent float64
}

// NewEmotionBar clamps value into [0, 1] and positions the marker
func NewEmotionBar(value float64) EmotionBar {
	v := common.Clamp(value, 0, 1)
	return EmotionBar{
		Value:         v,
		MarkerPercent: common.Round(v*100, 1),
	}
}

// Metric is a titled scalar in the vocal and technical sections
type Metric struct {
	Title string
	Value string
}
