// Package classify maps numeric values onto display labels using ordered
// thresholds.
package classify

import (
	"math"
	"sort"
)

// Labels used by the built-in rule sets.
const (
	High   = "high"
	Medium = "medium"
	Normal = "normal"
)

// Threshold assigns Label to values at or above Min.
type Threshold struct {
	Min   float64 `yaml:"min"`
	Label string  `yaml:"label"`
}

// Rules is an ordered threshold list. Use New to build one; the zero
// value classifies everything as Normal.
type Rules struct {
	thresholds []Threshold // sorted high to low
	def        string
}

// New builds Rules from thresholds in any order. An empty def means Normal.
func New(def string, thresholds ...Threshold) Rules {
	ts := make([]Threshold, 0, len(thresholds))
	for _, t := range thresholds {
		if math.IsNaN(t.Min) {
			continue
		}
		ts = append(ts, t)
	}
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Min > ts[j].Min })
	if def == "" {
		def = Normal
	}
	return Rules{thresholds: ts, def: def}
}

// Classify returns the label of the highest threshold v meets or
// exceeds, or the default label.
func (r Rules) Classify(v float64) string {
	if !math.IsNaN(v) {
		for _, t := range r.thresholds {
			if v >= t.Min {
				return t.Label
			}
		}
	}
	return r.Default()
}

// Default returns the label for values below every threshold.
func (r Rules) Default() string {
	if r.def == "" {
		return Normal
	}
	return r.def
}

// Thresholds returns a copy of the thresholds, highest first.
func (r Rules) Thresholds() []Threshold {
	out := make([]Threshold, len(r.thresholds))
	copy(out, r.thresholds)
	return out
}

// Classify is the free-function form of Rules.Classify.
func Classify(v float64, r Rules) string {
	return r.Classify(v)
}
