package rank

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Scores holds the fifteen channel x field similarities of one scholar.
type Scores [NumScores]float64

func index(c Channel, f Field) int { return int(c)*NumFields + int(f) }

func (s *Scores) Set(c Channel, f Field, v float64) { s[index(c, f)] = v }

func (s Scores) Get(c Channel, f Field) float64 { return s[index(c, f)] }

// Sum adds every score with equal weight.
func (s Scores) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Weights scales each channel's three scores before summing.
type Weights [NumChannels]float64

// DefaultWeights weighs every channel equally.
func DefaultWeights() Weights {
	var w Weights
	for i := range w {
		w[i] = 1
	}
	return w
}

// Total is the weighted sum of all fifteen scores.
func (w Weights) Total(s Scores) float64 {
	var total float64
	for _, c := range Channels() {
		for _, f := range Fields() {
			total += w[c] * s.Get(c, f)
		}
	}
	return total
}

// WeightsFromMap decodes configured weights keyed by channel name. Channels
// that are not mentioned keep the default of 1.
func WeightsFromMap(raw map[string]any) (Weights, error) {
	w := DefaultWeights()
	if len(raw) == 0 {
		return w, nil
	}

	var decoded map[string]float64
	cfg := &mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return w, err
	}
	if err := decoder.Decode(raw); err != nil {
		return w, fmt.Errorf("decoding channel weights: %w", err)
	}

	var unknown []string
	for name, value := range decoded {
		c, err := ParseChannel(name)
		if err != nil {
			unknown = append(unknown, name)
			continue
		}
		if value < 0 {
			return w, fmt.Errorf("weight for channel %s must not be negative, got %v", c, value)
		}
		w[c] = value
	}
	if len(unknown) > 0 {
		return w, fmt.Errorf("unknown channels in weights: %s", strings.Join(unknown, ", "))
	}

	return w, nil
}
