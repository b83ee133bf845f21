package profile

import "math"

// Band is the score range of a category. The lower bound is exclusive except
// for the lowest band; the upper bound is inclusive except for the highest band.
type Band struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Range    string   `json:"range"`
}

var bands = []Band{
	{Category: Conservative, Min: 0, Max: 20, Range: "20점 이하"},
	{Category: ModeratelyConservative, Min: 20, Max: 40, Range: "20점 초과~40점 이하"},
	{Category: Moderate, Min: 40, Max: 60, Range: "40점 초과~60점 이하"},
	{Category: ModeratelyAggressive, Min: 60, Max: 80, Range: "60점 초과~80점 이하"},
	{Category: Aggressive, Min: 80, Max: 100, Range: "80점 초과"},
}

// Bands returns the score bands in ascending order
func Bands() []Band {
	out := make([]Band, len(bands))
	for i, b := range bands {
		b.Label = b.Category.Label()
		out[i] = b
	}
	return out
}

// Classify maps a total score to its category. Upper bounds are inclusive:
// 20.0 is 안정형 while 20.01 is 안정추구형. NaN falls into the lowest band.
func Classify(total float64) Category {
	if math.IsNaN(total) {
		return Conservative
	}
	for _, b := range bands[:len(bands)-1] {
		if total <= b.Max {
			return b.Category
		}
	}
	return Aggressive
}
