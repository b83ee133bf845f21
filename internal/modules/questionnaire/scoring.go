package questionnaire

import (
	"github.com/shopspring/decimal"
)

// Result is the output of the scoring engine
type Result struct {
	Total     float64                `json:"total"`
	Breakdown map[QuestionID]float64 `json:"breakdown"`
}

// Score computes the propensity score of a complete answer set.
// Single-choice questions contribute the points of the selected option; the
// multi-select experience question contributes the highest points among its selections.
// Totals are summed in decimal so band boundaries such as 20.0 are reached exactly.
func Score(answers AnswerSet) (Result, error) {
	if invalid := Validate(answers); len(invalid) > 0 {
		return Result{}, &ValidationError{Invalid: invalid}
	}

	breakdown := make(map[QuestionID]float64, len(questions))
	total := decimal.Zero
	for _, q := range questions {
		points := questionPoints(q, answers[q.ID])
		breakdown[q.ID] = points.InexactFloat64()
		total = total.Add(points)
	}

	return Result{
		Total:     total.InexactFloat64(),
		Breakdown: breakdown,
	}, nil
}

func questionPoints(q Question, a Answer) decimal.Decimal {
	best := decimal.NewFromFloat(q.Points[a[0]])
	for _, idx := range a[1:] {
		if p := decimal.NewFromFloat(q.Points[idx]); p.GreaterThan(best) {
			best = p
		}
	}
	return best
}
