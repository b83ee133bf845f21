package questionnaire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Answer is the list of option indices selected for one question.
// Single-choice questions take exactly one index.
type Answer []int

// Single is a convenience constructor for a single-choice answer
func Single(idx int) Answer {
	return Answer{idx}
}

// Multi is a convenience constructor for a multi-select answer
func Multi(idx ...int) Answer {
	if idx == nil {
		return Answer{}
	}
	return Answer(idx)
}

// UnmarshalJSON accepts a bare index, an array of indices or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*a = nil
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var idx []int
		if err := json.Unmarshal(trimmed, &idx); err != nil {
			return fmt.Errorf("answer must be a list of option indices: %w", err)
		}
		if idx == nil {
			idx = []int{}
		}
		*a = Answer(idx)
		return nil
	}

	var idx int
	if err := json.Unmarshal(trimmed, &idx); err != nil {
		return fmt.Errorf("answer must be an option index: %w", err)
	}
	*a = Answer{idx}
	return nil
}

// AnswerSet maps question ids to the user's selections
type AnswerSet map[QuestionID]Answer
