package questionnaire

import (
	"fmt"
	"strings"
)

// ValidationError lists the questions that are unanswered or carry invalid selections
type ValidationError struct {
	Invalid []QuestionID
}

func (e *ValidationError) Error() string {
	ids := make([]string, len(e.Invalid))
	for i, id := range e.Invalid {
		ids[i] = string(id)
	}
	return fmt.Sprintf("questionnaire incomplete: %s", strings.Join(ids, ", "))
}

// Validate returns the ids of questions whose answer is missing, null, an empty
// multi-selection, a single-choice answer without exactly one selection, or an
// out-of-range index. The result follows question order and is empty iff the set is complete.
func Validate(answers AnswerSet) []QuestionID {
	invalid := make([]QuestionID, 0)
	for _, q := range questions {
		if !answerValid(q, answers[q.ID]) {
			invalid = append(invalid, q.ID)
		}
	}
	return invalid
}

func answerValid(q Question, a Answer) bool {
	if len(a) == 0 {
		return false
	}
	if !q.MultiSelect && len(a) != 1 {
		return false
	}
	for _, idx := range a {
		if idx < 0 || idx >= len(q.Points) {
			return false
		}
	}
	return true
}
