// Package scoring computes attempt scores from recorded answers.
//
// Everything here is pure: no I/O, no clock, no errors. Ambiguous or
// malformed input always resolves toward "not correct" so a submission
// finishes with some score instead of failing.
package scoring

import (
	"sort"
	"strings"

	"github.com/quizforge/quiz-service/internal/models"
)

// Score awards each question its full point value when its correctness
// predicate holds; there is no partial credit for any type. Questions
// of unknown type and questions whose recorded payload does not match
// their type contribute zero.
func Score(questions []models.Question, answers []models.Answer, pairs []models.AnswerMatchPair) int {
	answersByQuestion := make(map[uint][]models.Answer, len(answers))
	for _, a := range answers {
		answersByQuestion[a.QuestionID] = append(answersByQuestion[a.QuestionID], a)
	}

	pairsByQuestion := make(map[uint][]models.AnswerMatchPair, len(pairs))
	for _, p := range pairs {
		pairsByQuestion[p.QuestionID] = append(pairsByQuestion[p.QuestionID], p)
	}

	total := 0
	for _, q := range questions {
		if isCorrect(q, answersByQuestion[q.ID], pairsByQuestion[q.ID]) {
			total += q.Points
		}
	}
	return total
}

// MaxScore sums the point values of the given questions. The attempt
// lifecycle freezes this at start time.
func MaxScore(questions []models.Question) int {
	total := 0
	for _, q := range questions {
		total += q.Points
	}
	return total
}

func isCorrect(q models.Question, answers []models.Answer, pairs []models.AnswerMatchPair) bool {
	switch q.Type {
	case models.SingleChoice:
		return singleChoiceCorrect(q, answers)
	case models.MultipleChoice:
		return multipleChoiceCorrect(q, answers)
	case models.ShortAnswer, models.FillInBlank:
		return textCorrect(q, answers)
	case models.Matching:
		return matchingCorrect(q, pairs)
	case models.Essay:
		// Manual grading only; never auto-scored.
		return false
	default:
		return false
	}
}

func singleChoiceCorrect(q models.Question, answers []models.Answer) bool {
	if len(answers) != 1 || answers[0].ChoiceID == nil {
		return false
	}

	var correct []uint
	for _, c := range q.Choices {
		if c.IsCorrect {
			correct = append(correct, c.ID)
		}
	}

	return len(correct) == 1 && *answers[0].ChoiceID == correct[0]
}

// multipleChoiceCorrect compares the selected ids against the correct
// ids as sorted sequences. Duplicates are intentionally not collapsed;
// the recording layer's delete-then-insert keeps one row per selection
// under normal operation.
func multipleChoiceCorrect(q models.Question, answers []models.Answer) bool {
	var selected []uint
	for _, a := range answers {
		if a.ChoiceID != nil {
			selected = append(selected, *a.ChoiceID)
		}
	}

	var correct []uint
	for _, c := range q.Choices {
		if c.IsCorrect {
			correct = append(correct, c.ID)
		}
	}

	if len(selected) == 0 || len(selected) != len(correct) {
		return false
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i] < selected[j] })
	sort.Slice(correct, func(i, j int) bool { return correct[i] < correct[j] })

	for i := range selected {
		if selected[i] != correct[i] {
			return false
		}
	}
	return true
}

func textCorrect(q models.Question, answers []models.Answer) bool {
	// Only the first recorded response counts; replacement semantics
	// normally guarantee a single row anyway.
	if len(answers) == 0 || answers[0].TextResponse == nil {
		return false
	}

	text := strings.TrimSpace(*answers[0].TextResponse)
	if text == "" {
		return false
	}

	for _, key := range q.TextKeys {
		if key.CaseSensitive {
			if text == key.Value {
				return true
			}
		} else if strings.EqualFold(text, key.Value) {
			return true
		}
	}
	return false
}

// matchingCorrect requires a perfect, complete mapping: every canonical
// pair answered, every submitted pair self-mapped (answer reference ==
// prompt reference == a canonical pair id). Any omission or swap zeroes
// the whole question.
func matchingCorrect(q models.Question, pairs []models.AnswerMatchPair) bool {
	canonical := make(map[uint]struct{}, len(q.MatchPairs))
	for _, p := range q.MatchPairs {
		canonical[p.ID] = struct{}{}
	}

	if len(pairs) == 0 || len(pairs) != len(canonical) {
		return false
	}

	for _, p := range pairs {
		if _, ok := canonical[p.PromptID]; !ok {
			return false
		}
		if p.AnswerID != p.PromptID {
			return false
		}
	}
	return true
}
