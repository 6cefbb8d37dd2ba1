package scoring

import (
	"testing"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func uintPtr(v uint) *uint { return &v }

func strPtr(s string) *string { return &s }

func choiceAnswer(questionID, choiceID uint) models.Answer {
	return models.Answer{QuestionID: questionID, ChoiceID: uintPtr(choiceID)}
}

func textAnswer(questionID uint, text string) models.Answer {
	return models.Answer{QuestionID: questionID, TextResponse: strPtr(text)}
}

func singleChoiceQuestion() models.Question {
	return models.Question{
		ID:     1,
		Type:   models.SingleChoice,
		Points: 5,
		Choices: []models.Choice{
			{ID: 11, QuestionID: 1, IsCorrect: true},
			{ID: 12, QuestionID: 1},
			{ID: 13, QuestionID: 1},
		},
	}
}

func TestScore_SingleChoice(t *testing.T) {
	q := singleChoiceQuestion()

	tests := []struct {
		name    string
		answers []models.Answer
		want    int
	}{
		{"correct choice", []models.Answer{choiceAnswer(1, 11)}, 5},
		{"wrong choice", []models.Answer{choiceAnswer(1, 12)}, 0},
		{"two choices selected", []models.Answer{choiceAnswer(1, 11), choiceAnswer(1, 12)}, 0},
		{"no answer", nil, 0},
		{"text payload against choice question", []models.Answer{textAnswer(1, "eleven")}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score([]models.Question{q}, tt.answers, nil))
		})
	}
}

func TestScore_SingleChoiceNoCorrectChoiceDefined(t *testing.T) {
	q := singleChoiceQuestion()
	for i := range q.Choices {
		q.Choices[i].IsCorrect = false
	}

	got := Score([]models.Question{q}, []models.Answer{choiceAnswer(1, 11)}, nil)
	assert.Zero(t, got)
}

func TestScore_MultipleChoice(t *testing.T) {
	q := models.Question{
		ID:     2,
		Type:   models.MultipleChoice,
		Points: 4,
		Choices: []models.Choice{
			{ID: 21, QuestionID: 2, IsCorrect: true},
			{ID: 22, QuestionID: 2},
			{ID: 23, QuestionID: 2, IsCorrect: true},
		},
	}

	tests := []struct {
		name    string
		answers []models.Answer
		want    int
	}{
		{"exact set in different order", []models.Answer{choiceAnswer(2, 23), choiceAnswer(2, 21)}, 4},
		{"subset", []models.Answer{choiceAnswer(2, 21)}, 0},
		{"superset", []models.Answer{choiceAnswer(2, 21), choiceAnswer(2, 22), choiceAnswer(2, 23)}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score([]models.Question{q}, tt.answers, nil))
		})
	}
}

func TestScore_ShortAnswer(t *testing.T) {
	q := models.Question{
		ID:     3,
		Type:   models.ShortAnswer,
		Points: 2,
		TextKeys: []models.TextKey{
			{ID: 31, QuestionID: 3, Value: "Paris"},
		},
	}

	tests := []struct {
		name string
		text string
		want int
	}{
		{"case-insensitive match", "paris", 2},
		{"surrounding whitespace trimmed", "  Paris  ", 2},
		{"misspelled", "parris", 0},
		{"empty", "", 0},
		{"whitespace only", "   ", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score([]models.Question{q}, []models.Answer{textAnswer(3, tt.text)}, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_ShortAnswerCaseSensitiveKey(t *testing.T) {
	q := models.Question{
		ID:     3,
		Type:   models.FillInBlank,
		Points: 2,
		TextKeys: []models.TextKey{
			{ID: 31, QuestionID: 3, Value: "pH", CaseSensitive: true},
		},
	}

	assert.Equal(t, 2, Score([]models.Question{q}, []models.Answer{textAnswer(3, "pH")}, nil))
	assert.Zero(t, Score([]models.Question{q}, []models.Answer{textAnswer(3, "ph")}, nil))
}

func TestScore_ShortAnswerMatchesAnyKey(t *testing.T) {
	q := models.Question{
		ID:     3,
		Type:   models.ShortAnswer,
		Points: 3,
		TextKeys: []models.TextKey{
			{ID: 31, QuestionID: 3, Value: "USA"},
			{ID: 32, QuestionID: 3, Value: "United States"},
		},
	}

	assert.Equal(t, 3, Score([]models.Question{q}, []models.Answer{textAnswer(3, "united states")}, nil))
}

func TestScore_Matching(t *testing.T) {
	q := models.Question{
		ID:     4,
		Type:   models.Matching,
		Points: 6,
		MatchPairs: []models.MatchPair{
			{ID: 41, QuestionID: 4},
			{ID: 42, QuestionID: 4},
		},
	}

	tests := []struct {
		name  string
		pairs []models.AnswerMatchPair
		want  int
	}{
		{
			"all pairs self-mapped",
			[]models.AnswerMatchPair{
				{QuestionID: 4, PromptID: 41, AnswerID: 41},
				{QuestionID: 4, PromptID: 42, AnswerID: 42},
			},
			6,
		},
		{
			"one pair omitted",
			[]models.AnswerMatchPair{
				{QuestionID: 4, PromptID: 41, AnswerID: 41},
			},
			0,
		},
		{
			"pairs swapped",
			[]models.AnswerMatchPair{
				{QuestionID: 4, PromptID: 41, AnswerID: 42},
				{QuestionID: 4, PromptID: 42, AnswerID: 41},
			},
			0,
		},
		{
			"unknown prompt reference",
			[]models.AnswerMatchPair{
				{QuestionID: 4, PromptID: 99, AnswerID: 99},
				{QuestionID: 4, PromptID: 42, AnswerID: 42},
			},
			0,
		},
		{"nothing submitted", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score([]models.Question{q}, nil, tt.pairs))
		})
	}
}

func TestScore_EssayNeverScores(t *testing.T) {
	q := models.Question{ID: 5, Type: models.Essay, Points: 10}

	got := Score([]models.Question{q}, []models.Answer{textAnswer(5, "a thoughtful response")}, nil)
	assert.Zero(t, got)
}

func TestScore_UnknownTypeScoresZero(t *testing.T) {
	q := models.Question{ID: 6, Type: "ORDERING", Points: 10}

	got := Score([]models.Question{q}, []models.Answer{choiceAnswer(6, 1)}, nil)
	assert.Zero(t, got)
}

func TestScore_MixedQuiz(t *testing.T) {
	questions := []models.Question{
		singleChoiceQuestion(), // 5 points, choice 11 correct
		{
			ID:     3,
			Type:   models.ShortAnswer,
			Points: 2,
			TextKeys: []models.TextKey{
				{ID: 31, QuestionID: 3, Value: "Paris"},
			},
		},
		{ID: 5, Type: models.Essay, Points: 10},
	}

	answers := []models.Answer{
		choiceAnswer(1, 11),
		textAnswer(3, "PARIS"),
		textAnswer(5, "essay text"),
	}

	assert.Equal(t, 7, Score(questions, answers, nil))
}

func TestMaxScore(t *testing.T) {
	questions := []models.Question{
		{Points: 5},
		{Points: 2},
		{Points: 10},
	}
	assert.Equal(t, 17, MaxScore(questions))
	assert.Zero(t, MaxScore(nil))
}
