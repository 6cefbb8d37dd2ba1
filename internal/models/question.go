package models

import "time"

type QuestionType string

const (
	SingleChoice   QuestionType = "SINGLE_CHOICE"
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	ShortAnswer    QuestionType = "SHORT_ANSWER"
	FillInBlank    QuestionType = "FILL_IN_THE_BLANK"
	Matching       QuestionType = "MATCHING"
	Essay          QuestionType = "ESSAY"
)

type Question struct {
	ID     uint         `json:"id" gorm:"primaryKey"`
	QuizID uint         `json:"quiz_id" gorm:"not null;index"`
	Text   string       `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	Type   QuestionType `json:"type" gorm:"not null;size:30;default:SINGLE_CHOICE" validate:"omitempty,question_type"`
	Points int          `json:"points" gorm:"not null;default:1" validate:"min=0,max=1000"`
	Order  int          `json:"order" gorm:"not null;default:1;column:display_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Type-specific children. Exactly one family is populated depending
	// on Type; the scorer tolerates any combination.
	Choices    []Choice    `json:"choices,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	TextKeys   []TextKey   `json:"text_keys,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	MatchPairs []MatchPair `json:"match_pairs,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

type Choice struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"not null;type:text"`
	IsCorrect  bool   `json:"is_correct,omitempty" gorm:"default:false"`
	Order      int    `json:"order" gorm:"not null;default:1;column:display_order"`
}

func (Choice) TableName() string {
	return "choices"
}

type TextKey struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	QuestionID    uint   `json:"question_id" gorm:"not null;index"`
	Value         string `json:"value" gorm:"not null;size:500"`
	CaseSensitive bool   `json:"case_sensitive" gorm:"default:false"`
}

func (TextKey) TableName() string {
	return "question_text_keys"
}

// MatchPair is the canonical prompt/answer association for a Matching
// question. The pair's own id doubles as the correct answer reference:
// a submitted (promptID, answerID) is right only when both equal this id.
type MatchPair struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Prompt     string `json:"prompt" gorm:"not null;size:500"`
	Answer     string `json:"answer" gorm:"not null;size:500"`
}

func (MatchPair) TableName() string {
	return "question_match_pairs"
}
