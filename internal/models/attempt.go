package models

import "time"

// Attempt is one student's timed take of a quiz.
//
// The partial unique index keeps at most one unsubmitted attempt per
// (user, quiz) pair; racing Start calls serialize through it and the
// loser resolves to the surviving row.
type Attempt struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"not null;index;uniqueIndex:idx_attempts_active,where:submitted_at IS NULL"`
	QuizID uint `json:"quiz_id" gorm:"not null;index;uniqueIndex:idx_attempts_active,where:submitted_at IS NULL"`

	// MaxScore is the sum of question points at start time, frozen for
	// the life of the attempt regardless of later question edits.
	MaxScore int `json:"max_score" gorm:"not null"`

	// Score stays nil until submission.
	Score *int `json:"score"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt *time.Time `json:"submitted_at" gorm:"index"` // nil == in progress

	// Relations
	User    User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Quiz    Quiz     `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Answers []Answer `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) IsSubmitted() bool {
	return a.SubmittedAt != nil
}

// Answer holds exactly one payload shape: a choice reference or a free
// text response. Matching submissions live in AnswerMatchPair rows
// instead. Recording replaces all prior rows for (attempt, question).
type Answer struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index:idx_answers_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index:idx_answers_attempt_question"`

	ChoiceID     *uint   `json:"choice_id"`
	TextResponse *string `json:"text_response" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`

	Choice *Choice `json:"choice,omitempty" gorm:"foreignKey:ChoiceID"`
}

func (Answer) TableName() string {
	return "answers"
}

type AnswerMatchPair struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;index:idx_answer_pairs_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index:idx_answer_pairs_attempt_question"`
	PromptID   uint `json:"prompt_id" gorm:"not null"`
	AnswerID   uint `json:"answer_id" gorm:"not null"`
}

func (AnswerMatchPair) TableName() string {
	return "answer_match_pairs"
}
