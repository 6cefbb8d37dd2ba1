package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/quizforge/quiz-service/internal/models"
)

// EventType represents the attempt lifecycle events published to the
// analytics pipeline.
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
)

// AttemptEvent is the envelope for all attempt events.
type AttemptEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      AttemptPayload `json:"data"`
}

// AttemptPayload is the finalized-attempt projection consumed by the
// analytics aggregator. Consumers never mutate attempts through it.
type AttemptPayload struct {
	AttemptID   uint       `json:"attempt_id"`
	UserID      uint       `json:"user_id"`
	QuizID      uint       `json:"quiz_id"`
	Score       *int       `json:"score,omitempty"`
	MaxScore    int        `json:"max_score"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func NewAttemptStartedEvent(attempt *models.Attempt) *AttemptEvent {
	return newAttemptEvent(EventAttemptStarted, attempt)
}

func NewAttemptSubmittedEvent(attempt *models.Attempt) *AttemptEvent {
	return newAttemptEvent(EventAttemptSubmitted, attempt)
}

func newAttemptEvent(eventType EventType, attempt *models.Attempt) *AttemptEvent {
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "quiz-service",
		Data: AttemptPayload{
			AttemptID:   attempt.ID,
			UserID:      attempt.UserID,
			QuizID:      attempt.QuizID,
			Score:       attempt.Score,
			MaxScore:    attempt.MaxScore,
			StartedAt:   attempt.StartedAt,
			SubmittedAt: attempt.SubmittedAt,
		},
	}
}
