package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"gorm.io/gorm"
)

// Repository bundles the per-aggregate repositories behind one handle.
type Repository interface {
	User() UserRepository
	Quiz() QuizRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id uint) (*models.Quiz, error)
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error)
	List(ctx context.Context, filters QuizFilters) ([]*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id uint) error
}

type QuestionRepository interface {
	// Create persists the question and its type-specific children in one
	// transaction.
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByQuizAndID(ctx context.Context, quizID, questionID uint) (*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	NextOrder(ctx context.Context, quizID uint) (int, error)

	// GetForScoring loads all questions of a quiz with choices, text keys
	// and match pairs preloaded.
	GetForScoring(ctx context.Context, quizID uint) ([]models.Question, error)

	// SumPoints is the maxScore source at attempt start.
	SumPoints(ctx context.Context, quizID uint) (int, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)

	// GetActive returns the single unsubmitted attempt for (user, quiz),
	// or gorm.ErrRecordNotFound.
	GetActive(ctx context.Context, userID, quizID uint) (*models.Attempt, error)

	// GetOwnedInProgress returns the attempt only when it belongs to the
	// user and has not been submitted.
	GetOwnedInProgress(ctx context.Context, id, userID uint) (*models.Attempt, error)
	GetOwned(ctx context.Context, id, userID uint) (*models.Attempt, error)

	// ReplaceAnswer deletes every prior answer row (and answer match pair
	// row) for (attempt, question) and inserts the new payload, all inside
	// one transaction.
	ReplaceAnswer(ctx context.Context, attemptID, questionID uint, payload AnswerPayload) error

	// Finalize sets score and submittedAt iff the attempt is still
	// unsubmitted; returns the number of rows transitioned (0 or 1).
	Finalize(ctx context.Context, attemptID uint, score int, submittedAt time.Time) (int64, error)

	GetAnswers(ctx context.Context, attemptID uint) ([]models.Answer, error)
	GetAnswerMatchPairs(ctx context.Context, attemptID uint) ([]models.AnswerMatchPair, error)

	ListSubmittedByUser(ctx context.Context, userID uint) ([]*models.Attempt, error)
	ListSubmitted(ctx context.Context, filters AttemptFilters) ([]*models.Attempt, error)

	// Analytics projections over finalized attempts only.
	AggregateByQuiz(ctx context.Context) ([]QuizAggregate, error)
	AggregateByUser(ctx context.Context) ([]UserAggregate, error)
	CountPerDay(ctx context.Context, since time.Time) ([]DayCount, error)
	StatsForQuiz(ctx context.Context, quizID uint) (*QuizAttemptStats, error)
	RecentForQuiz(ctx context.Context, quizID uint, limit int) ([]*models.Attempt, error)
}

// ===== FILTERS =====

type QuizFilters struct {
	IncludeInactive bool
	Limit           int
	Offset          int
}

type AttemptFilters struct {
	QuizID *uint
	UserID *uint
	Limit  int
	Offset int
}

// ===== PROJECTION STRUCTS =====

type QuizAggregate struct {
	QuizID      uint   `json:"quiz_id"`
	Title       string `json:"title"`
	Attempts    int    `json:"attempts"`
	SumScore    int    `json:"sum_score"`
	SumMaxScore int    `json:"sum_max_score"`
}

type UserAggregate struct {
	UserID      uint   `json:"user_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Attempts    int    `json:"attempts"`
	SumScore    int    `json:"sum_score"`
	SumMaxScore int    `json:"sum_max_score"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type QuizAttemptStats struct {
	TotalAttempts int `json:"total_attempts"`
	SumScore      int `json:"sum_score"`
	SumMaxScore   int `json:"sum_max_score"`
}

// ===== ANSWER PAYLOAD =====

// AnswerPayload carries exactly one of the three recordable shapes.
// The shape is not validated against the question type here; the
// scoring engine treats mismatches as incorrect.
type AnswerPayload struct {
	ChoiceIDs    []uint
	TextResponse *string
	MatchPairs   []MatchPairInput
}

type MatchPairInput struct {
	PromptID uint `json:"prompt_id" validate:"required"`
	AnswerID uint `json:"answer_id" validate:"required"`
}

// IsEmpty reports whether the payload carries nothing recordable.
func (p AnswerPayload) IsEmpty() bool {
	return len(p.ChoiceIDs) == 0 && p.TextResponse == nil && len(p.MatchPairs) == 0
}

// ===== ERROR HELPERS =====

// IsNotFoundError reports whether err is the store's "no rows" failure.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
// Requires the gorm connection to be opened with TranslateError.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
