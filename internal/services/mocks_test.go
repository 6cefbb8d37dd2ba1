package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// ===== MOCK REPOSITORIES =====

type MockRepository struct {
	UserRepo     *MockUserRepository
	QuizRepo     *MockQuizRepository
	QuestionRepo *MockQuestionRepository
	AttemptRepo  *MockAttemptRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		UserRepo:     &MockUserRepository{},
		QuizRepo:     &MockQuizRepository{},
		QuestionRepo: &MockQuestionRepository{},
		AttemptRepo:  &MockAttemptRepository{},
	}
}

func (m *MockRepository) User() repositories.UserRepository         { return m.UserRepo }
func (m *MockRepository) Quiz() repositories.QuizRepository         { return m.QuizRepo }
func (m *MockRepository) Question() repositories.QuestionRepository { return m.QuestionRepo }
func (m *MockRepository) Attempt() repositories.AttemptRepository   { return m.AttemptRepo }

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) GetByID(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Quiz, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) List(ctx context.Context, filters repositories.QuizFilters) ([]*models.Quiz, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Quiz), args.Error(1)
}

func (m *MockQuizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	args := m.Called(ctx, quiz)
	return args.Error(0)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByQuizAndID(ctx context.Context, quizID, questionID uint) (*models.Question, error) {
	args := m.Called(ctx, quizID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) NextOrder(ctx context.Context, quizID uint) (int, error) {
	args := m.Called(ctx, quizID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuestionRepository) GetForScoring(ctx context.Context, quizID uint) ([]models.Question, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockQuestionRepository) SumPoints(ctx context.Context, quizID uint) (int, error) {
	args := m.Called(ctx, quizID)
	return args.Int(0), args.Error(1)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetActive(ctx context.Context, userID, quizID uint) (*models.Attempt, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetOwnedInProgress(ctx context.Context, id, userID uint) (*models.Attempt, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Attempt, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ReplaceAnswer(ctx context.Context, attemptID, questionID uint, payload repositories.AnswerPayload) error {
	args := m.Called(ctx, attemptID, questionID, payload)
	return args.Error(0)
}

func (m *MockAttemptRepository) Finalize(ctx context.Context, attemptID uint, score int, submittedAt time.Time) (int64, error) {
	args := m.Called(ctx, attemptID, score, submittedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) GetAnswers(ctx context.Context, attemptID uint) ([]models.Answer, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Answer), args.Error(1)
}

func (m *MockAttemptRepository) GetAnswerMatchPairs(ctx context.Context, attemptID uint) ([]models.AnswerMatchPair, error) {
	args := m.Called(ctx, attemptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AnswerMatchPair), args.Error(1)
}

func (m *MockAttemptRepository) ListSubmittedByUser(ctx context.Context, userID uint) ([]*models.Attempt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) ListSubmitted(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) AggregateByQuiz(ctx context.Context) ([]repositories.QuizAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.QuizAggregate), args.Error(1)
}

func (m *MockAttemptRepository) AggregateByUser(ctx context.Context) ([]repositories.UserAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.UserAggregate), args.Error(1)
}

func (m *MockAttemptRepository) CountPerDay(ctx context.Context, since time.Time) ([]repositories.DayCount, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repositories.DayCount), args.Error(1)
}

func (m *MockAttemptRepository) StatsForQuiz(ctx context.Context, quizID uint) (*repositories.QuizAttemptStats, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.QuizAttemptStats), args.Error(1)
}

func (m *MockAttemptRepository) RecentForQuiz(ctx context.Context, quizID uint, limit int) ([]*models.Attempt, error) {
	args := m.Called(ctx, quizID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attempt), args.Error(1)
}

// ===== TEST HELPERS =====

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
