package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/quizforge/quiz-service/internal/cache"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// QuizService owns quiz and question authoring plus the student-facing
// catalog reads. Scoring never writes through it; the catalog is
// read-only from the attempt lifecycle's perspective.
type QuizService interface {
	Create(ctx context.Context, req *CreateQuizRequest) (*models.Quiz, error)
	List(ctx context.Context, includeInactive bool) ([]*models.Quiz, error)
	GetByID(ctx context.Context, id uint, includeAnswers bool) (*models.Quiz, error)
	Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error)
	Delete(ctx context.Context, id uint) error

	AddQuestion(ctx context.Context, quizID uint, req *QuestionRequest) (*models.Question, error)
	UpdateQuestion(ctx context.Context, questionID uint, req *QuestionRequest) (*models.Question, error)
	DeleteQuestion(ctx context.Context, questionID uint) error

	VerifyAccessCode(ctx context.Context, id uint, code string, includeAnswers bool) (*models.Quiz, error)
	GetStats(ctx context.Context, quizID uint) (*QuizStats, error)
}

const (
	accessCodeBcryptCost = 10
	quizCacheTTL         = 5 * time.Minute
	recentAttemptsLimit  = 25
)

type CreateQuizRequest struct {
	Title       string            `json:"title" validate:"required,min=1,max=150"`
	Description *string           `json:"description" validate:"omitempty,max=1000"`
	Duration    int               `json:"duration" validate:"omitempty,min=1,max=300"`
	IsActive    *bool             `json:"is_active"`
	AccessCode  *string           `json:"access_code" validate:"omitempty,min=4,max=64"`
	Settings    datatypes.JSON    `json:"settings"`
	Questions   []QuestionRequest `json:"questions" validate:"omitempty,dive"`
}

type UpdateQuizRequest struct {
	Title       *string        `json:"title" validate:"omitempty,min=1,max=150"`
	Description *string        `json:"description" validate:"omitempty,max=1000"`
	Duration    *int           `json:"duration" validate:"omitempty,min=1,max=300"`
	IsActive    *bool          `json:"is_active"`
	Settings    datatypes.JSON `json:"settings"`

	// AccessCodeSet distinguishes "leave the code alone" from "clear it":
	// when true, a nil/empty AccessCode removes the gate.
	AccessCodeSet bool    `json:"-"`
	AccessCode    *string `json:"access_code" validate:"omitempty,max=64"`
}

type QuestionRequest struct {
	Text       string              `json:"text" validate:"required,min=1"`
	Type       models.QuestionType `json:"type" validate:"omitempty,question_type"`
	Points     int                 `json:"points" validate:"omitempty,min=0,max=1000"`
	Order      int                 `json:"order" validate:"omitempty,min=1"`
	Choices    []ChoiceInput       `json:"choices" validate:"omitempty,dive"`
	TextKeys   []TextKeyInput      `json:"text_keys" validate:"omitempty,dive"`
	MatchPairs []MatchPairDef      `json:"match_pairs" validate:"omitempty,dive"`
}

type ChoiceInput struct {
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

type TextKeyInput struct {
	Value         string `json:"value" validate:"required"`
	CaseSensitive bool   `json:"case_sensitive"`
}

type MatchPairDef struct {
	Prompt string `json:"prompt" validate:"required"`
	Answer string `json:"answer" validate:"required"`
}

type QuizStats struct {
	TotalAttempts  int               `json:"total_attempts"`
	AverageScore   float64           `json:"average_score"` // percent, 2 decimals
	RecentAttempts []*models.Attempt `json:"recent_attempts"`
}

type quizService struct {
	repo      repositories.Repository
	cache     cache.CacheService
	logger    *slog.Logger
	validator *utils.Validator
}

func NewQuizService(repo repositories.Repository, cacheService cache.CacheService, logger *slog.Logger, validator *utils.Validator) QuizService {
	return &quizService{
		repo:      repo,
		cache:     cacheService,
		logger:    logger,
		validator: validator,
	}
}

func (s *quizService) Create(ctx context.Context, req *CreateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Duration:    60,
		IsActive:    true,
		Settings:    req.Settings,
	}
	if req.Duration > 0 {
		quiz.Duration = req.Duration
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}

	if req.AccessCode != nil && *req.AccessCode != "" {
		hash, err := hashAccessCode(*req.AccessCode)
		if err != nil {
			return nil, err
		}
		quiz.AccessCodeHash = &hash
	}

	for i, q := range req.Questions {
		question, err := s.buildQuestion(&q, i+1)
		if err != nil {
			return nil, err
		}
		quiz.Questions = append(quiz.Questions, *question)
	}

	if err := s.repo.Quiz().Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz: %w", err)
	}

	s.logger.Info("Quiz created", "quiz_id", quiz.ID, "title", quiz.Title)

	quiz.Sanitize()
	return quiz, nil
}

func (s *quizService) List(ctx context.Context, includeInactive bool) ([]*models.Quiz, error) {
	quizzes, err := s.repo.Quiz().List(ctx, repositories.QuizFilters{IncludeInactive: includeInactive})
	if err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	for _, q := range quizzes {
		q.Sanitize()
	}
	return quizzes, nil
}

// GetByID returns the quiz for display. Access-gated quizzes hide their
// questions until the code has been verified; correct-answer data is
// only included for admin callers.
func (s *quizService) GetByID(ctx context.Context, id uint, includeAnswers bool) (*models.Quiz, error) {
	if !includeAnswers {
		var cached models.Quiz
		if err := s.cache.Get(ctx, quizCacheKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	gated := quiz.AccessCodeHash != nil && *quiz.AccessCodeHash != ""
	quiz.Sanitize()

	if !includeAnswers {
		if gated {
			quiz.Questions = nil
		} else {
			stripAnswerData(quiz)
		}
		if err := s.cache.Set(ctx, quizCacheKey(id), quiz, quizCacheTTL); err != nil {
			s.logger.Warn("Failed to cache quiz", "quiz_id", id, "error", err)
		}
	}

	return quiz, nil
}

func (s *quizService) Update(ctx context.Context, id uint, req *UpdateQuizRequest) (*models.Quiz, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Description != nil {
		quiz.Description = req.Description
	}
	if req.Duration != nil {
		quiz.Duration = *req.Duration
	}
	if req.IsActive != nil {
		quiz.IsActive = *req.IsActive
	}
	if req.Settings != nil {
		quiz.Settings = req.Settings
	}
	if req.AccessCodeSet {
		if req.AccessCode != nil && *req.AccessCode != "" {
			hash, err := hashAccessCode(*req.AccessCode)
			if err != nil {
				return nil, err
			}
			quiz.AccessCodeHash = &hash
		} else {
			quiz.AccessCodeHash = nil
		}
	}

	if err := s.repo.Quiz().Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("failed to update quiz: %w", err)
	}

	s.invalidate(ctx, id)
	s.logger.Info("Quiz updated", "quiz_id", id)

	quiz.Sanitize()
	return quiz, nil
}

func (s *quizService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Quiz().GetByID(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuizNotFound
		}
		return fmt.Errorf("failed to get quiz: %w", err)
	}

	if err := s.repo.Quiz().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	s.invalidate(ctx, id)
	s.logger.Info("Quiz deleted", "quiz_id", id)
	return nil
}

func (s *quizService) AddQuestion(ctx context.Context, quizID uint, req *QuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	order := req.Order
	if order == 0 {
		next, err := s.repo.Question().NextOrder(ctx, quizID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute question order: %w", err)
		}
		order = next
	}

	question, err := s.buildQuestion(req, order)
	if err != nil {
		return nil, err
	}
	question.QuizID = quizID

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.invalidate(ctx, quizID)
	s.logger.Info("Question added", "quiz_id", quizID, "question_id", question.ID, "type", question.Type)

	return s.repo.Question().GetByID(ctx, question.ID)
}

func (s *quizService) UpdateQuestion(ctx context.Context, questionID uint, req *QuestionRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	question.Text = req.Text
	if req.Type != "" {
		question.Type = req.Type
	}
	if req.Points > 0 {
		question.Points = req.Points
	}
	if req.Order > 0 {
		question.Order = req.Order
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.invalidate(ctx, question.QuizID)
	s.logger.Info("Question updated", "question_id", questionID)

	return s.repo.Question().GetByID(ctx, questionID)
}

func (s *quizService) DeleteQuestion(ctx context.Context, questionID uint) error {
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	if err := s.repo.Question().Delete(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.invalidate(ctx, question.QuizID)
	s.logger.Info("Question deleted", "question_id", questionID)
	return nil
}

// VerifyAccessCode runs the access gate and, on success, returns the
// quiz with its questions so the client can render the attempt view.
func (s *quizService) VerifyAccessCode(ctx context.Context, id uint, code string, includeAnswers bool) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().GetByIDWithQuestions(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if err := VerifyQuizAccess(quiz, code); err != nil {
		return nil, err
	}

	quiz.Sanitize()
	if !includeAnswers {
		stripAnswerData(quiz)
	}
	return quiz, nil
}

func (s *quizService) GetStats(ctx context.Context, quizID uint) (*QuizStats, error) {
	if _, err := s.repo.Quiz().GetByID(ctx, quizID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	stats, err := s.repo.Attempt().StatsForQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load quiz stats: %w", err)
	}

	recent, err := s.repo.Attempt().RecentForQuiz(ctx, quizID, recentAttemptsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent attempts: %w", err)
	}

	average := 0.0
	if stats.TotalAttempts > 0 && stats.SumMaxScore > 0 {
		average = float64(stats.SumScore) / float64(stats.SumMaxScore) * 100
		average = math.Round(average*100) / 100
	}

	return &QuizStats{
		TotalAttempts:  stats.TotalAttempts,
		AverageScore:   average,
		RecentAttempts: recent,
	}, nil
}

// ===== HELPERS =====

func (s *quizService) buildQuestion(req *QuestionRequest, order int) (*models.Question, error) {
	question := &models.Question{
		Text:   req.Text,
		Type:   models.SingleChoice,
		Points: 1,
		Order:  order,
	}
	if req.Type != "" {
		question.Type = req.Type
	}
	if req.Points > 0 {
		question.Points = req.Points
	}

	switch question.Type {
	case models.SingleChoice, models.MultipleChoice:
		for i, c := range req.Choices {
			choiceOrder := c.Order
			if choiceOrder == 0 {
				choiceOrder = i + 1
			}
			question.Choices = append(question.Choices, models.Choice{
				Text:      c.Text,
				IsCorrect: c.IsCorrect,
				Order:     choiceOrder,
			})
		}
	case models.ShortAnswer, models.FillInBlank:
		for _, k := range req.TextKeys {
			question.TextKeys = append(question.TextKeys, models.TextKey{
				Value:         k.Value,
				CaseSensitive: k.CaseSensitive,
			})
		}
	case models.Matching:
		for _, p := range req.MatchPairs {
			question.MatchPairs = append(question.MatchPairs, models.MatchPair{
				Prompt: p.Prompt,
				Answer: p.Answer,
			})
		}
	case models.Essay:
		// No child data.
	default:
		return nil, ErrQuestionInvalidType
	}

	return question, nil
}

func (s *quizService) invalidate(ctx context.Context, quizID uint) {
	if err := s.cache.Delete(ctx, quizCacheKey(quizID)); err != nil {
		s.logger.Warn("Failed to invalidate quiz cache", "quiz_id", quizID, "error", err)
	}
}

func quizCacheKey(id uint) string {
	return fmt.Sprintf("quiz:%d", id)
}

func hashAccessCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), accessCodeBcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash access code: %w", err)
	}
	return string(hash), nil
}

// stripAnswerData removes correctness data before a quiz reaches a
// student: correct-choice flags and acceptable text keys. Match pairs
// stay; their prompt/answer text is needed to render the question.
func stripAnswerData(quiz *models.Quiz) {
	for i := range quiz.Questions {
		for j := range quiz.Questions[i].Choices {
			quiz.Questions[i].Choices[j].IsCorrect = false
		}
		quiz.Questions[i].TextKeys = nil
	}
}
