package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizforge/quiz-service/internal/events"
	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/scoring"
	"github.com/quizforge/quiz-service/internal/utils"
)

// AttemptService owns the attempt state machine: NoAttempt ->
// InProgress -> Submitted (terminal). It is the only component that
// mutates attempt and answer state.
type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest, userID uint) (*models.Attempt, error)
	RecordAnswer(ctx context.Context, attemptID uint, req *RecordAnswerRequest, userID uint) error
	Submit(ctx context.Context, attemptID uint, userID uint) (*models.Attempt, error)

	GetByID(ctx context.Context, id uint, userID uint, isAdmin bool) (*AttemptDetail, error)
	ListMine(ctx context.Context, userID uint) ([]*models.Attempt, error)
	ListAll(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, error)
}

// AdminListLimit caps the admin attempt listing page size.
const AdminListLimit = 200

type StartAttemptRequest struct {
	QuizID uint   `json:"quiz_id" validate:"required"`
	Code   string `json:"code"`
}

// RecordAnswerRequest carries exactly one payload shape; which one is
// not checked against the question type here, the scorer resolves
// mismatches to zero.
type RecordAnswerRequest struct {
	QuestionID   uint                          `json:"question_id" validate:"required"`
	ChoiceIDs    []uint                        `json:"choice_ids"`
	TextResponse *string                       `json:"text_response"`
	MatchPairs   []repositories.MatchPairInput `json:"match_pairs" validate:"omitempty,dive"`
}

type AttemptDetail struct {
	*models.Attempt
	Answers    []models.Answer          `json:"answers"`
	MatchPairs []models.AnswerMatchPair `json:"answer_match_pairs,omitempty"`
}

type attemptService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewAttemptService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) AttemptService {
	return &attemptService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// Start opens an attempt on a quiz. Repeated calls while an attempt is
// in progress return that attempt unchanged, so page reloads and client
// retries never fork a second one.
func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest, userID uint) (*models.Attempt, error) {
	s.logger.Info("Starting quiz attempt", "quiz_id", req.QuizID, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quiz, err := s.repo.Quiz().GetByID(ctx, req.QuizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	if !quiz.IsActive {
		return nil, ErrQuizInactive
	}

	if err := VerifyQuizAccess(quiz, req.Code); err != nil {
		return nil, err
	}

	// Idempotent restart: an unsubmitted attempt wins over creating one.
	existing, err := s.repo.Attempt().GetActive(ctx, userID, req.QuizID)
	if err == nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", existing.ID, "user_id", userID)
		return existing, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}

	// maxScore is frozen here; later point edits never touch it.
	maxScore, err := s.repo.Question().SumPoints(ctx, req.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum question points: %w", err)
	}

	attempt := &models.Attempt{
		UserID:    userID,
		QuizID:    req.QuizID,
		MaxScore:  maxScore,
		StartedAt: time.Now(),
	}

	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		// The partial unique index arbitrates racing starts: the loser
		// resolves to the attempt that won.
		if repositories.IsDuplicateError(err) {
			winner, getErr := s.repo.Attempt().GetActive(ctx, userID, req.QuizID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to resolve concurrent start: %w", getErr)
			}
			s.logger.Info("Concurrent start resolved to existing attempt",
				"attempt_id", winner.ID, "user_id", userID)
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"quiz_id", req.QuizID,
		"user_id", userID,
		"max_score", maxScore)

	s.publishEvent(events.NewAttemptStartedEvent(attempt))

	return attempt, nil
}

// RecordAnswer replaces whatever was previously recorded for the
// question with the new payload. Last write wins; no history is kept.
func (s *attemptService) RecordAnswer(ctx context.Context, attemptID uint, req *RecordAnswerRequest, userID uint) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	attempt, err := s.repo.Attempt().GetOwnedInProgress(ctx, attemptID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAttemptNotFound
		}
		return fmt.Errorf("failed to get attempt: %w", err)
	}

	if _, err := s.repo.Question().GetByQuizAndID(ctx, attempt.QuizID, req.QuestionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	payload := repositories.AnswerPayload{
		ChoiceIDs:    req.ChoiceIDs,
		TextResponse: req.TextResponse,
		MatchPairs:   req.MatchPairs,
	}

	if err := s.repo.Attempt().ReplaceAnswer(ctx, attemptID, req.QuestionID, payload); err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}

	s.logger.Info("Answer recorded",
		"attempt_id", attemptID,
		"question_id", req.QuestionID,
		"user_id", userID)

	return nil
}

// Submit finalizes the attempt: scores every recorded answer and sets
// submittedAt. The guarded update is the sole transition into the
// terminal state; a second submit observes zero affected rows.
func (s *attemptService) Submit(ctx context.Context, attemptID uint, userID uint) (*models.Attempt, error) {
	s.logger.Info("Submitting attempt", "attempt_id", attemptID, "user_id", userID)

	attempt, err := s.repo.Attempt().GetOwnedInProgress(ctx, attemptID, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	questions, err := s.repo.Question().GetForScoring(ctx, attempt.QuizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for scoring: %w", err)
	}

	answers, err := s.repo.Attempt().GetAnswers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	pairs, err := s.repo.Attempt().GetAnswerMatchPairs(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer match pairs: %w", err)
	}

	score := scoring.Score(questions, answers, pairs)
	submittedAt := time.Now()

	rows, err := s.repo.Attempt().Finalize(ctx, attemptID, score, submittedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize attempt: %w", err)
	}
	if rows == 0 {
		// Lost the race to a concurrent submit; the stored score stands.
		return nil, ErrAttemptAlreadySubmitted
	}

	attempt.Score = &score
	attempt.SubmittedAt = &submittedAt

	s.logger.Info("Attempt submitted",
		"attempt_id", attemptID,
		"user_id", userID,
		"score", score,
		"max_score", attempt.MaxScore)

	s.publishEvent(events.NewAttemptSubmittedEvent(attempt))

	return attempt, nil
}

func (s *attemptService) GetByID(ctx context.Context, id uint, userID uint, isAdmin bool) (*AttemptDetail, error) {
	var attempt *models.Attempt
	var err error

	if isAdmin {
		attempt, err = s.repo.Attempt().GetByID(ctx, id)
	} else {
		attempt, err = s.repo.Attempt().GetOwned(ctx, id, userID)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	answers, err := s.repo.Attempt().GetAnswers(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	pairs, err := s.repo.Attempt().GetAnswerMatchPairs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load answer match pairs: %w", err)
	}

	return &AttemptDetail{Attempt: attempt, Answers: answers, MatchPairs: pairs}, nil
}

func (s *attemptService) ListMine(ctx context.Context, userID uint) ([]*models.Attempt, error) {
	attempts, err := s.repo.Attempt().ListSubmittedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	for _, a := range attempts {
		a.Quiz.Sanitize()
	}
	return attempts, nil
}

// ListAll serves the admin view: finalized attempts only, newest first,
// capped at AdminListLimit per page.
func (s *attemptService) ListAll(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	if filters.Limit <= 0 || filters.Limit > AdminListLimit {
		filters.Limit = AdminListLimit
	}

	attempts, err := s.repo.Attempt().ListSubmitted(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	for _, a := range attempts {
		a.Quiz.Sanitize()
	}
	return attempts, nil
}

func (s *attemptService) publishEvent(event *events.AttemptEvent) {
	if s.publisher == nil {
		return
	}
	// Event delivery is best effort; a broker outage must not fail the
	// request that produced the event.
	go func() {
		if err := s.publisher.PublishAttemptEvent(context.Background(), event); err != nil {
			s.logger.Error("Failed to publish attempt event",
				"event_type", event.Type,
				"error", err)
		}
	}()
}
