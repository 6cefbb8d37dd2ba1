package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/quizforge/quiz-service/internal/services"
	"github.com/quizforge/quiz-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// StartAttempt opens (or resumes) an attempt on a quiz
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting attempt", "quiz_id", req.QuizID)

	attempt, err := h.attemptService.Start(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

// RecordAnswer stores the answer for one question, replacing any
// earlier answer to the same question
func (h *AttemptHandler) RecordAnswer(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.RecordAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	if err := h.attemptService.RecordAnswer(c.Request.Context(), id, &req, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Answer recorded"})
}

// SubmitAttempt finalizes the attempt and returns its score
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	attempt, err := h.attemptService.Submit(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// GetAttempt returns an attempt with its recorded answers. Students
// only see their own attempts; admins see any.
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	detail, err := h.attemptService.GetByID(c.Request.Context(), id, userID, isAdmin(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// ListMyAttempts lists the caller's finalized attempts
func (h *AttemptHandler) ListMyAttempts(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}

// ListAttempts is the admin listing of finalized attempts with
// optional quiz/user filters
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	filters := repositories.AttemptFilters{}
	if v, err := strconv.ParseUint(c.Query("quiz_id"), 10, 32); err == nil {
		quizID := uint(v)
		filters.QuizID = &quizID
	}
	if v, err := strconv.ParseUint(c.Query("user_id"), 10, 32); err == nil {
		userID := uint(v)
		filters.UserID = &userID
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = v
	}

	attempts, err := h.attemptService.ListAll(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempts)
}
