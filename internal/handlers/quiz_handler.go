package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizforge/quiz-service/internal/services"
	"github.com/quizforge/quiz-service/internal/utils"
)

type QuizHandler struct {
	BaseHandler
	quizService   services.QuizService
	exportService services.ExportService
}

func NewQuizHandler(quizService services.QuizService, exportService services.ExportService, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler:   NewBaseHandler(logger),
		quizService:   quizService,
		exportService: exportService,
	}
}

// CreateQuiz creates a new quiz, optionally with questions inline
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req services.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, quiz)
}

// ListQuizzes lists quizzes; admins can include inactive ones
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	includeInactive := isAdmin(c) && c.Query("include_inactive") == "true"

	quizzes, err := h.quizService.List(c.Request.Context(), includeInactive)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quizzes)
}

// GetQuiz retrieves a quiz by ID. Students never see correct-answer
// data, and access-gated quizzes withhold questions until verified.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	quiz, err := h.quizService.GetByID(c.Request.Context(), id, isAdmin(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// UpdateQuiz applies a partial update to a quiz
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	var req services.UpdateQuizRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	// "access_code": null clears the gate, so key presence matters.
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(body, &keys); err == nil {
		_, req.AccessCodeSet = keys["access_code"]
	}

	quiz, err := h.quizService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// DeleteQuiz removes a quiz and its questions
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.quizService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Quiz deleted"})
}

// VerifyAccess checks the presented access code and, on success,
// returns the quiz with its questions
func (h *QuizHandler) VerifyAccess(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	quiz, err := h.quizService.VerifyAccessCode(c.Request.Context(), id, req.Code, isAdmin(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quiz)
}

// AddQuestion appends a question to a quiz
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.quizService.AddQuestion(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// UpdateQuestion updates a question's text, type, points or order
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	var req services.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	question, err := h.quizService.UpdateQuestion(c.Request.Context(), questionID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// DeleteQuestion removes a question from its quiz
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	questionID := h.parseIDParam(c, "question_id")
	if questionID == 0 {
		return
	}

	if err := h.quizService.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Question deleted"})
}

// GetQuizStats returns submission counts, average score and the most
// recent attempts for a quiz
func (h *QuizHandler) GetQuizStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.quizService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportResults streams the quiz's finalized attempts as an xlsx file
func (h *QuizHandler) ExportResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	file, err := h.exportService.ExportQuizResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+file.Filename)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		file.Content.Bytes())
}
