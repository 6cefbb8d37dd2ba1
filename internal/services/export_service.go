package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizforge/quiz-service/internal/models"
	"github.com/quizforge/quiz-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService renders finalized attempts of a quiz as an xlsx
// workbook for offline review.
type ExportService interface {
	ExportQuizResults(ctx context.Context, quizID uint) (*ExportFile, error)
}

type ExportFile struct {
	Filename string
	Content  *bytes.Buffer
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var resultColumns = []string{"Student", "Email", "Score", "Max Score", "Percentage", "Started At", "Submitted At"}

func (s *exportService) ExportQuizResults(ctx context.Context, quizID uint) (*ExportFile, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}

	attempts, err := s.repo.Attempt().ListSubmitted(ctx, repositories.AttemptFilters{QuizID: &quizID})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, col := range resultColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, attempt := range attempts {
		values := resultRow(attempt)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	f.SetColWidth(sheet, "A", "B", 28)
	f.SetColWidth(sheet, "C", "E", 12)
	f.SetColWidth(sheet, "F", "G", 20)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Quiz results exported", "quiz_id", quizID, "title", quiz.Title, "attempts", len(attempts))

	return &ExportFile{
		Filename: fmt.Sprintf("quiz-%d-results-%s.xlsx", quizID, time.Now().Format("2006-01-02")),
		Content:  buf,
	}, nil
}

func resultRow(attempt *models.Attempt) []interface{} {
	name, email := "", ""
	if attempt.User.ID != 0 {
		name = attempt.User.Name
		email = attempt.User.Email
	}

	score := 0
	if attempt.Score != nil {
		score = *attempt.Score
	}
	percent := 0.0
	if attempt.MaxScore > 0 {
		percent = float64(score) / float64(attempt.MaxScore) * 100
	}

	submitted := ""
	if attempt.SubmittedAt != nil {
		submitted = attempt.SubmittedAt.Format(time.RFC3339)
	}

	return []interface{}{
		name,
		email,
		score,
		attempt.MaxScore,
		fmt.Sprintf("%.1f%%", percent),
		attempt.StartedAt.Format(time.RFC3339),
		submitted,
	}
}
