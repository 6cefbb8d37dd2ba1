package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("title", "is required", "")

	if err.Field != "title" {
		t.Errorf("Expected field to be 'title', got '%s'", err.Field)
	}

	if err.Message != "is required" {
		t.Errorf("Expected message to be 'is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'title': is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("duration", "must be at least 1", nil))
	expected := "validation failed: duration must be at least 1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("points", "must be a number", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("type", "must be a valid question type", "question_type", "TRUE_FALSE")

	if err.Rule != "question_type" {
		t.Errorf("Expected rule to be 'question_type', got '%s'", err.Rule)
	}

	if err.Value != "TRUE_FALSE" {
		t.Errorf("Expected value to be 'TRUE_FALSE', got '%v'", err.Value)
	}
}
