package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/asapdigest/content-pipeline/internal/apperr"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("field is required")

	if err.Error() != "field is required" {
		t.Errorf("expected 'field is required', got %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Errorf("expected nil unwrap, got %v", err.Unwrap())
	}
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("decode failed")
	err := apperr.NewValidationWrap("invalid request body", inner)

	if err.Error() != "invalid request body: decode failed" {
		t.Errorf("expected 'invalid request body: decode failed', got %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("expected Unwrap to return inner error")
	}
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("missing content id")

	wrapped := fmt.Errorf("failed to bind: %w", original)
	doubleWrapped := fmt.Errorf("handler error: %w", wrapped)

	var ve *apperr.ValidationError
	if !errors.As(doubleWrapped, &ve) {
		t.Fatal("errors.As should find ValidationError through double wrapping")
	}
	if ve.Message != "missing content id" {
		t.Errorf("expected 'missing content id', got %q", ve.Message)
	}
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	plain := fmt.Errorf("database connection failed")
	wrapped := fmt.Errorf("storage error: %w", plain)

	var ve *apperr.ValidationError
	if errors.As(wrapped, &ve) {
		t.Fatal("errors.As should NOT find ValidationError in plain error chain")
	}
}

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", apperr.NewNotFound("content 7 does not exist"))

	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatal("errors.As should find NotFoundError")
	}
	if nf.Message != "content 7 does not exist" {
		t.Errorf("unexpected message %q", nf.Message)
	}
}
