package errors

import (
	"errors"
	"testing"
)

func TestConfigErrorUnwrap(t *testing.T) {
	cause := stdErr("not a directory")
	err := NewConfigError("project_root", "/nope", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find underlying cause")
	}
	if err.Error() == "" {
		t.Fatalf("expected non-empty error message")
	}
}

func TestMultiErrorFiltersNil(t *testing.T) {
	err := NewMultiError([]error{nil, stdErr("a"), nil, stdErr("b")})
	if len(err.Errors) != 2 {
		t.Fatalf("expected 2 errors after filtering nils, got %d", len(err.Errors))
	}
}

func TestMultiErrorAllNilReturnsNil(t *testing.T) {
	if err := NewMultiError([]error{nil, nil}); err != nil {
		t.Fatalf("expected nil MultiError when all inputs are nil, got %v", err)
	}
}

func stdErr(msg string) error { return errors.New(msg) }
