package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	plain := New(CodeDataError, "bad rows")
	if plain.Error() != "bad rows" {
		t.Errorf("unexpected message %q", plain.Error())
	}

	cause := fmt.Errorf("file truncated")
	wrapped := FitFailed("model fit failed", cause)
	if wrapped.Error() != "model fit failed: file truncated" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
}

func TestWrapPreservesCode(t *testing.T) {
	inner := InvalidInput("bad predictor")
	outer := Wrap(inner, "selection failed")

	if GetCode(outer) != CodeInvalidInput {
		t.Errorf("expected %s, got %s", CodeInvalidInput, GetCode(outer))
	}
	if !stderrors.Is(outer, inner) {
		t.Error("wrapped error must unwrap to its cause")
	}
}

func TestWrapForeignError(t *testing.T) {
	outer := Wrap(fmt.Errorf("disk full"), "write failed")
	if GetCode(outer) != CodeInternalError {
		t.Errorf("expected %s, got %s", CodeInternalError, GetCode(outer))
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("wrapping nil must stay nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("wrapping nil must stay nil")
	}
}

func TestGetCodeUnknown(t *testing.T) {
	if GetCode(fmt.Errorf("plain")) != "UNKNOWN" {
		t.Error("foreign errors report UNKNOWN")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("foreign errors are not AppErrors")
	}
}
