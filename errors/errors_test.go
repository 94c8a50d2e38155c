package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeStructural, "writer has no input")
	if err.Code != ErrCodeStructural {
		t.Errorf("expected code %s, got %s", ErrCodeStructural, err.Code)
	}
	if err.Message != "writer has no input" {
		t.Errorf("expected message 'writer has no input', got %q", err.Message)
	}
}

func TestAppError_Newf_Formats(t *testing.T) {
	err := Newf(ErrCodeCardinality, "expected %d inputs, got %d", 1, 3)
	if err.Message != "expected 1 inputs, got 3" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestAppError_DuplicateTag_Success(t *testing.T) {
	err := DuplicateTag("A")
	if err.Code != ErrCodeTag {
		t.Errorf("expected TAG, got %s", err.Code)
	}
	if err.Details["tag"] != "A" {
		t.Errorf("expected tag=A, got %v", err.Details["tag"])
	}
}

func TestAppError_UndefinedTag_Success(t *testing.T) {
	err := UndefinedTag("Z")
	if err.Code != ErrCodeTag {
		t.Errorf("expected TAG, got %s", err.Code)
	}
	if !strings.Contains(err.Message, `"Z"`) {
		t.Errorf("expected message to name the tag, got %q", err.Message)
	}
}

func TestAppError_UnknownDriver_Success(t *testing.T) {
	err := UnknownDriver("filters.nope")
	if err.Code != ErrCodeDriverResolution {
		t.Errorf("expected DRIVER_RESOLUTION, got %s", err.Code)
	}
	if err.Details["driver"] != "filters.nope" {
		t.Errorf("expected driver detail, got %v", err.Details["driver"])
	}
}

func TestAppError_InvalidOption_EmptyName(t *testing.T) {
	err := InvalidOption("", "bad")
	if _, ok := err.Details["option"]; ok {
		t.Error("expected no option detail for empty name")
	}
}

func TestAppError_StageFailed_Cause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := StageFailed("writers.text", cause)
	if err.Code != ErrCodeStageFailed {
		t.Errorf("expected STAGE_FAILED, got %s", err.Code)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := Cardinality("extra inputs").WithDetails(map[string]any{"index": 2})
	err.WithDetails(map[string]any{"line": 7})
	if err.Details["index"] != 2 || err.Details["line"] != 7 {
		t.Errorf("expected merged details, got %v", err.Details)
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeTag}
	err.WithDetail("tag", "x")
	if err.Details["tag"] != "x" {
		t.Errorf("expected detail to be set, got %v", err.Details)
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := DocumentSyntax("root element is not a pipeline")
	want := "DOCUMENT_SYNTAX: root element is not a pipeline"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestHasCode_Joined(t *testing.T) {
	joined := Join(DuplicateTag("A"), Cardinality("missing input"))
	if !HasCode(joined, ErrCodeTag) {
		t.Error("expected TAG in joined error")
	}
	if !HasCode(joined, ErrCodeCardinality) {
		t.Error("expected CARDINALITY in joined error")
	}
	if HasCode(joined, ErrCodeStorage) {
		t.Error("did not expect STORAGE")
	}
	if CodeOf(joined) != ErrCodeTag {
		t.Errorf("expected first code TAG, got %s", CodeOf(joined))
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("reading pipeline: %w", UndefinedTag("Z"))
	if !HasCode(err, ErrCodeTag) {
		t.Error("expected TAG through fmt wrapping")
	}
	var app *AppError
	if !stderrors.As(err, &app) {
		t.Fatal("expected errors.As to find AppError")
	}
}

func TestHasCode_Nil(t *testing.T) {
	if HasCode(nil, ErrCodeTag) {
		t.Error("nil error has no code")
	}
	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Error("plain error has no code")
	}
}

func TestAll_Order(t *testing.T) {
	joined := Join(DuplicateTag("A"), StageFailed("s", Storage("write", nil)))
	all := All(joined)
	if len(all) != 3 {
		t.Fatalf("expected 3 app errors, got %d", len(all))
	}
	if all[0].Code != ErrCodeTag || all[1].Code != ErrCodeStageFailed || all[2].Code != ErrCodeStorage {
		t.Errorf("unexpected order: %s %s %s", all[0].Code, all[1].Code, all[2].Code)
	}
}

func TestIsParseCode(t *testing.T) {
	if !IsParseCode(ErrCodeTag) {
		t.Error("TAG is a parse-phase code")
	}
	if IsParseCode(ErrCodeStageFailed) {
		t.Error("STAGE_FAILED is an execution-phase code")
	}
}
