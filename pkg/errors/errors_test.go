package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEngineError(t *testing.T) {
	tests := []struct {
		name       string
		category   ErrorCategory
		code       ErrorCode
		message    string
		cause      error
		expectCode int
	}{
		{
			name:       "file error",
			category:   CategoryFile,
			code:       CodeFileNotFound,
			message:    "file not found",
			cause:      errors.New("no such file"),
			expectCode: 2,
		},
		{
			name:       "parse error",
			category:   CategoryParse,
			code:       CodeInvalidJSON,
			message:    "invalid json",
			cause:      nil,
			expectCode: 3,
		},
		{
			name:       "configuration error",
			category:   CategoryConfiguration,
			code:       CodeInvalidConfig,
			message:    "invalid config",
			cause:      errors.New("missing field"),
			expectCode: 4,
		},
		{
			name:       "storage error",
			category:   CategoryStorage,
			code:       CodeStorageWrite,
			message:    "write failed",
			cause:      errors.New("disk full"),
			expectCode: 6,
		},
		{
			name:       "reconciliation error",
			category:   CategoryReconciliation,
			code:       CodeMergeFailed,
			message:    "merge failed",
			cause:      nil,
			expectCode: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err *EngineError
			if tt.cause != nil {
				err = Wrap(tt.cause, tt.category, tt.code, tt.message)
			} else {
				err = New(tt.category, tt.code, tt.message)
			}

			if err.Category != tt.category {
				t.Errorf("expected category %s, got %s", tt.category, err.Category)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
			if err.GetExitCode() != tt.expectCode {
				t.Errorf("expected exit code %d, got %d", tt.expectCode, err.GetExitCode())
			}
			if err.Error() != tt.message {
				t.Errorf("expected error string %s, got %s", tt.message, err.Error())
			}
			if tt.cause != nil && err.Unwrap() != tt.cause {
				t.Errorf("expected to unwrap to %v, got %v", tt.cause, err.Unwrap())
			}
		})
	}
}

func TestEngineError_WithSuggestion(t *testing.T) {
	err := New(CategoryValidation, CodeInvalidDate, "bad date").
		WithSuggestion("use YYYY-MM-DD")

	if !strings.Contains(err.Error(), "suggestion: use YYYY-MM-DD") {
		t.Errorf("expected suggestion in error string, got %s", err.Error())
	}
}

func TestEngineError_WithContext(t *testing.T) {
	err := New(CategoryStorage, CodeStorageRead, "read failed").
		WithContext("storage_key", "goboHiddenGroups-global")

	if err.Context["storage_key"] != "goboHiddenGroups-global" {
		t.Errorf("expected context value, got %v", err.Context["storage_key"])
	}
}

func TestAsEngineError(t *testing.T) {
	base := New(CategoryParse, CodeInvalidData, "bad record")
	wrapped := fmt.Errorf("outer: %w", base)

	got, ok := AsEngineError(wrapped)
	if !ok {
		t.Fatal("expected to find EngineError in chain")
	}
	if got.Code != CodeInvalidData {
		t.Errorf("expected code %s, got %s", CodeInvalidData, got.Code)
	}

	if _, ok := AsEngineError(errors.New("plain")); ok {
		t.Error("expected no EngineError for plain error")
	}
	if _, ok := AsEngineError(nil); ok {
		t.Error("expected no EngineError for nil")
	}
}

func TestIsCategoryAndIsCode(t *testing.T) {
	err := StorageError(CodeStorageNotReady, "", nil)

	if !IsCategory(err, CategoryStorage) {
		t.Error("expected storage category")
	}
	if IsCategory(err, CategoryParse) {
		t.Error("did not expect parse category")
	}
	if !IsCode(err, CodeStorageNotReady) {
		t.Error("expected storage_not_ready code")
	}
}

func TestConstructors(t *testing.T) {
	t.Run("FileError", func(t *testing.T) {
		err := FileError(CodeFileNotFound, "/tmp/offers.json", errors.New("enoent"))
		if err.Category != CategoryFile {
			t.Errorf("expected file category, got %s", err.Category)
		}
		if err.Context["file_path"] != "/tmp/offers.json" {
			t.Error("expected file_path context")
		}
		if err.Suggestion == "" {
			t.Error("expected suggestion to be set")
		}
	})

	t.Run("ParseError", func(t *testing.T) {
		err := ParseError(CodeInvalidJSON, "offers.json", "unexpected end of input", errors.New("eof"))
		if err.Category != CategoryParse {
			t.Errorf("expected parse category, got %s", err.Category)
		}
		if !strings.Contains(err.Message, "offers.json") {
			t.Error("expected file name in message")
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		err := ValidationError(CodeMissingField, "shipName", "", nil)
		if err.Context["field"] != "shipName" {
			t.Error("expected field context")
		}
	})

	t.Run("InternalError", func(t *testing.T) {
		err := InternalError("unexpected state", nil)
		if err.Code != CodeUnexpectedError {
			t.Errorf("expected unexpected_error code, got %s", err.Code)
		}
	})
}

func TestFormatErrorChain(t *testing.T) {
	inner := errors.New("root cause")
	outer := Wrap(inner, CategoryInternal, CodeUnexpectedError, "wrapper")

	chain := FormatErrorChain(outer)
	if !strings.Contains(chain, "wrapper") || !strings.Contains(chain, "root cause") {
		t.Errorf("expected full chain, got %s", chain)
	}

	if FormatErrorChain(nil) != "" {
		t.Error("expected empty string for nil error")
	}
}
