package errors

import (
	"errors"
	"os"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidColor, "invalid hex color %q", "#zz")

	if err.Code != ErrCodeInvalidColor {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidColor)
	}

	if err.Message != `invalid hex color "#zz"` {
		t.Errorf("Message = %v, want %v", err.Message, `invalid hex color "#zz"`)
	}

	expected := `INVALID_COLOR: invalid hex color "#zz"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeIO, cause, "reading theme")

	if err.Code != ErrCodeIO {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeIO)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIOKeepsOSError(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")
	err := IO(statErr, "reading %s", "/definitely/not/here")

	if !Is(err, ErrCodeIO) {
		t.Errorf("Is(err, ErrCodeIO) = false")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("wrapped OS error should still match os.ErrNotExist")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeTimeout, "test"),
			code:     ErrCodeTimeout,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeTimeout, "test"),
			code:     ErrCodeCompileFailed,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeImageEncoding, New(ErrCodeIO, "inner"), "outer"),
			code:     ErrCodeImageEncoding,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeUnknownTheme, "test"),
			expected: ErrCodeUnknownTheme,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{New(ErrCodeIO, "x"), KindIO},
		{New(ErrCodeInvalidColor, "x"), KindValidation},
		{New(ErrCodeUnknownTheme, "x"), KindValidation},
		{New(ErrCodeNoCompiler, "x"), KindValidation},
		{New(ErrCodeInvalidTemplate, "x"), KindValidation},
		{New(ErrCodeCompileFailed, "x"), KindCompileFailed},
		{New(ErrCodeTimeout, "x"), KindTimeout},
		{New(ErrCodeImageEncoding, "x"), KindImageEncoding},
		{errors.New("plain"), KindUnknown},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "with cause",
			err:      Wrap(ErrCodeIO, errors.New("permission denied"), "writing out.doc"),
			expected: "writing out.doc: permission denied",
		},
		{
			name:     "compile output",
			err:      New(ErrCodeCompileFailed, "main.c:1: error"),
			expected: "compile failed:\nmain.c:1: error",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
