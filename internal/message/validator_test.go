package message

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateContent_Valid(t *testing.T) {
	got, err := ValidateContent("  Olá! Como você está?  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Olá! Como você está?" {
		t.Errorf("expected trimmed content, got %q", got)
	}
}

func TestValidateContent_Empty(t *testing.T) {
	for _, content := range []string{"", "   ", "\n\t  "} {
		if _, err := ValidateContent(content); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("ValidateContent(%q) = %v, want ErrEmptyContent", content, err)
		}
	}
}

func TestValidateContent_TooManyBytes(t *testing.T) {
	content := strings.Repeat("a", MaxContentBytes+1)
	if _, err := ValidateContent(content); !errors.Is(err, ErrContentTooLong) {
		t.Errorf("expected ErrContentTooLong, got %v", err)
	}
}

func TestValidateContent_TooManyChars(t *testing.T) {
	// Multi-byte runes: stays under the byte limit but over the rune limit.
	content := strings.Repeat("é", MaxContentChars+1)
	if len(content) > MaxContentBytes {
		t.Skip("rune limit unreachable under byte limit with this rune")
	}
	if _, err := ValidateContent(content); !errors.Is(err, ErrContentTooLong) {
		t.Errorf("expected ErrContentTooLong, got %v", err)
	}
}

func TestValidateContent_InvalidUTF8(t *testing.T) {
	if _, err := ValidateContent("ok\xff\xfe"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("expected ErrInvalidUTF8, got %v", err)
	}
}
