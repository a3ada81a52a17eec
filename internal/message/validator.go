package message

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	// MaxContentBytes caps the stored message size.
	MaxContentBytes = 4096
	// MaxContentChars caps the visible character count.
	MaxContentChars = 2000
)

var (
	// ErrEmptyContent is returned when the content is empty after trimming.
	ErrEmptyContent = errors.New("message: empty content")

	// ErrContentTooLong is returned when the content exceeds the byte or
	// character limit.
	ErrContentTooLong = errors.New("message: content too long")

	// ErrInvalidUTF8 is returned when the content is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("message: content is not valid UTF-8")
)

// ValidateContent checks that message content meets storage requirements and
// returns the trimmed form that should be persisted.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if len(trimmed) > MaxContentBytes {
		return "", ErrContentTooLong
	}
	if utf8.RuneCountInString(trimmed) > MaxContentChars {
		return "", ErrContentTooLong
	}
	if !utf8.ValidString(trimmed) {
		return "", ErrInvalidUTF8
	}
	return trimmed, nil
}
