package errors

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ValidateKey validates a storage key (a session or project name) for
// safety. It rejects keys that could be used for path traversal when a
// file-backed store maps keys to paths.
//
// The validation rules are intentionally conservative:
//   - No empty keys
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidateKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "key cannot be empty")
	}

	if len(key) > 256 {
		return New(ErrCodeInvalidInput, "key too long (max 256 characters)")
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "key contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidInput, "key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateSessionID validates an editor session id issued by the server.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return New(ErrCodeSessionNotFound, "invalid session id: %q", id)
	}
	return nil
}

// maxNoteLength bounds annotation note text.
const maxNoteLength = 2000

// ValidateNote validates the note text attached to an annotation.
// Newlines and tabs are allowed; other control characters are not.
func ValidateNote(note string) error {
	if len(note) > maxNoteLength {
		return New(ErrCodeInvalidInput, "note too long (max %d characters)", maxNoteLength)
	}
	for _, r := range note {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return New(ErrCodeInvalidInput, "note contains invalid control characters")
		}
	}
	return nil
}

var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor validates a hex colour such as "#ff3d7f".
func ValidateColor(c string) error {
	if !colorRegex.MatchString(c) {
		return New(ErrCodeInvalidInput, "invalid colour %q (want #rgb, #rrggbb or #rrggbbaa)", c)
	}
	return nil
}

// ValidateBrowserURL validates the DevTools endpoint of a remote browser.
// An empty URL is valid and means "launch a local browser".
func ValidateBrowserURL(rawURL string) error {
	if rawURL == "" {
		return nil
	}
	for _, scheme := range []string{"ws://", "wss://", "http://", "https://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "browser URL must use ws, wss, http or https scheme")
}
