package services

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxLetterTextRunes bounds template and letter bodies
const MaxLetterTextRunes = 50000

var markupDetector = bluemonday.StrictPolicy()

// ContainsMarkup reports whether s holds HTML elements or comments. Plain text, including
// apostrophes, ampersands and a bare "<", round-trips through the strict policy unchanged.
func ContainsMarkup(s string) bool {
	normalized := strings.ReplaceAll(strings.ReplaceAll(s, "\r\n", "\n"), "\r", "\n")
	return html.UnescapeString(markupDetector.Sanitize(normalized)) != normalized
}

// ValidatePlainText checks a letter or template body. The text itself is stored untouched;
// escaping happens where it is embedded into HTML.
func ValidatePlainText(field, s string) error {
	if problem := plainTextProblem(field, s); problem != "" {
		return fmt.Errorf("%w: %s", ErrValidation, problem)
	}
	return nil
}

func plainTextProblem(field, s string) string {
	switch {
	case strings.TrimSpace(s) == "":
		return field + " is required"
	case !utf8.ValidString(s):
		return field + " is not valid UTF-8"
	case utf8.RuneCountInString(s) > MaxLetterTextRunes:
		return fmt.Sprintf("%s exceeds %d characters", field, MaxLetterTextRunes)
	case ContainsMarkup(s):
		return field + " must be plain text"
	}
	return ""
}
