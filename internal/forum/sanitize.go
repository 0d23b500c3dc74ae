package forum

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer normalizes user-supplied text before validation and storage.
// Stored text is what the user typed: nothing is HTML-escaped here. HTML is
// only produced by RenderContent, which sanitizes its own output.
type Sanitizer struct {
	tags *bluemonday.Policy
}

// NewSanitizer creates the sanitizer used for all user-supplied text
func NewSanitizer() *Sanitizer {
	return &Sanitizer{tags: bluemonday.StrictPolicy()}
}

// Title returns the trimmed single-line title with markup tags removed.
// bluemonday escapes the text it keeps, so the result is unescaped again.
func (s *Sanitizer) Title(v string) string {
	v = strings.TrimSpace(stripControl(v, false))
	if !strings.ContainsRune(v, '<') {
		return v
	}
	return strings.TrimSpace(html.UnescapeString(s.tags.Sanitize(v)))
}

// Content returns the trimmed markdown source with line endings normalized
func (s *Sanitizer) Content(v string) string {
	v = strings.ReplaceAll(v, "\r\n", "\n")
	return strings.TrimSpace(stripControl(v, true))
}

// Plain strips all markup, for short labels such as spoilerFor
func (s *Sanitizer) Plain(v string) string {
	return s.Title(v)
}

// stripControl drops control characters; multiline keeps newlines and tabs,
// otherwise they become spaces
func stripControl(v string, multiline bool) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			if multiline {
				return r
			}
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, v)
}

func validateTitle(title string) error {
	if title == "" {
		return invalid("title", "is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return invalid("title", "must be at most %d characters", MaxTitleLength)
	}
	return nil
}

func validateContent(content string) error {
	if content == "" {
		return invalid("content", "is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return invalid("content", "must be at most %d characters", MaxContentLength)
	}
	return nil
}
