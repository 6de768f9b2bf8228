// Package sanitize provides text sanitization utilities to prevent XSS attacks.
package sanitize

import (
	"strings"

	"golang.org/x/net/html"
)

// StripHTML removes all markup from s and returns the decoded text content.
// Script and style bodies are dropped entirely.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	tokenizer := html.NewTokenizer(strings.NewReader(s))
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; keep what was read so far
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			if isRawTextTag(tokenizer) {
				skipDepth++
			}
		case html.EndTagToken:
			if isRawTextTag(tokenizer) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

func isRawTextTag(tokenizer *html.Tokenizer) bool {
	name, _ := tokenizer.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

// Text sanitizes a string for safe text storage by stripping HTML.
// Use for user-provided text fields like notes and follow-up results.
func Text(s string) string {
	return StripHTML(s)
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
