// Package markdown renders the GitHub-flavoured text of migrated issues and
// comments: attribution citations, fenced attachments, and body limits.
package markdown

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxBodyBytes is the largest issue or comment body GitHub accepts.
const MaxBodyBytes = 65533

// Source is the name shown in every citation.
const Source = "Lighthouse"

// Accepted timestamp layouts. Lighthouse mostly emits RFC 3339, but older
// exports use the ISO 8601 basic offset form (+0000).
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -0700",
}

// FormatTime renders an ISO 8601 timestamp as RFC 850 in loc. Timestamps
// that cannot be parsed are returned unchanged.
func FormatTime(stamp string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t.In(loc).Format(time.RFC850)
		}
	}
	return stamp
}

// TicketCitation is the header prepended to an imported ticket body.
func TicketCitation(url, creator, created string) string {
	return fmt.Sprintf("*Imported from %s* %s\nReported by **%s** at **%s**\n\n", Source, url, creator, created)
}

// CommentCitation is the header prepended to an imported history entry.
func CommentCitation(user, created string) string {
	return fmt.Sprintf("*Imported from %s*\nComment by **%s** at **%s**\n\n", Source, user, created)
}

// AttachmentCitation is the header prepended to an imported attachment.
func AttachmentCitation(filename, url, created string) string {
	return fmt.Sprintf("*Imported from %s* [%s](%s)\n**%s** created at **%s**\n\n", Source, filename, url, filename, created)
}

// Image renders an inline image that links to the original upload.
func Image(filename, url string) string {
	return fmt.Sprintf("![%s](%s)", filename, url)
}

// CodeBlock wraps contents in a fenced block tagged with language.
func CodeBlock(language, contents string) string {
	return "```" + language + "\n" + contents + "\n```\n"
}

// Truncate returns the longest prefix of s that fits in MaxBodyBytes
// without splitting a UTF-8 sequence.
func Truncate(s string) string {
	if len(s) <= MaxBodyBytes {
		return s
	}
	cut := MaxBodyBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// SnippetBytes bounds response bodies quoted in log messages.
const SnippetBytes = 512

// Snippet shortens a raw API response for log output.
func Snippet(body []byte) string {
	if len(body) > SnippetBytes {
		return string(body[:SnippetBytes]) + "..."
	}
	return string(body)
}

// Body joins a citation and content and enforces the size limit.
func Body(citation, content string) string {
	return Truncate(citation + content)
}

// Lines joins rendered lines, one per line.
func Lines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\n")
	}
	return b.String()
}
