// Package editor implements the page editor shell: insertion at the cursor,
// debounced saves and previews, and per-connection editing sessions.
package editor

import (
	"time"
	"unicode/utf8"
)

// HighlightDuration is how long an inserted range stays highlighted.
const HighlightDuration = 3 * time.Second

// Range is a half-open selection measured in runes.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the range selects nothing.
func (r Range) Empty() bool { return r.Start == r.End }

// Highlight marks a range until ExpiresAt.
type Highlight struct {
	Range     Range     `json:"range"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Active reports whether the highlight is still showing at now.
func (h Highlight) Active(now time.Time) bool {
	return now.Before(h.ExpiresAt)
}

// Buffer is the code editor's content.
type Buffer struct {
	content string
	now     func() time.Time
}

// NewBuffer returns a Buffer holding content.
func NewBuffer(content string) *Buffer {
	return &Buffer{content: content, now: time.Now}
}

// String returns the current content.
func (b *Buffer) String() string { return b.content }

// Set replaces the whole content.
func (b *Buffer) Set(content string) { b.content = content }

// InsertAtCursor replaces the selection with text verbatim and returns the
// range now occupied by text together with its highlight. Out-of-range or
// inverted selections are clamped.
func (b *Buffer) InsertAtCursor(sel Range, text string) (Range, Highlight) {
	runes := []rune(b.content)
	start, end := clamp(sel.Start, len(runes)), clamp(sel.End, len(runes))
	if end < start {
		start, end = end, start
	}

	out := make([]rune, 0, len(runes)-(end-start)+utf8.RuneCountInString(text))
	out = append(out, runes[:start]...)
	out = append(out, []rune(text)...)
	out = append(out, runes[end:]...)
	b.content = string(out)

	inserted := Range{Start: start, End: start + utf8.RuneCountInString(text)}
	return inserted, Highlight{Range: inserted, ExpiresAt: b.now().Add(HighlightDuration)}
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
