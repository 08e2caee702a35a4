package editor

import (
	"fmt"
	"strings"
)

// ViewMode selects which editor panes are visible. It affects layout only.
type ViewMode string

const (
	ViewPreview ViewMode = "preview"
	ViewCode    ViewMode = "code"
	ViewSplit   ViewMode = "split"
)

// ParseViewMode accepts the mode names case-insensitively; empty means split.
func ParseViewMode(s string) (ViewMode, error) {
	switch mode := ViewMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ViewSplit, nil
	case ViewPreview, ViewCode, ViewSplit:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown view mode %q", s)
	}
}

// ShowsCode reports whether the code pane is visible.
func (m ViewMode) ShowsCode() bool { return m == ViewCode || m == ViewSplit }

// ShowsPreview reports whether the preview pane is visible.
func (m ViewMode) ShowsPreview() bool { return m == ViewPreview || m == ViewSplit }
