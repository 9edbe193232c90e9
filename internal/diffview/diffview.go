// Package diffview renders unified diff previews for configuration files
// that an update would replace, so the user can decide whether to keep
// their local copy before anything is overwritten.
package diffview

import (
	"fmt"
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

const (
	// DefaultMaxLines is the default maximum number of diff lines shown per file.
	DefaultMaxLines = 40
	// lineCapFlagName is the CLI flag name used to raise per-file diff line caps.
	lineCapFlagName = "--diff-lines"
)

// Preview is a user-facing diff between the local copy of a file and the
// copy shipped by a new release.
type Preview struct {
	Path        string
	UnifiedDiff string
	Truncated   bool
}

// Equal reports whether the preview found no differences at all.
func (p Preview) Equal() bool {
	return p.UnifiedDiff == ""
}

func normalizeMaxLines(value int) int {
	if value <= 0 {
		return DefaultMaxLines
	}
	return value
}

// File builds a preview for a single file, labeling the sides as the
// current and incoming copies.
func File(path string, local, incoming []byte, maxLines int) Preview {
	rendered, truncated := Render(
		path+" (current)",
		path+" (incoming)",
		string(local),
		string(incoming),
		maxLines,
	)
	return Preview{
		Path:        path,
		UnifiedDiff: rendered,
		Truncated:   truncated,
	}
}

// Render produces a unified diff capped at maxLines lines. When the cap is
// hit, a trailing notice explains how to see the full diff.
func Render(fromName string, toName string, fromContent string, toContent string, maxLines int) (string, bool) {
	limit := normalizeMaxLines(maxLines)
	diff := udiff.Unified(fromName, toName, fromContent, toContent)
	lines := splitLines(diff)
	if len(lines) <= limit {
		return ensureTrailingNewline(strings.Join(lines, "\n")), false
	}
	truncated := lines[:limit]
	truncated = append(
		truncated,
		fmt.Sprintf("... (truncated to %d lines; rerun with %s <n> to see more)", limit, lineCapFlagName),
	)
	return ensureTrailingNewline(strings.Join(truncated, "\n")), true
}

func splitLines(content string) []string {
	trimmed := strings.TrimRight(content, "\n")
	if trimmed == "" {
		return []string{}
	}
	return strings.Split(trimmed, "\n")
}

func ensureTrailingNewline(content string) string {
	if content == "" {
		return ""
	}
	if strings.HasSuffix(content, "\n") {
		return content
	}
	return content + "\n"
}
