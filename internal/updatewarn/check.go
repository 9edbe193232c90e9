// Package updatewarn tells the user when a newer klippctl release exists.
// The notice is best effort: it rides on the interactive menu startup and
// never blocks or fails the session.
package updatewarn

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/releases"
)

// Repo is the GitHub repository queried for klippctl's own releases.
const Repo = "printbed/klippctl"

var latestTagFunc = releases.LatestTag

// CheckResult captures the outcome of a release check.
type CheckResult struct {
	Current      string
	Latest       string
	Outdated     bool
	CurrentIsDev bool
}

// Check fetches the latest klippctl release and compares it to
// currentVersion. Dev builds are reported as such and never as outdated.
func Check(ctx context.Context, currentVersion string) (CheckResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	current, isDev, err := normalizeCurrentVersion(currentVersion)
	if err != nil {
		return CheckResult{}, err
	}

	tag, err := latestTagFunc(ctx, Repo)
	if err != nil {
		return CheckResult{}, err
	}
	latest, err := normalize(tag)
	if err != nil {
		return CheckResult{}, fmt.Errorf(messages.SelfUpdateBadLatestTagFmt, tag, err)
	}

	result := CheckResult{
		Current:      current,
		Latest:       latest,
		CurrentIsDev: isDev,
	}
	if !isDev {
		cmp, err := compareSemver(current, latest)
		if err != nil {
			return CheckResult{}, err
		}
		result.Outdated = cmp < 0
	}
	return result, nil
}

// normalizeCurrentVersion validates the running version and reports dev builds.
func normalizeCurrentVersion(raw string) (string, bool, error) {
	if isDev(raw) {
		return "dev", true, nil
	}
	normalized, err := normalize(raw)
	if err != nil {
		return "", false, fmt.Errorf(messages.SelfUpdateBadCurrentVersionFmt, raw, err)
	}
	return normalized, false, nil
}

// isDev reports whether raw identifies an unreleased build. "dev" is the
// default baked into main; "(devel)" is what module builds without ldflags
// report.
func isDev(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return trimmed == "" || trimmed == "dev" || trimmed == "(devel)"
}

// normalize strips a leading v and validates the X.Y.Z form.
func normalize(raw string) (string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	if _, err := parseSemver(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}

// compareSemver returns -1 if a < b, 0 if a == b, and 1 if a > b.
func compareSemver(a string, b string) (int, error) {
	aParts, err := parseSemver(a)
	if err != nil {
		return 0, err
	}
	bParts, err := parseSemver(b)
	if err != nil {
		return 0, err
	}
	for i := 0; i < len(aParts); i++ {
		if aParts[i] < bParts[i] {
			return -1, nil
		}
		if aParts[i] > bParts[i] {
			return 1, nil
		}
	}
	return 0, nil
}

// parseSemver converts an X.Y.Z version into numeric components.
func parseSemver(raw string) ([3]int, error) {
	parts := strings.Split(strings.TrimPrefix(raw, "v"), ".")
	if len(parts) != 3 {
		return [3]int{}, fmt.Errorf(messages.SelfUpdateBadVersionFmt, raw)
	}
	var out [3]int
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return [3]int{}, fmt.Errorf(messages.SelfUpdateBadVersionSegmentFmt, part, err)
		}
		out[i] = value
	}
	return out, nil
}
