package updatewarn

import (
	"context"
	"io"

	"github.com/fatih/color"

	"github.com/printbed/klippctl/internal/config"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/releases"
)

// CheckForUpdate is a seam for tests.
var CheckForUpdate = Check

// WarnIfOutdated emits a notice to stderr when a newer klippctl release is
// available. It never returns an error; a failed check only costs the
// notice. Rate-limited checks stay silent because there is nothing the user
// should do about them.
func WarnIfOutdated(ctx context.Context, currentVersion string, stderr io.Writer) {
	if config.Offline() {
		return
	}
	if stderr == nil {
		stderr = io.Discard
	}

	warnColor := color.New(color.FgYellow)
	result, err := CheckForUpdate(ctx, currentVersion)
	if err != nil {
		if releases.IsRateLimitError(err) {
			return
		}
		_, _ = warnColor.Fprintf(stderr, messages.SelfUpdateCheckFailedFmt, err)
		return
	}
	if result.CurrentIsDev {
		_, _ = warnColor.Fprintf(stderr, messages.SelfUpdateDevBuildFmt, result.Latest)
		return
	}
	if result.Outdated {
		_, _ = warnColor.Fprintf(stderr, messages.SelfUpdateAvailableFmt, result.Latest, result.Current)
	}
}
