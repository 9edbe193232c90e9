package setup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/printbed/klippctl/internal/component"
	"github.com/printbed/klippctl/internal/diffview"
	"github.com/printbed/klippctl/internal/fsutil"
	"github.com/printbed/klippctl/internal/messages"
	"github.com/printbed/klippctl/internal/releases"
)

// webuiConfigName is the per-instance configuration file shipped inside the
// web interface archives. Updates must not silently discard local edits.
const webuiConfigName = "config.json"

// deployRelease fetches the newest release of d and replaces d.Dir with the
// archive contents. With preserveConfig set, a differing local config file
// is previewed and the user chooses which copy survives. Returns the
// deployed tag.
func (e *Engine) deployRelease(ctx context.Context, d component.Descriptor, results *[]Result, preserveConfig bool) (string, error) {
	release, err := e.latestRelease(ctx, d.ReleaseRepo)
	if err != nil {
		wrapped := fmt.Errorf(messages.SetupReleaseLookupFmt, d.DisplayName, err)
		e.fail(results, messages.SetupStepDownload, wrapped, releaseRecommendation(err))
		return "", wrapped
	}

	url, ok := release.AssetURL(d.AssetName)
	if !ok {
		wrapped := fmt.Errorf(messages.SetupNoDownloadURLFmt, release.TagName)
		e.fail(results, messages.SetupStepDownload, wrapped, "")
		return "", wrapped
	}

	tmpDir, err := os.MkdirTemp("", "klippctl-*")
	if err != nil {
		e.fail(results, messages.SetupStepDownload, err, "")
		return "", err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	archive := filepath.Join(tmpDir, d.AssetName)
	if err := e.download(ctx, url, archive); err != nil {
		wrapped := fmt.Errorf(messages.SetupDownloadFailedFmt, url, err)
		e.fail(results, messages.SetupStepDownload, wrapped, messages.SetupRecommendCheckLog)
		return "", wrapped
	}
	e.ok(results, messages.SetupStepDownload, release.TagName)

	unpacked := filepath.Join(tmpDir, "unpacked")
	if err := os.MkdirAll(unpacked, 0o755); err != nil {
		e.fail(results, messages.SetupStepDeploy, err, "")
		return "", err
	}
	if err := extractZip(archive, unpacked); err != nil {
		e.fail(results, messages.SetupStepDeploy, err, "")
		return "", err
	}

	if preserveConfig {
		if err := e.resolveLocalConfig(d, unpacked); err != nil {
			e.fail(results, messages.SetupStepDeploy, err, "")
			return "", err
		}
	}

	if err := os.RemoveAll(d.Dir); err != nil {
		wrapped := fmt.Errorf(messages.SetupDeployFailedFmt, d.DisplayName, err)
		e.fail(results, messages.SetupStepDeploy, wrapped, messages.SetupRecommendReinstall)
		return "", wrapped
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		e.fail(results, messages.SetupStepDeploy, err, "")
		return "", err
	}
	if err := fsutil.CopyTree(unpacked, d.Dir); err != nil {
		wrapped := fmt.Errorf(messages.SetupDeployFailedFmt, d.DisplayName, err)
		e.fail(results, messages.SetupStepDeploy, wrapped, messages.SetupRecommendReinstall)
		return "", wrapped
	}

	if err := fsutil.WriteFileAtomic(d.VersionFile, []byte(release.TagName+"\n"), 0o644); err != nil {
		e.fail(results, messages.SetupStepDeploy, err, "")
		return "", err
	}

	return release.TagName, nil
}

// resolveLocalConfig decides whether the existing config file survives the
// deployment. The incoming copy inside unpacked is overwritten with the
// local one when the user keeps it.
func (e *Engine) resolveLocalConfig(d component.Descriptor, unpacked string) error {
	localPath := filepath.Join(d.Dir, webuiConfigName)
	local, err := os.ReadFile(localPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	incomingPath := filepath.Join(unpacked, webuiConfigName)
	incoming, err := os.ReadFile(incomingPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// The archive ships no config; the local copy survives untouched.
			return fsutil.CopyTree(localPath, incomingPath)
		}
		return err
	}
	if bytes.Equal(local, incoming) {
		return nil
	}

	preview := diffview.File(webuiConfigName, local, incoming, e.diffMaxLines)
	_, _ = fmt.Fprintf(e.out, messages.SetupConfigDiffersFmt+"\n", webuiConfigName)
	_, _ = fmt.Fprint(e.out, preview.UnifiedDiff)

	keep, err := e.confirm(messages.SetupKeepConfigPrompt, true)
	if err != nil {
		return err
	}
	if keep {
		_, _ = fmt.Fprintf(e.out, messages.SetupKeptConfigFmt, webuiConfigName)
		return fsutil.CopyTree(localPath, incomingPath)
	}
	_, _ = fmt.Fprintf(e.out, messages.SetupOverwroteConfigFmt, webuiConfigName)
	return nil
}

func releaseRecommendation(err error) string {
	if releases.IsRateLimitError(err) {
		return messages.SetupRecommendRetryLater
	}
	return messages.SetupRecommendCheckLog
}
