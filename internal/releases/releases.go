// Package releases queries GitHub for the newest published version of the
// web interfaces.
package releases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/printbed/klippctl/internal/messages"
)

var (
	apiBaseURL     = "https://api.github.com"
	httpClient     = &http.Client{Timeout: 10 * time.Second}
	downloadClient = &http.Client{}
	retryDelay     = 250 * time.Millisecond
	sleepFunc      = time.Sleep
)

const fetchRetryCount = 1

// RateLimitError indicates GitHub's API rate limit was hit.
//
// Callers should treat this as a best-effort failure: the affected
// component degrades to an unknown remote version.
type RateLimitError struct {
	StatusCode int
	Status     string
	Remaining  *int
}

func (e *RateLimitError) Error() string {
	remainingText := "unknown"
	if e.Remaining != nil {
		remainingText = fmt.Sprintf("%d", *e.Remaining)
	}
	return fmt.Sprintf("github api rate limit exceeded (%s, remaining=%s)", e.Status, remainingText)
}

// IsRateLimitError reports whether err represents a GitHub rate-limit condition.
func IsRateLimitError(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// Release is the subset of the GitHub release payload klippctl reads.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// AssetURL returns the download URL of the named asset.
func (r Release) AssetURL(name string) (string, bool) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a.BrowserDownloadURL, true
		}
	}
	return "", false
}

// Latest fetches the newest published release of ownerRepo ("owner/name").
// Transient transport errors and 5xx responses are retried once.
func Latest(ctx context.Context, ownerRepo string) (Release, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	url := apiBaseURL + "/repos/" + ownerRepo + "/releases/latest"

	for attempt := 0; attempt <= fetchRetryCount; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Release{}, fmt.Errorf(messages.ReleasesCreateRequestFmt, err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("User-Agent", "klippctl")

		resp, err := httpClient.Do(req)
		if err != nil {
			if shouldRetry(err, 0, attempt) {
				sleepFunc(retryDelay)
				continue
			}
			return Release{}, fmt.Errorf(messages.ReleasesFetchFmt, err)
		}

		if resp.StatusCode != http.StatusOK {
			if rateLimitErr := rateLimitErrorFromResponse(resp); rateLimitErr != nil {
				_ = resp.Body.Close()
				return Release{}, rateLimitErr
			}
			status := resp.StatusCode
			statusText := resp.Status
			_ = resp.Body.Close()
			if shouldRetry(nil, status, attempt) {
				sleepFunc(retryDelay)
				continue
			}
			return Release{}, fmt.Errorf(messages.ReleasesUnexpectedStatusFmt, statusText)
		}

		var release Release
		if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
			_ = resp.Body.Close()
			return Release{}, fmt.Errorf(messages.ReleasesDecodeFmt, err)
		}
		_ = resp.Body.Close()
		release.TagName = strings.TrimSpace(release.TagName)
		if release.TagName == "" {
			return Release{}, errors.New(messages.ReleasesMissingTag)
		}
		return release, nil
	}

	return Release{}, fmt.Errorf(messages.ReleasesFetchFmt, errors.New("retry budget exhausted"))
}

// LatestTag fetches only the newest release tag of ownerRepo.
func LatestTag(ctx context.Context, ownerRepo string) (string, error) {
	release, err := Latest(ctx, ownerRepo)
	if err != nil {
		return "", err
	}
	return release.TagName, nil
}

// Download fetches url into dest. Archives can be large, so the request
// runs on its own client without the short API timeout; cancellation is
// the caller's context.
func Download(ctx context.Context, url string, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf(messages.ReleasesCreateRequestFmt, err)
	}
	req.Header.Set("User-Agent", "klippctl")

	resp, err := downloadClient.Do(req)
	if err != nil {
		return fmt.Errorf(messages.ReleasesFetchFmt, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(messages.ReleasesUnexpectedStatusFmt, resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}

func rateLimitErrorFromResponse(resp *http.Response) *RateLimitError {
	if resp == nil {
		return nil
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	// GitHub returns 403 Forbidden for unauthenticated exhaustion; confirm with rate-limit headers.
	if resp.StatusCode == http.StatusForbidden {
		remainingStr := strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining"))
		if remainingStr == "" {
			return nil
		}
		remaining, err := strconv.Atoi(remainingStr)
		if err != nil {
			return nil //nolint:nilerr // Malformed header means we cannot confirm rate limiting; fall through to generic error.
		}
		if remaining == 0 {
			return &RateLimitError{StatusCode: resp.StatusCode, Status: resp.Status, Remaining: &remaining}
		}
	}
	return nil
}

func shouldRetry(err error, statusCode int, attempt int) bool {
	if attempt >= fetchRetryCount {
		return false
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false
		}
		var netErr net.Error
		return errors.As(err, &netErr)
	}
	return statusCode >= 500 && statusCode <= 599
}
