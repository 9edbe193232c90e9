package messages

// Status table strings.
const (
	StatusCheckingFmt = "Checking %d components"

	StatusHeaderComponent = "Component"
	StatusHeaderInstalled = "Installed"
	StatusHeaderLatest    = "Latest"

	// StatusVersionPlaceholder stands in for a version that could not be read.
	StatusVersionPlaceholder = "--------"

	// StatusSystemCurrent, StatusSystemPendingFmt, and StatusSystemUpgrade
	// fill the version cells of the system packages row, which has no
	// version strings of its own.
	StatusSystemCurrent    = "ok"
	StatusSystemPendingFmt = "%d pending"
	StatusSystemUpgrade    = "apt upgrade"

	StatusUpdatesHeaderFmt = "Updates available for: %s\n"
	StatusAllUpToDate      = "All components are up to date."

	StatusGitDescribeFailedFmt  = "git describe in %s failed: %s: %w"
	StatusGitFetchFailedFmt     = "git fetch in %s failed: %s: %w"
	StatusVersionFileMissingFmt = "version file %s: %w"
	StatusOfflineSkipRemote     = "offline mode, skipping remote version checks"
)
