package messages

// Messages for the process, service, and package layers.
const (
	SystemdListUnitsFailedFmt    = "list service units in %s: %w"
	SystemdActionFailedFmt       = "systemctl %s %s failed: %s: %w"
	SystemdDaemonReloadFailedFmt = "systemctl daemon-reload failed: %s: %w"
	SystemdInstallUnitFailedFmt  = "install service unit %s: %s: %w"
	SystemdRemoveUnitFailedFmt   = "remove service unit %s: %s: %w"

	AptUpdateFailedFmt   = "apt-get update failed: %s: %w"
	AptListFailedFmt     = "apt list --upgradable failed: %s: %w"
	AptInstallFailedFmt  = "apt-get install failed: %s: %w"
	AptUpgradeFailedFmt  = "apt-get upgrade failed: %s: %w"
	AptMissing           = "apt-get is not available on this system"
	DpkgQueryFailedFmt   = "dpkg-query %s failed: %w"
	AptInvalidVersionFmt = "package %s reports version %q: %w"

	GitMissing = "git is not available on this system"

	ReleasesCreateRequestFmt    = "create latest release request: %w"
	ReleasesFetchFmt            = "fetch latest release: %w"
	ReleasesUnexpectedStatusFmt = "fetch latest release: unexpected status %s"
	ReleasesDecodeFmt           = "decode latest release: %w"
	ReleasesMissingTag          = "latest release missing tag_name"
	ReleasesRateLimitedFmt      = "GitHub API rate limit exceeded; resets at %s"
	ReleasesRateLimited         = "GitHub API rate limit exceeded"

	LockAcquireTimeoutFmt = "could not acquire %s within %s; is another klippctl running?"
	LockOpenFailedFmt     = "open lock file %s: %w"

	LogOpenFailedFmt = "open log file %s: %w"
)
