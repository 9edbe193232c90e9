package messages

// Install, update, and remove flow messages.
const (
	SetupStepAptDeps       = "System packages"
	SetupStepClone         = "Repository"
	SetupStepVirtualenv    = "Python environment"
	SetupStepServices      = "Services"
	SetupStepDownload      = "Release archive"
	SetupStepDeploy        = "Web interface files"
	SetupStepBackup        = "Backup"
	SetupStepStop          = "Stop services"
	SetupStepStart         = "Start services"
	SetupStepPull          = "Pull changes"
	SetupStepSystemUpgrade = "System upgrade"

	SetupStatusOKLabel     = "[OK]  "
	SetupStatusWarnLabel   = "[WARN]"
	SetupStatusFailLabel   = "[FAIL]"
	SetupResultLineFmt     = "%s %-20s %s\n"
	SetupRecommendationFmt = "       -> %s\n"

	SetupInstallingFmt = "Installing %s...\n"
	SetupUpdatingFmt   = "Updating %s...\n"
	SetupRemovingFmt   = "Removing %s...\n"

	SetupAlreadyInstalledFmt = "%s is already installed."
	SetupNotInstalledFmt     = "%s is not installed."
	SetupIncompleteFmt       = "%s install looks incomplete; reinstall to repair it."
	SetupDoneFmt             = "%s: done.\n"

	SetupCloneFailedFmt        = "clone %s: %s: %w"
	SetupPullFailedFmt         = "pull %s: %s: %w"
	SetupResetFailedFmt        = "reset %s to %s: %s: %w"
	SetupVenvCreateFailedFmt   = "create virtualenv %s: %s: %w"
	SetupPipInstallFailedFmt   = "install python requirements for %s: %s: %w"
	SetupMakeInstallFailedFmt  = "run make install in %s: %s: %w"
	SetupServiceWriteFailedFmt = "write service file %s: %w"
	SetupRemovePathFailedFmt   = "remove %s: %w"
	SetupDownloadFailedFmt     = "download %s: %w"
	SetupUnpackFailedFmt       = "unpack %s: %w"
	SetupEntryEscapesFmt       = "archive entry %q escapes the target directory"
	SetupNoDownloadURLFmt      = "release %s has no downloadable archive"
	SetupReleaseLookupFmt      = "look up latest %s release: %w"
	SetupBackupFailedFmt       = "backup before update failed: %w"
	SetupDeployFailedFmt       = "deploy %s files: %w"
	SetupCannotManageSystem    = "system packages are managed with `klippctl update system`"

	SetupConfigDiffersFmt    = "%s differs from the packaged default:"
	SetupKeepConfigPrompt    = "Keep the existing file?"
	SetupOverwroteConfigFmt  = "Replaced %s (previous copy saved to backup).\n"
	SetupKeptConfigFmt       = "Kept existing %s.\n"
	SetupRecommendReinstall  = "Run `klippctl install` to repair the installation."
	SetupRecommendCheckLog   = "See ~/.klippctl/klippctl.log for the full command output."
	SetupRecommendRetryLater = "Upstream may be rate limiting; try again in a few minutes."

	SetupRollbackFmt       = "Update of %s failed; rolling back to %s.\n"
	SetupRollbackFailedFmt = "rollback of %s to %s failed: %w"
)
