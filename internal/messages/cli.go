package messages

// CLI strings for the root command and its subcommands.
const (
	// RootUse is the root command name.
	RootUse   = "klippctl"
	RootShort = "Install, update, and manage the Klipper stack"
	RootLong  = "klippctl installs, updates, removes, and backs up the components of a Klipper-based 3D printer stack (Klipper, Moonraker, Mainsail, Fluidd, KlipperScreen, Crowsnest)."

	// VersionUse is the version command name.
	VersionUse       = "version"
	VersionShort     = "Print the klippctl version"
	VersionOutputFmt = "klippctl %s (commit %s, built %s)\n"
	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// StatusUse is the status command name.
	StatusUse   = "status"
	StatusShort = "Show installed and available versions for every component"
	StatusLong  = "Check each component of the Klipper stack for its locally installed version and the newest version available upstream, and list the updates that can be applied."

	// UpdateUse is the update command name.
	UpdateUse                 = "update [component...]"
	UpdateShort               = "Update components that have a newer version available"
	UpdateFlagAll             = "update every component with an available update"
	UpdateFlagYes             = "skip confirmation prompts"
	UpdateFlagDiffLines       = "maximum number of config diff lines to show"
	UpdateNothingTodo         = "Everything is up to date."
	UpdateNoSelectionHint     = "Name one or more components, or pass --all."
	UpdateAllWithNames        = "cannot combine --all with component names"
	UpdateComponentCurrentFmt = "%s has no update available.\n"

	// InstallUse is the install command name.
	InstallUse             = "install [component...]"
	InstallShort           = "Install components of the Klipper stack"
	InstallNoSelectionHint = "Name one or more components to install."

	// RemoveUse is the remove command name.
	RemoveUse             = "remove [component...]"
	RemoveShort           = "Remove installed components"
	RemoveNoSelectionHint = "Name one or more components to remove."
	RemoveSkippedFmt      = "Skipped removing %s.\n"

	// BackupUse is the backup command name.
	BackupUse   = "backup"
	BackupShort = "Snapshot configuration and web interface files"

	MenuRequiresTerminal = "the interactive menu requires a terminal; run a subcommand instead (try `klippctl status`)"
	UnknownComponentFmt  = "unknown component %q"

	// Self-update notice printed when the menu opens.
	SelfUpdateCheckFailedFmt       = "Warning: could not check for a newer klippctl: %v\n"
	SelfUpdateDevBuildFmt          = "Warning: running a dev build of klippctl; the latest release is %s\n"
	SelfUpdateAvailableFmt         = "Warning: klippctl %s is available (running %s)\n"
	SelfUpdateBadCurrentVersionFmt = "invalid running version %q: %w"
	SelfUpdateBadLatestTagFmt      = "invalid latest release tag %q: %w"
	SelfUpdateBadVersionFmt        = "version %q is not in X.Y.Z form"
	SelfUpdateBadVersionSegmentFmt = "version segment %q: %w"

	PromptYesDefaultFmt   = "%s [Y/n]: "
	PromptNoDefaultFmt    = "%s [y/N]: "
	PromptInvalidResponse = "invalid response %q"
	PromptRetryYesNo      = "Please enter y or n."
)
