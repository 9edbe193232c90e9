package messages

// Backup messages.
const (
	BackupCreatingFmt   = "Backing up %s...\n"
	BackupCreatedFmt    = "Backup written to %s\n"
	BackupNothingToDo   = "Nothing to back up: no known directories exist."
	BackupCreateDirFmt  = "create backup directory %s: %w"
	BackupCopyFailedFmt = "copy %s to %s: %w"
	BackupSourceStatFmt = "stat backup source %s: %w"
)
