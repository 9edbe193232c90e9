package messages

// Settings file messages.
const (
	ConfigReadFailedFmt      = "read settings file %s: %w"
	ConfigSyntaxErrorFmt     = "settings file %s has a syntax error: %w"
	ConfigDecodeFailedFmt    = "decode settings file %s: %w"
	ConfigWriteFailedFmt     = "write settings file %s: %w"
	ConfigCreateDirFailedFmt = "create state directory %s: %w"
	ConfigResolveHomeFmt     = "resolve home directory: %w"
	ConfigUnknownKeysFmt     = "settings file %s has unknown keys: %s"
)
