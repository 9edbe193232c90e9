package messages

// Interactive menu strings.
const (
	MenuTitle = "What would you like to do?"

	MenuOptionStatus   = "Check for updates"
	MenuOptionUpdate   = "Update components"
	MenuOptionInstall  = "Install a component"
	MenuOptionRemove   = "Remove a component"
	MenuOptionBackup   = "Create a backup"
	MenuOptionSettings = "Settings"
	MenuOptionQuit     = "Quit"

	MenuUpdateSelectTitle  = "Select the components to update"
	MenuInstallSelectTitle = "Select the component to install"
	MenuRemoveSelectTitle  = "Select the component to remove"
	MenuRemoveConfirmFmt   = "Really remove %s? This deletes its files and services."
	MenuNothingToInstall   = "Every component is already installed."
	MenuNothingToRemove    = "No components are installed."

	MenuSettingsSelectTitle    = "Which setting do you want to change?"
	MenuSettingKlipperRepo     = "Klipper repository URL"
	MenuSettingKlipperBranch   = "Klipper branch"
	MenuSettingMoonrakerRepo   = "Moonraker repository URL"
	MenuSettingMoonrakerBranch = "Moonraker branch"
	MenuSettingBackupToggle    = "Back up before updating"
	MenuSettingSavedFmt        = "Saved %s.\n"

	MenuGoodbye = "Happy printing!"
)
