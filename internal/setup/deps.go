package setup

// aptDeps lists the packages installed before each component's first setup.
var aptDeps = map[string][]string{
	"klipper": {
		"git", "python3-virtualenv", "python3-dev", "libffi-dev", "build-essential",
	},
	"moonraker": {
		"python3-virtualenv", "python3-dev", "libopenjp2-7", "libsodium-dev",
		"zlib1g-dev", "libjpeg-dev", "packagekit", "curl",
	},
	"klipperscreen": {
		"git", "python3-virtualenv",
	},
	"mainsail": {"nginx"},
	"fluidd":   {"nginx"},
	"crowsnest": {
		"git", "make",
	},
}

// requirementsFile maps a component to the pip requirements file inside its
// checkout. Components without an entry carry no Python environment.
var requirementsFile = map[string]string{
	"klipper":       "scripts/klippy-requirements.txt",
	"moonraker":     "scripts/moonraker-requirements.txt",
	"klipperscreen": "scripts/KlipperScreen-requirements.txt",
}
