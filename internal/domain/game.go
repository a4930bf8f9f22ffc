package domain

import "path/filepath"

// ExecutableName is the file whose presence identifies a game installation
const ExecutableName = "NieRAutomata.exe"

// DefaultRequiredFiles are the files that must exist in the game directory
// before mods can be installed (the game itself plus the Special K loader).
var DefaultRequiredFiles = []string{ExecutableName, "d3d11.dll"}

// DefaultGamePath returns the Steam library location of the game under home
func DefaultGamePath(home string) string {
	return filepath.Join(home, ".local", "share", "Steam", "steamapps", "common", "NieRAutomata")
}

// SteamAppID identifies the game in Steam library manifests
const SteamAppID = "524220"
