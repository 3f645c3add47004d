package models

// Verbosity levels accepted in response_style.verbosity.
const (
	VerbosityConcise  = "concise"
	VerbosityBalanced = "balanced"
	VerbosityDetailed = "detailed"
)

// ResponseStyle controls how the orchestrator phrases answers.
type ResponseStyle struct {
	Verbosity    string `json:"verbosity" yaml:"verbosity"`
	BulletPoints bool   `json:"bullet_points" yaml:"bullet_points"`
	Timestamps   bool   `json:"timestamps" yaml:"timestamps"`
}

// PreferenceSettings is the structured part of the preferences file.
type PreferenceSettings struct {
	DateFormat     string            `json:"date_format" yaml:"date_format"`
	TimeFormat     string            `json:"time_format" yaml:"time_format"`
	DefaultFolders map[string]string `json:"default_folders" yaml:"default_folders"`
	ResponseStyle  ResponseStyle     `json:"response_style" yaml:"response_style"`
}

// VaultPreferences is the user configuration stored inside the vault.
type VaultPreferences struct {
	Settings PreferenceSettings `json:"settings"`
	Context  string             `json:"context"`
}

// DefaultPreferenceSettings returns the schema defaults.
func DefaultPreferenceSettings() PreferenceSettings {
	return PreferenceSettings{
		DateFormat:     "%Y-%m-%d",
		TimeFormat:     "%H:%M",
		DefaultFolders: map[string]string{},
		ResponseStyle: ResponseStyle{
			Verbosity:    VerbosityBalanced,
			BulletPoints: true,
			Timestamps:   false,
		},
	}
}
