package view

// Paid accounts unlock background images, portraits, and custom styling.
// The gate strips those fields from updates pushed by sessions without
// the entitlement; everything else passes through untouched.

// GateEncounter returns state as-is for entitled sessions, otherwise
// with the premium-only fields cleared.
func GateEncounter(state EncounterState, entitled bool) EncounterState {
	if entitled {
		return state
	}
	state.BackgroundImageURL = ""
	return state
}

// GateSettings returns settings as-is for entitled sessions, otherwise
// with custom styling removed and the premium display flags forced off.
func GateSettings(settings ViewSettings, entitled bool) ViewSettings {
	if entitled {
		return settings
	}
	defaults := DefaultSettings()
	settings.CustomCSS = ""
	settings.CustomStyles = defaults.CustomStyles
	settings.DisplayPortraits = false
	settings.SplashPortraits = false
	settings.AllowTagSuggestions = false
	return settings
}
