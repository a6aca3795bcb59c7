package view

import (
	"reflect"
	"testing"
)

func sampleEncounter() EncounterState {
	return EncounterState{
		Name:               "Goblin Ambush",
		ActiveCombatantID:  "combatant-2",
		RoundCounter:       3,
		BackgroundImageURL: "https://example.com/cave.jpg",
		Combatants: []CombatantState{
			{ID: "combatant-1", Name: "Ranger", Initiative: 18, IsPlayerCharacter: true, HPDisplay: "24/30"},
			{ID: "combatant-2", Name: "Goblin", Initiative: 12, HPDisplay: "Bloodied", Tags: []TagState{{Text: "Prone"}}},
		},
	}
}

func sampleSettings() ViewSettings {
	return ViewSettings{
		CustomCSS:           ".combatant { color: red; }",
		CustomStyles:        CustomStyles{MainBackground: "#222", Font: "serif"},
		DisplayPortraits:    true,
		SplashPortraits:     true,
		AllowTagSuggestions: true,
		DisplayRoundCounter: true,
	}
}

func TestGateEncounterEntitled(t *testing.T) {
	state := sampleEncounter()
	gated := GateEncounter(state, true)

	if !reflect.DeepEqual(gated, state) {
		t.Error("Entitled state should pass through unchanged")
	}
}

func TestGateEncounterStripsBackgroundImage(t *testing.T) {
	gated := GateEncounter(sampleEncounter(), false)

	if gated.BackgroundImageURL != "" {
		t.Errorf("Background image should be cleared, got %q", gated.BackgroundImageURL)
	}

	// Everything else survives.
	if gated.ActiveCombatantID != "combatant-2" {
		t.Error("Active combatant should not be touched")
	}
	if len(gated.Combatants) != 2 {
		t.Errorf("Expected 2 combatants, got %d", len(gated.Combatants))
	}
	if gated.RoundCounter != 3 {
		t.Error("Round counter should not be touched")
	}
}

func TestGateSettingsEntitled(t *testing.T) {
	settings := sampleSettings()
	gated := GateSettings(settings, true)

	if !reflect.DeepEqual(gated, settings) {
		t.Error("Entitled settings should pass through unchanged")
	}
}

func TestGateSettingsResetsPremiumFields(t *testing.T) {
	gated := GateSettings(sampleSettings(), false)

	if gated.CustomCSS != "" {
		t.Errorf("Custom CSS should be cleared, got %q", gated.CustomCSS)
	}
	if !reflect.DeepEqual(gated.CustomStyles, DefaultSettings().CustomStyles) {
		t.Error("Custom styles should be reset to defaults")
	}
	if gated.DisplayPortraits || gated.SplashPortraits || gated.AllowTagSuggestions {
		t.Error("Premium display flags should be forced off")
	}

	// Non-premium flags survive.
	if !gated.DisplayRoundCounter {
		t.Error("Round counter display should not be touched")
	}
}

func TestGateIsDeterministic(t *testing.T) {
	// The restricted fields end up identical no matter what the input held.
	a := GateSettings(sampleSettings(), false)
	b := GateSettings(ViewSettings{CustomCSS: "other", AllowTagSuggestions: true}, false)

	if a.CustomCSS != b.CustomCSS || a.DisplayPortraits != b.DisplayPortraits ||
		a.SplashPortraits != b.SplashPortraits || a.AllowTagSuggestions != b.AllowTagSuggestions {
		t.Error("Gated fields should have fixed values regardless of input")
	}
	if !reflect.DeepEqual(a.CustomStyles, b.CustomStyles) {
		t.Error("Gated styles should have fixed values regardless of input")
	}
}
