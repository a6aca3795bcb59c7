package view

// Types mirror the JSON the tracker clients already send, so field casing
// matches the wire format rather than Go convention.

// A tag applied to a combatant ("Blessed", "Prone", ...), optionally
// expiring after a number of rounds.
type TagState struct {
	Text              string `json:"Text"`
	DurationRemaining int    `json:"DurationRemaining,omitempty"`
	DurationTiming    string `json:"DurationTiming,omitempty"`
	DurationCombatant string `json:"DurationCombatantId,omitempty"`
}

// One row of the initiative list as shown to viewers.
type CombatantState struct {
	ID                string     `json:"Id"`
	Name              string     `json:"Name"`
	Initiative        int        `json:"Initiative"`
	IsPlayerCharacter bool       `json:"IsPlayerCharacter"`
	HPDisplay         string     `json:"HPDisplay"`
	HPColor           string     `json:"HPColor"`
	Portrait          string     `json:"ImageURL,omitempty"`
	Color             string     `json:"Color,omitempty"`
	Tags              []TagState `json:"Tags"`
}

// The complete live state of one encounter. Every update event carries
// a full replacement value; there is no field-level merging.
type EncounterState struct {
	Name               string           `json:"Name,omitempty"`
	ActiveCombatantID  string           `json:"ActiveCombatantId,omitempty"`
	RoundCounter       int              `json:"RoundCounter,omitempty"`
	BackgroundImageURL string           `json:"BackgroundImageUrl,omitempty"`
	Combatants         []CombatantState `json:"Combatants"`
}

// Color and font overrides for the viewer page.
type CustomStyles struct {
	CombatantBackground string `json:"combatantBackground,omitempty"`
	CombatantText       string `json:"combatantText,omitempty"`
	ActiveCombatant     string `json:"activeCombatantIndicator,omitempty"`
	HeaderBackground    string `json:"headerBackground,omitempty"`
	HeaderText          string `json:"headerText,omitempty"`
	MainBackground      string `json:"mainBackground,omitempty"`
	BackgroundURL       string `json:"backgroundUrl,omitempty"`
	Font                string `json:"font,omitempty"`
}

// Display options for one room's viewer page, replaced wholesale like
// the encounter state.
type ViewSettings struct {
	CustomCSS           string       `json:"CustomCSS"`
	CustomStyles        CustomStyles `json:"CustomStyles"`
	DisplayPortraits    bool         `json:"DisplayPortraits"`
	SplashPortraits     bool         `json:"SplashPortraits"`
	AllowTagSuggestions bool         `json:"AllowTagSuggestions"`
	DisplayRoundCounter bool         `json:"DisplayRoundCounter"`
	DisplayTurnTimer    bool         `json:"DisplayTurnTimer"`
}

// DefaultSettings is the value used for rooms that never received a
// settings update, and the reset target for gated fields.
func DefaultSettings() ViewSettings {
	return ViewSettings{
		CustomCSS:           "",
		CustomStyles:        CustomStyles{},
		DisplayPortraits:    false,
		SplashPortraits:     false,
		AllowTagSuggestions: false,
		DisplayRoundCounter: false,
		DisplayTurnTimer:    false,
	}
}
