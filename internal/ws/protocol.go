package ws

import "encoding/json"

// Event names match the socket.io protocol spoken by the existing
// tracker clients. Argument order inside Args is significant and must
// not be rearranged.
const (
	// Inbound
	EventJoin            = "join encounter"
	EventUpdateEncounter = "update encounter"
	EventUpdateSettings  = "update settings"
	EventRequestCustomID = "request custom id"
	EventSuggestDamage   = "suggest damage"
	EventSuggestTag      = "suggest tag"
	EventCombatStats     = "combat stats"

	// Outbound
	EventEncounterUpdated = "encounter updated"
	EventSettingsUpdated  = "settings updated"
	EventCustomIDResult   = "custom id result"
)

// Envelope is one protocol message: an event name plus its positional
// arguments, carried as raw JSON so relay events pass through verbatim.
type Envelope struct {
	Event string            `json:"event"`
	Args  []json.RawMessage `json:"args"`
}

// NewEnvelope marshals an outbound message from typed arguments.
func NewEnvelope(event string, args ...interface{}) ([]byte, error) {
	raw := make([]json.RawMessage, len(args))
	for i, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return nil, err
		}
		raw[i] = data
	}
	return json.Marshal(Envelope{Event: event, Args: raw})
}
