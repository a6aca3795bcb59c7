package ws

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/manpreetbhatti/beholder/internal/claim"
	"github.com/manpreetbhatti/beholder/internal/encounterid"
	"github.com/manpreetbhatti/beholder/internal/store"
	"github.com/manpreetbhatti/beholder/internal/view"
)

// Router dispatches inbound connection events: it binds connections to
// rooms, gates state-bearing payloads by entitlement, persists them,
// and relays broadcasts to the other members of the room.
type Router struct {
	hub        *Hub
	store      store.Store
	negotiator *claim.Negotiator
}

func NewRouter(hub *Hub, st store.Store, negotiator *claim.Negotiator) *Router {
	return &Router{
		hub:        hub,
		store:      st,
		negotiator: negotiator,
	}
}

func (rt *Router) Dispatch(c *Client, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("Invalid message from client %s: %v", c.clientID, err)
		return
	}

	var err error
	switch env.Event {
	case EventJoin:
		err = rt.handleJoin(c, env.Args)
	case EventUpdateEncounter:
		err = rt.handleUpdateEncounter(c, env.Args)
	case EventUpdateSettings:
		err = rt.handleUpdateSettings(c, env.Args)
	case EventRequestCustomID:
		err = rt.handleRequestCustomID(c, env.Args)
	case EventSuggestDamage, EventSuggestTag:
		err = rt.handleSuggestion(c, env.Event, env.Args)
	case EventCombatStats:
		err = rt.handleCombatStats(c, env.Args)
	default:
		log.Printf("Unknown event %q from client %s", env.Event, c.clientID)
		return
	}

	if err != nil {
		log.Printf("Event %q from client %s: %v", env.Event, c.clientID, err)
	}
}

// joinEncounter rebinds the connection: session record and transport
// membership move together, so the session's id always names the room
// the connection actually belongs to.
func (rt *Router) joinEncounter(c *Client, id string) {
	c.session.SetEncounterID(id)
	rt.hub.Join(c, id)
}

func (rt *Router) handleJoin(c *Client, args []json.RawMessage) error {
	id, err := stringArg(args, 0)
	if err != nil {
		return err
	}
	if id == "" {
		// Implicit bind with no id yet: mint an opaque one.
		id = encounterid.Generate()
	}

	rt.joinEncounter(c, id)

	// Late joiners get the current view directly so they render without
	// waiting for the controller's next update. Not a broadcast.
	entry, err := rt.store.Get(c.ctx, id)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	if entry == nil {
		return nil
	}
	if entry.State != nil {
		if data, err := NewEnvelope(EventEncounterUpdated, entry.State); err == nil {
			c.reply(data)
		}
	}
	if entry.Settings != nil {
		if data, err := NewEnvelope(EventSettingsUpdated, entry.Settings); err == nil {
			c.reply(data)
		}
	}
	return nil
}

func (rt *Router) handleUpdateEncounter(c *Client, args []json.RawMessage) error {
	id, err := stringArg(args, 0)
	if err != nil || id == "" {
		return fmt.Errorf("missing room id")
	}

	var state view.EncounterState
	if err := decodeArg(args, 1, &state); err != nil {
		return err
	}

	state = view.GateEncounter(state, c.session.Entitled())
	rt.joinEncounter(c, id)

	if err := rt.store.UpdateEncounter(c.ctx, id, state); err != nil {
		// Persistence is degraded, not the live relay: viewers still
		// get the update, it just won't survive a restart.
		log.Printf("Store update for room %s failed: %v", id, err)
	}

	data, err := NewEnvelope(EventEncounterUpdated, state)
	if err != nil {
		return err
	}
	rt.hub.Broadcast(id, data, c)
	return nil
}

func (rt *Router) handleUpdateSettings(c *Client, args []json.RawMessage) error {
	id, err := stringArg(args, 0)
	if err != nil || id == "" {
		return fmt.Errorf("missing room id")
	}

	var settings view.ViewSettings
	if err := decodeArg(args, 1, &settings); err != nil {
		return err
	}

	settings = view.GateSettings(settings, c.session.Entitled())
	rt.joinEncounter(c, id)

	if err := rt.store.UpdateSettings(c.ctx, id, settings); err != nil {
		log.Printf("Store update for room %s failed: %v", id, err)
	}

	data, err := NewEnvelope(EventSettingsUpdated, settings)
	if err != nil {
		return err
	}
	rt.hub.Broadcast(id, data, c)
	return nil
}

func (rt *Router) handleRequestCustomID(c *Client, args []json.RawMessage) error {
	candidate, err := stringArg(args, 0)
	if err != nil {
		return err
	}

	granted := rt.negotiator.Claim(c.ctx, c.session, candidate)
	if granted {
		rt.hub.Join(c, candidate)
	}

	// The reply goes out only once the claim has fully resolved; the
	// requester must never see a speculative grant.
	data, err := NewEnvelope(EventCustomIDResult, granted)
	if err != nil {
		return err
	}
	c.reply(data)
	return nil
}

// Suggestions are pure relays: the payload is passed through verbatim
// (minus the leading room id), with no gating and no store interaction.
// Whether tag suggestions are allowed is enforced by the sending side;
// the server deliberately does not re-check the room's settings here.
func (rt *Router) handleSuggestion(c *Client, event string, args []json.RawMessage) error {
	id, err := stringArg(args, 0)
	if err != nil || id == "" {
		return fmt.Errorf("missing room id")
	}
	if len(args) != 4 {
		return fmt.Errorf("expected 4 args, got %d", len(args))
	}

	rt.joinEncounter(c, id)

	data, err := json.Marshal(Envelope{Event: event, Args: args[1:]})
	if err != nil {
		return err
	}
	rt.hub.Broadcast(id, data, c)
	return nil
}

func (rt *Router) handleCombatStats(c *Client, args []json.RawMessage) error {
	id, err := stringArg(args, 0)
	if err != nil || id == "" {
		return fmt.Errorf("missing room id")
	}
	if len(args) != 2 {
		return fmt.Errorf("expected 2 args, got %d", len(args))
	}

	rt.joinEncounter(c, id)

	data, err := json.Marshal(Envelope{Event: EventCombatStats, Args: args[1:]})
	if err != nil {
		return err
	}
	rt.hub.Broadcast(id, data, c)
	return nil
}

func stringArg(args []json.RawMessage, i int) (string, error) {
	var s string
	if err := decodeArg(args, i, &s); err != nil {
		return "", err
	}
	return s, nil
}

func decodeArg(args []json.RawMessage, i int, v interface{}) error {
	if i >= len(args) {
		return fmt.Errorf("missing argument %d", i)
	}
	if err := json.Unmarshal(args[i], v); err != nil {
		return fmt.Errorf("argument %d: %w", i, err)
	}
	return nil
}
