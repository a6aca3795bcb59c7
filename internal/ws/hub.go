package ws

import (
	"log"
	"sync"
)

// Bus relays room broadcasts between server instances. Local delivery
// never depends on it; a nil bus simply scopes rooms to one process.
type Bus interface {
	Publish(roomID string, data []byte) error
}

// Broadcast is one outbound message for a room. Sender is excluded from
// delivery; remote marks messages that arrived over the bus and must
// not be published back onto it.
type Broadcast struct {
	RoomID string
	Data   []byte
	Sender *Client
	remote bool
}

type joinRequest struct {
	client *Client
	roomID string
}

// Hub tracks which clients are members of which room and fans
// broadcasts out to them. Membership is ephemeral: it lives only as
// long as the connections do, and a client belongs to at most one room
// at a time (joining a new room leaves the old one).
type Hub struct {
	// Room members by room id
	rooms map[string]map[*Client]bool

	// Current room per registered client; "" for clients that have not
	// joined a room yet
	current map[*Client]string

	register chan *Client

	join       chan joinRequest
	unregister chan *Client
	broadcast  chan *Broadcast

	bus Bus

	mu sync.RWMutex
}

func NewHub(bus Bus) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		current:    make(map[*Client]string),
		register:   make(chan *Client),
		join:       make(chan joinRequest),
		unregister: make(chan *Client),
		broadcast:  make(chan *Broadcast, 64),
		bus:        bus,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case req := <-h.join:
			h.handleJoin(req.client, req.roomID)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case message := <-h.broadcast:
			h.handleBroadcast(message)
		}
	}
}

// Register adds a connected client with no room membership yet.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Join moves client into roomID. Joining the room the client is already
// in is a no-op.
func (h *Hub) Join(client *Client, roomID string) {
	h.join <- joinRequest{client: client, roomID: roomID}
}

// Unregister drops the client from its room and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues data for every member of roomID except sender.
func (h *Hub) Broadcast(roomID string, data []byte, sender *Client) {
	h.broadcast <- &Broadcast{RoomID: roomID, Data: data, Sender: sender}
}

// InjectRemote delivers a broadcast that originated on another instance
// to local room members.
func (h *Hub) InjectRemote(roomID string, data []byte) {
	h.broadcast <- &Broadcast{RoomID: roomID, Data: data, remote: true}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.current[client]; !ok {
		h.current[client] = ""
	}
}

func (h *Hub) handleJoin(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	old, registered := h.current[client]
	if registered && old == roomID {
		return
	}

	if old != "" {
		if clients, ok := h.rooms[old]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, old)
			}
		}
	}

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	h.current[client] = roomID
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	roomID, ok := h.current[client]
	if !ok {
		return
	}
	delete(h.current, client)
	close(client.send)

	if roomID == "" {
		return
	}
	if clients, ok := h.rooms[roomID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) handleBroadcast(message *Broadcast) {
	h.mu.RLock()
	if clients, ok := h.rooms[message.RoomID]; ok {
		for client := range clients {
			if client == message.Sender {
				continue
			}
			select {
			case client.send <- message.Data:
			default:
				// Slow viewer; state broadcasts are droppable, and the
				// next full-state update supersedes this one anyway.
			}
		}
	}
	h.mu.RUnlock()

	if h.bus != nil && !message.remote {
		if err := h.bus.Publish(message.RoomID, message.Data); err != nil {
			log.Printf("Bus publish for room %s failed: %v", message.RoomID, err)
		}
	}
}

func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.current)
}

// GetActiveRooms returns the member count per room with live connections.
func (h *Hub) GetActiveRooms() map[string]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	active := make(map[string]int, len(h.rooms))
	for roomID, clients := range h.rooms {
		active[roomID] = len(clients)
	}
	return active
}
