package rules

import (
	"time"

	"github.com/ttt3d/ttt3d-server-go/internal/game/board"
)

// EventType indicates the category of a game event.
type EventType string

const (
	// Board events
	EventPiecePlaced   EventType = "PIECE_PLACED"
	EventPieceEvicted  EventType = "PIECE_EVICTED"
	EventPieceCaptured EventType = "PIECE_CAPTURED"
	EventLineScored    EventType = "LINE_SCORED"

	// Card events
	EventCardsOffered EventType = "CARDS_OFFERED"
	EventCardPlayed   EventType = "CARD_PLAYED"

	// Round events
	EventRoundAdvanced EventType = "ROUND_ADVANCED"
	EventGameOver      EventType = "GAME_OVER"
)

// Event describes a state change that already happened.
type Event struct {
	Type      EventType
	GameID    string
	PlayerID  string           // Acting player
	PieceID   string           // Piece the event is about, if any
	TargetID  string           // Second object involved (captured piece, victim player...)
	Round     int              // Round the event happened in
	Amount    int              // Numeric value (score delta, layer, freeze turns...)
	Positions []board.Position // Cells involved, in order
	Data      string           // Free-form detail such as a card name
	Timestamp time.Time
	Metadata  map[string]string
}

// NewEvent creates an event with common fields populated.
func NewEvent(eventType EventType, gameID, playerID string, round int) Event {
	return Event{
		Type:      eventType,
		GameID:    gameID,
		PlayerID:  playerID,
		Round:     round,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// TypedListener defines a callback that reacts to a specific event type.
type TypedListener struct {
	Handle    int
	EventType EventType
	Callback  func(Event)
}

// EventBus is a synchronous publish/subscribe hub with type filtering.
// Like the game that owns it, it is not safe for concurrent use.
type EventBus struct {
	listeners      map[int]Listener
	order          []int
	typedListeners map[EventType][]TypedListener
	nextHandle     int
}

// NewEventBus constructs a fresh event bus instance.
func NewEventBus() *EventBus {
	return &EventBus{
		listeners:      make(map[int]Listener),
		typedListeners: make(map[EventType][]TypedListener),
	}
}

// Subscribe registers a listener for all events and returns a handle.
func (bus *EventBus) Subscribe(listener Listener) int {
	if listener == nil {
		return -1
	}
	handle := bus.nextHandle
	bus.nextHandle++
	bus.listeners[handle] = listener
	bus.order = append(bus.order, handle)
	return handle
}

// SubscribeTyped registers a listener for a specific event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	if callback == nil {
		return -1
	}
	handle := bus.nextHandle
	bus.nextHandle++
	bus.typedListeners[eventType] = append(bus.typedListeners[eventType], TypedListener{
		Handle:    handle,
		EventType: eventType,
		Callback:  callback,
	})
	return handle
}

// Unsubscribe removes the listener identified by handle, whether it was
// registered with Subscribe or SubscribeTyped.
func (bus *EventBus) Unsubscribe(handle int) {
	if _, ok := bus.listeners[handle]; ok {
		delete(bus.listeners, handle)
		for i, h := range bus.order {
			if h == handle {
				bus.order = append(bus.order[:i], bus.order[i+1:]...)
				break
			}
		}
		return
	}
	for eventType, listeners := range bus.typedListeners {
		for i := len(listeners) - 1; i >= 0; i-- {
			if listeners[i].Handle == handle {
				bus.typedListeners[eventType] = append(listeners[:i], listeners[i+1:]...)
			}
		}
	}
}

// Publish delivers event to catch-all listeners in subscription order, then to typed listeners.
func (bus *EventBus) Publish(event Event) {
	for _, handle := range bus.order {
		bus.listeners[handle](event)
	}
	for _, listener := range bus.typedListeners[event.Type] {
		listener.Callback(event)
	}
}

// PublishBatch publishes events in order.
func (bus *EventBus) PublishBatch(events []Event) {
	for _, event := range events {
		bus.Publish(event)
	}
}
