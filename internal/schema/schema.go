package schema

// EventType identifies the stream an event belongs to.
type EventType uint16

const (
	EventUnknown EventType = iota
	EventOrderBook
	EventPrice
	EventAlgoExecution
	EventExecution
	EventAlgoStream
	EventPriceStream
	EventTrade
	EventPosition
	EventRisk
	EventInquiry
	EventGUI
)

// MaxEventType is the highest defined EventType.
const MaxEventType = EventGUI

var eventTypeNames = [...]string{
	EventUnknown:       "unknown",
	EventOrderBook:     "orderbook",
	EventPrice:         "price",
	EventAlgoExecution: "algo_execution",
	EventExecution:     "execution",
	EventAlgoStream:    "algo_stream",
	EventPriceStream:   "price_stream",
	EventTrade:         "trade",
	EventPosition:      "position",
	EventRisk:          "risk",
	EventInquiry:       "inquiry",
	EventGUI:           "gui",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return eventTypeNames[EventUnknown]
}

// EventKind is the notification delivered to listeners.
type EventKind uint8

const (
	EventKindAdd EventKind = iota + 1
	EventKindRemove
	EventKindUpdate
)

func (k EventKind) String() string {
	switch k {
	case EventKindAdd:
		return "add"
	case EventKindRemove:
		return "remove"
	case EventKindUpdate:
		return "update"
	default:
		return "unknown"
	}
}
