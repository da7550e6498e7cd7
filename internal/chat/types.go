package chat

import "time"

// MessageType is the host channel a message arrived on
type MessageType int

const (
	MessagePublic MessageType = iota
	MessagePrivate
	MessageClan
	MessageGame
)

// String returns the channel name used in logs and JSON
func (t MessageType) String() string {
	switch t {
	case MessagePublic:
		return "public"
	case MessagePrivate:
		return "private"
	case MessageClan:
		return "clan"
	case MessageGame:
		return "game"
	default:
		return "unknown"
	}
}

// ParseMessageType maps a channel name to its type. Unknown names are public.
func ParseMessageType(s string) MessageType {
	switch s {
	case "private":
		return MessagePrivate
	case "clan":
		return MessageClan
	case "game":
		return MessageGame
	default:
		return MessagePublic
	}
}

// ChatMessage is a raw message from the host chat
type ChatMessage struct {
	Type      MessageType
	Username  string
	Content   string
	Timestamp time.Time
}
