package ws

import "encoding/json"

// MessageType constants for the leaderboard feed.
const (
	// Server -> Client
	TypeLeaderboardUpdate = "leaderboard_update"
	TypeError             = "error"
	TypePong              = "pong"

	// Client -> Server
	TypePing = "ping"
)

// Message wraps all WebSocket payloads with a type.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage marshals payload into a typed message.
func NewMessage(msgType string, payload interface{}) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: msgType, Payload: raw}, nil
}

// LeaderboardUpdatePayload announces a new high score with the refreshed top entries.
type LeaderboardUpdatePayload struct {
	Category string             `json:"category"`
	Entry    LeaderboardEntry   `json:"entry"`
	Top      []LeaderboardEntry `json:"top"`
}

type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	Name       string  `json:"name"`
	Score      float64 `json:"score"`
	Category   string  `json:"category"`
	RecordedAt string  `json:"recordedAt"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
