package ws

import "github.com/samansohani78/private-poker/internal/game"

const ProtocolVersion = "1.0"

// Command is any client-to-server message; Type selects which fields
// matter. Unknown types are answered with an error result.
type Command struct {
	Type    string `json:"type"`
	TableID string `json:"table_id,omitempty"`
	UserID  string `json:"user_id,omitempty"`
	BuyIn   int64  `json:"buy_in,omitempty"`
	Action  string `json:"action,omitempty"`
	Amount  int64  `json:"amount,omitempty"`
}

// Result acknowledges one command.
type Result struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Req             string `json:"req"`
	Ok              bool   `json:"ok"`
	Error           string `json:"error,omitempty"`
}

// StateUpdate pushes the observer's view of the table. Sent after every
// state change and in reply to a view command.
type StateUpdate struct {
	Type            string        `json:"type"`
	ProtocolVersion string        `json:"protocol_version"`
	View            game.GameView `json:"view"`
}

// TableClosed tells the client its table shut down.
type TableClosed struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	TableID         string `json:"table_id"`
}
