package amqp

import (
	"encoding/json"
	"time"
)

// OutboundMessage is one chat message queued for the delivery worker. The
// worker owns transport credentials and talks to the chat platform; this
// process only ever enqueues.
type OutboundMessage struct {
	RecipientID string    `json:"recipient_id"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewOutboundMessage creates a delivery message for one recipient.
func NewOutboundMessage(recipientID, text string) *OutboundMessage {
	return &OutboundMessage{
		RecipientID: recipientID,
		Text:        text,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *OutboundMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// OutboundMessageFromJSON creates a message from JSON bytes.
func OutboundMessageFromJSON(data []byte) (*OutboundMessage, error) {
	var msg OutboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
