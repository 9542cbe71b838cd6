// Package notify defines the outbound send port. The chat transport is an
// external collaborator; everything here only hands messages over.
package notify

import (
	"context"
	"log/slog"
)

// Sender delivers one message to one recipient through the chat transport.
type Sender interface {
	Send(ctx context.Context, recipientID, message string) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, recipientID, message string) error

func (f SenderFunc) Send(ctx context.Context, recipientID, message string) error {
	return f(ctx, recipientID, message)
}

// LogSender writes outbound messages to the log instead of delivering them.
// Used when no delivery transport is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, recipientID, message string) error {
	slog.InfoContext(ctx, "Outbound message (no transport configured)",
		"recipient_id", recipientID,
		"length", len(message))
	return nil
}
