package consumer

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageReader is the subset of *kafkago.Reader the consumers use.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}
