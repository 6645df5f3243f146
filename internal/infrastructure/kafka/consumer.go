package kafka

import (
	"context"
	"errors"
	"io"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"
)

// Message is a consumed record with its headers flattened.
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

type MessageHandler func(ctx context.Context, msg Message) error

type Consumer struct {
	reader *kafka.Reader
	logger *zap.Logger
}

func NewConsumer(brokers []string, topic, groupID string, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: logger}
}

// Consume hands every message to handler and commits its offset afterwards.
// Handler failures are logged and the message is committed anyway, so one
// poison message cannot stall the partition.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// io.EOF means the reader was closed.
			if errors.Is(err, io.EOF) {
				return nil
			}
			c.logger.Error("failed to read message", zap.Error(err))
			continue
		}

		m := toMessage(msg)
		msgCtx := otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(m.Headers))
		if err := handler(msgCtx, m); err != nil {
			c.logger.Error("failed to handle message",
				zap.Error(err),
				zap.ByteString("key", msg.Key),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
			)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("failed to commit message", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
	}
}

func toMessage(msg kafka.Message) Message {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{Key: msg.Key, Value: msg.Value, Headers: headers}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
