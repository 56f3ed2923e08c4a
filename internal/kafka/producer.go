package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gojo5t5/papertrade/internal/models"
)

// TradeEvent is the message published for every committed trade.
type TradeEvent struct {
	EventType string        `json:"event_type"`
	Trade     *models.Trade `json:"trade"`
	Timestamp time.Time     `json:"timestamp"`
}

// Producer handles publishing trade events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishTradeExecuted publishes an event for a committed trade. Events
// are best effort: the trade is already durable when this runs, so a
// publish failure is the caller's to log, not to roll back.
func (p *Producer) PublishTradeExecuted(ctx context.Context, t *models.Trade) error {
	event := TradeEvent{
		EventType: "TRADE_EXECUTED",
		Trade:     t,
		Timestamp: time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(t.UserID)),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
