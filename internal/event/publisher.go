package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel the publisher needs. The queue is
// declared once by ConnectRabbitMQ.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// PublisherStats is reported on /checkhealth.
type PublisherStats struct {
	MessagesPublished int64     `json:"messages_published"`
	MessagesFailed    int64     `json:"messages_failed"`
	LastPublishTime   time.Time `json:"last_publish_time"`
}

// RequestEventPublisher sends request lifecycle events to the
// water_service_events queue. amqp channels are not safe for concurrent
// publishes, so Publish is serialized.
type RequestEventPublisher struct {
	channel Channel

	mu                sync.Mutex
	messagesPublished int64
	messagesFailed    int64
	lastPublishTime   time.Time
}

func NewRequestEventPublisher(channel Channel) *RequestEventPublisher {
	return &RequestEventPublisher{
		channel:         channel,
		lastPublishTime: time.Now(),
	}
}

// Publish writes one persistent JSON message routed by queue name on the
// default exchange.
func (p *RequestEventPublisher) Publish(ctx context.Context, event RequestEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	body, err := json.Marshal(event)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to marshal request event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		"",                      // exchange
		WaterServiceEventsQueue, // routing key
		false,                   // mandatory
		false,                   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Type:         string(event.Type),
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		p.messagesFailed++
		return fmt.Errorf("failed to publish request event: %w", err)
	}

	p.messagesPublished++
	p.lastPublishTime = time.Now()

	slog.Info("Request event published",
		"queue", WaterServiceEventsQueue,
		"event_type", event.Type,
		"request_id", event.RequestID,
		"status", event.Status,
	)
	return nil
}

func (p *RequestEventPublisher) Stats() PublisherStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublisherStats{
		MessagesPublished: p.messagesPublished,
		MessagesFailed:    p.messagesFailed,
		LastPublishTime:   p.lastPublishTime,
	}
}
