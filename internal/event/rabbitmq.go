package event

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"

	"water-service/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// QueueDeclarer is the part of *amqp.Channel used to set up queues.
type QueueDeclarer interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
}

// RabbitMQConnection owns the broker connection and the single channel the
// request event publisher writes to.
type RabbitMQConnection struct {
	Connection *amqp.Connection
	Channel    *amqp.Channel
}

// amqpURL builds the broker URL. Credentials are escaped so passwords with
// '@' or '/' survive.
func amqpURL(cfg config.RabbitMQConfig) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg.Username, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, cfg.Port),
		Path:   "/",
	}
	return u.String()
}

// declareQueues creates the durable queues this service publishes to. It is
// idempotent, so it runs on every connect.
func declareQueues(ch QueueDeclarer) error {
	_, err := ch.QueueDeclare(
		WaterServiceEventsQueue, // queue name
		true,                    // durable
		false,                   // delete when unused
		false,                   // exclusive
		false,                   // no-wait
		nil,                     // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", WaterServiceEventsQueue, err)
	}
	return nil
}

// ConnectRabbitMQ dials the broker, opens a channel and declares the
// water_service_events queue. Any failure closes what was opened.
func ConnectRabbitMQ(cfg config.RabbitMQConfig) (*RabbitMQConnection, error) {
	conn, err := amqp.Dial(amqpURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareQueues(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	rabbit := &RabbitMQConnection{Connection: conn, Channel: ch}
	go rabbit.watchClose(conn.NotifyClose(make(chan *amqp.Error, 1)))

	slog.Info("Connected to RabbitMQ", "host", cfg.Host, "port", cfg.Port, "queue", WaterServiceEventsQueue)
	return rabbit, nil
}

// watchClose logs an unexpected broker disconnect. The channel is closed
// without a value on a clean Close.
func (r *RabbitMQConnection) watchClose(closed <-chan *amqp.Error) {
	if amqpErr, ok := <-closed; ok && amqpErr != nil {
		slog.Error("RabbitMQ connection lost, request events will fail until restart",
			"code", amqpErr.Code,
			"reason", amqpErr.Reason)
	}
}

func (r *RabbitMQConnection) Close() error {
	var firstErr error
	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			slog.Error("failed to close RabbitMQ channel", "error", err)
			firstErr = err
		}
	}
	if r.Connection != nil {
		if err := r.Connection.Close(); err != nil {
			slog.Error("failed to close RabbitMQ connection", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	slog.Info("RabbitMQ connection closed")
	return firstErr
}
