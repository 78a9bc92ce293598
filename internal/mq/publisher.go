package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Cascade/internal/domain"
)

// EventsExchange — topic exchange для зеркалирования событий выполнения.
const EventsExchange = "cascade.events"

// EventMessage — событие выполнения в обёртке для очереди.
type EventMessage struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// WorkflowID — идентификатор workflow.
	WorkflowID string `json:"workflow_id"`

	// RunID — идентификатор запуска.
	RunID string `json:"run_id"`

	// Event — само событие выполнения.
	Event domain.Event `json:"event"`

	// Timestamp — время публикации.
	Timestamp time.Time `json:"timestamp"`
}

// Publisher зеркалирует события выполнения в RabbitMQ.
//
// Зеркало вторично по отношению к основному потоку событий: ошибка
// публикации логируется и не прерывает запуск.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher и декларирует exchange.
func NewPublisher(conn *Connection, logger *slog.Logger) (*Publisher, error) {
	p := &Publisher{conn: conn, logger: logger}

	err := conn.WithChannel(func(ch *amqp.Channel) error {
		return ch.ExchangeDeclare(
			EventsExchange,
			"topic",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		)
	})
	if err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", EventsExchange, err)
	}

	return p, nil
}

// PublishEvent публикует одно событие выполнения.
// Routing key — "run.<workflow_id>".
func (p *Publisher) PublishEvent(ctx context.Context, workflowID, runID string, ev domain.Event) error {
	msg := EventMessage{
		ID:         uuid.New().String(),
		WorkflowID: workflowID,
		RunID:      runID,
		Event:      ev,
		Timestamp:  time.Now().UTC(),
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event message: %w", err)
	}

	routingKey := "run." + workflowID

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			EventsExchange,
			routingKey,
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", EventsExchange, routingKey, err)
		}

		p.logger.Debug("event mirrored",
			"exchange", EventsExchange,
			"routing_key", routingKey,
			"node_id", ev.NodeID,
		)
		return nil
	})
}
