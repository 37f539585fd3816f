package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Casegraph/internal/domain"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeCaseEvent    MessageType = "case.event"
	MessageTypeJobFinalized MessageType = "job.finalized"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// CaseEventPayload — payload события по делу.
// Продьюсеры: сервисы дел (timeline, документы, правки пользователя).
type CaseEventPayload struct {
	CaseID     string         `json:"case_id"`
	EventType  string         `json:"event_type"`
	EntityType string         `json:"entity_type,omitempty"`
	EntityID   string         `json:"entity_id,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// JobFinalizedPayload — payload уведомления о финализированном job.
type JobFinalizedPayload struct {
	JobID      uuid.UUID         `json:"job_id"`
	CaseID     string            `json:"case_id"`
	EventType  string            `json:"event_type"`
	Status     domain.JobStatus  `json:"status"`
	Counts     domain.StepCounts `json:"counts"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishCaseEvent публикует событие по делу.
// Потребитель: orchestrator consumer.
func (p *Publisher) PublishCaseEvent(ctx context.Context, payload CaseEventPayload) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageTypeCaseEvent,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, ExchangeEvents, RoutingKeyCase, msg)
}

// PublishJobFinalized публикует уведомление о финализированном job.
// Потребители: сервисы дел, уведомления.
func (p *Publisher) PublishJobFinalized(ctx context.Context, job *domain.Job) error {
	msg := &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeJobFinalized,
		Payload: JobFinalizedPayload{
			JobID:      job.ID,
			CaseID:     job.CaseID,
			EventType:  job.EventType,
			Status:     job.Status,
			Counts:     job.Counts(),
			FinishedAt: job.FinishedAt,
		},
		Timestamp: time.Now(),
	}
	return p.Publish(ctx, ExchangeJobs, RoutingKeyFinalized, msg)
}
