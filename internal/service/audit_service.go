package service

import (
	"context"
	"encoding/json"
	"time"

	"qbwc-sync-be/internal/dto"
	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/pkg/logger"
	"qbwc-sync-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const AuditTopic = "sync.audit"

type IAuditPublisherService interface {
	Publish(ctx context.Context, msg dto.AuditMessage)
}

type auditPublisherService struct {
	topic     string
	publisher message.Publisher
	logger    logger.ILogger
}

func NewAuditPublisherService(topic string, publisher message.Publisher, log logger.ILogger) IAuditPublisherService {
	return &auditPublisherService{
		topic:     topic,
		publisher: publisher,
		logger:    log,
	}
}

// Publish never fails the caller; an audit row is not worth a failed sync.
func (s *auditPublisherService) Publish(ctx context.Context, msg dto.AuditMessage) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("AUDIT", "Failed to encode audit message", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := s.publisher.Publish(s.topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		s.logger.Error("AUDIT", "Failed to publish audit message", map[string]interface{}{"error": err.Error()})
	}
}

type IAuditConsumerService interface {
	Consume(ctx context.Context) error
}

type auditConsumerService struct {
	subscriber message.Subscriber
	topic      string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAuditConsumerService(
	subscriber message.Subscriber,
	topic string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IAuditConsumerService {
	return &auditConsumerService{
		subscriber: subscriber,
		topic:      topic,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *auditConsumerService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *auditConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AuditMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("AUDIT", "Dropping undecodable audit message", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err := uow.SystemLogRepository().Create(ctx, &entity.SystemLog{
		Id:        uuid.New(),
		Level:     payload.Level,
		Module:    payload.Module,
		Message:   payload.Message,
		CompanyId: payload.CompanyId,
		Ticket:    payload.Ticket,
		Details:   payload.Details,
		CreatedAt: payload.CreatedAt,
	})
	if err != nil {
		// gochannel redelivers nacked messages immediately, which would spin
		// while the database is down.
		s.logger.Error("AUDIT", "Failed to persist audit message", map[string]interface{}{
			"error":   err.Error(),
			"message": payload.Message,
		})
	}
	msg.Ack()
}
