package service

import (
	"context"
	"time"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/pkg/logger"
	"qbwc-sync-be/internal/pkg/mailer"
	"qbwc-sync-be/internal/repository/specification"
	"qbwc-sync-be/internal/repository/unitofwork"
	"qbwc-sync-be/pkg/events"
)

// EventPublisher is satisfied by *nats.Publisher, including a nil one.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type ISyncNotifier interface {
	SessionStarted(ctx context.Context, session *entity.SyncSession, claimed int64)
	SessionFinished(ctx context.Context, session *entity.SyncSession, status entity.SessionStatus)
}

type syncNotifier struct {
	uowFactory      unitofwork.RepositoryFactory
	events          EventPublisher
	mailer          mailer.IEmailService
	reportRecipient string
	logger          logger.ILogger
	// async runs the mail delivery; tests swap it for a direct call.
	async func(func())
}

func NewSyncNotifier(
	uowFactory unitofwork.RepositoryFactory,
	publisher EventPublisher,
	emailService mailer.IEmailService,
	reportRecipient string,
	log logger.ILogger,
) ISyncNotifier {
	return &syncNotifier{
		uowFactory:      uowFactory,
		events:          publisher,
		mailer:          emailService,
		reportRecipient: reportRecipient,
		logger:          log,
		async:           func(f func()) { go f() },
	}
}

func (n *syncNotifier) SessionStarted(ctx context.Context, session *entity.SyncSession, claimed int64) {
	n.publish(ctx, events.SyncSessionEvent{
		Type:      events.TypeSyncSessionStarted,
		Ticket:    session.Ticket,
		CompanyID: session.CompanyId.String(),
		Status:    string(entity.SessionActive),
		Total:     claimed,
		At:        time.Now().UTC(),
	})
}

func (n *syncNotifier) SessionFinished(ctx context.Context, session *entity.SyncSession, status entity.SessionStatus) {
	uow := n.uowFactory.NewUnitOfWork(ctx)
	ops, err := uow.SyncOperationRepository().FindAll(ctx,
		specification.ByTicket{Ticket: session.Ticket},
		specification.QueueOrder{},
	)
	if err != nil {
		n.logger.Error("SYNC_SESSION", "Failed to load session operations for report", map[string]interface{}{
			"error":  err.Error(),
			"ticket": shortTicket(session.Ticket),
		})
		return
	}

	var failed []mailer.FailedOperation
	for _, op := range ops {
		if op.Status == entity.OperationErrored {
			failed = append(failed, mailer.FailedOperation{Kind: string(op.Kind), Message: op.ErrorMessage})
		}
	}

	n.publish(ctx, events.SyncSessionEvent{
		Type:      events.TypeSyncSessionFinished,
		Ticket:    session.Ticket,
		CompanyID: session.CompanyId.String(),
		Status:    string(status),
		Total:     int64(len(ops)),
		Failed:    int64(len(failed)),
		At:        time.Now().UTC(),
	})

	if len(failed) == 0 || n.mailer == nil || n.reportRecipient == "" {
		return
	}

	report := mailer.SyncReport{
		Ticket: session.Ticket,
		Total:  int64(len(ops)),
		Failed: failed,
	}
	if company, err := uow.CompanyRepository().FindByID(ctx, session.CompanyId); err == nil && company != nil {
		report.CompanyCode = company.Code
		report.CompanyName = company.Name
	}

	n.async(func() {
		if err := n.mailer.SendSyncFailureReport(n.reportRecipient, report); err != nil {
			n.logger.Error("SYNC_SESSION", "Failed to send sync failure report", map[string]interface{}{
				"error":  err.Error(),
				"ticket": shortTicket(session.Ticket),
			})
		}
	})
}

func (n *syncNotifier) publish(ctx context.Context, event events.SyncSessionEvent) {
	if n.events == nil {
		return
	}
	if err := n.events.Publish(ctx, event); err != nil {
		n.logger.Warn("SYNC_SESSION", "Failed to publish session event", map[string]interface{}{
			"error": err.Error(),
			"type":  event.Type,
		})
	}
}

// shortTicket keeps tickets out of logs in full; they are bearer credentials.
func shortTicket(ticket string) string {
	if len(ticket) <= 8 {
		return ticket
	}
	return ticket[:8]
}
