package service

import (
	"context"
	"fmt"
	"math"

	"qbwc-sync-be/internal/dto"
	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/pkg/logger"
	"qbwc-sync-be/internal/repository/unitofwork"
	"qbwc-sync-be/pkg/qbxml"

	"github.com/google/uuid"
)

const (
	AuthStatusProceed = ""
	AuthStatusNone    = "none"
	AuthStatusInvalid = "nvu"

	abandonedMessage = "session closed before a response arrived"
	unsentMessage    = "session closed before the operation was sent"
)

type AuthResult struct {
	Ticket string
	// Status is empty, "none", "nvu" or a company file path.
	Status string
}

type Progress struct {
	Percent  int
	HasMore  bool
	Total    int64
	Finished int64
}

// ISyncSessionService is the sync run state machine. Every call reads and
// writes durable state only, so consecutive agent calls may land on
// different processes.
type ISyncSessionService interface {
	Authenticate(ctx context.Context, username, password string) AuthResult
	NextOperation(ctx context.Context, ticket string) (*entity.SyncOperation, error)
	MarkSent(ctx context.Context, operationID uuid.UUID, requestXML string) (bool, error)
	Complete(ctx context.Context, ticket string, op *entity.SyncOperation, responseXML, errorMessage string) (Progress, error)
	Progress(ctx context.Context, ticket string) (Progress, error)
	ConnectionError(ctx context.Context, ticket, message string) error
	Close(ctx context.Context, ticket string) (Progress, error)
	LastError(ctx context.Context, ticket string) (string, error)
	SetLastError(ctx context.Context, ticket, message string) error
	FindSession(ctx context.Context, ticket string) (*entity.SyncSession, error)
}

type SessionOptions struct {
	AutoQueue bool
}

type syncSessionService struct {
	uowFactory  unitofwork.RepositoryFactory
	credentials ICredentialService
	queue       ISyncQueueService
	handler     ISyncResponseHandler
	notifier    ISyncNotifier
	audit       IAuditPublisherService
	logger      logger.ILogger
	opts        SessionOptions
}

func NewSyncSessionService(
	uowFactory unitofwork.RepositoryFactory,
	credentials ICredentialService,
	queue ISyncQueueService,
	handler ISyncResponseHandler,
	notifier ISyncNotifier,
	audit IAuditPublisherService,
	log logger.ILogger,
	opts SessionOptions,
) ISyncSessionService {
	return &syncSessionService{
		uowFactory:  uowFactory,
		credentials: credentials,
		queue:       queue,
		handler:     handler,
		notifier:    notifier,
		audit:       audit,
		logger:      log,
		opts:        opts,
	}
}

func (s *syncSessionService) Authenticate(ctx context.Context, username, password string) AuthResult {
	cred, err := s.credentials.Validate(ctx, username, password)
	if err != nil {
		s.logger.Error("SYNC_SESSION", "Credential lookup failed", map[string]interface{}{
			"error":    err.Error(),
			"username": username,
		})
		return AuthResult{Status: AuthStatusInvalid}
	}
	if !cred.Valid {
		s.logger.Warn("SYNC_SESSION", "Rejected Web Connector credentials", map[string]interface{}{
			"username": username,
		})
		return AuthResult{Status: AuthStatusInvalid}
	}

	company := cred.Company
	ticket := uuid.NewString()

	if s.opts.AutoQueue {
		if err := s.autoQueue(ctx, company.Id); err != nil {
			s.logger.Error("SYNC_SESSION", "Auto-queue failed", map[string]interface{}{
				"error":      err.Error(),
				"company_id": company.Id.String(),
			})
			return AuthResult{Ticket: ticket, Status: AuthStatusNone}
		}
	}

	session, claimed, err := s.openSession(ctx, company.Id, ticket)
	if err != nil {
		s.logger.Error("SYNC_SESSION", "Failed to open session", map[string]interface{}{
			"error":      err.Error(),
			"company_id": company.Id.String(),
		})
		return AuthResult{Ticket: ticket, Status: AuthStatusNone}
	}
	if session == nil {
		s.logger.Info("SYNC_SESSION", "No pending work", map[string]interface{}{
			"company_id": company.Id.String(),
		})
		return AuthResult{Ticket: ticket, Status: AuthStatusNone}
	}

	s.logger.Info("SYNC_SESSION", "Session started", map[string]interface{}{
		"company_id": company.Id.String(),
		"ticket":     shortTicket(ticket),
		"claimed":    claimed,
	})
	s.publishAudit(ctx, "INFO", "Sync session started", session, map[string]interface{}{"claimed": claimed})
	s.notifier.SessionStarted(ctx, session, claimed)

	return AuthResult{Ticket: ticket, Status: cred.CompanyFilePath}
}

// autoQueue queues the baseline pulls when the company has nothing pending.
// It runs at most once per authenticate call.
func (s *syncSessionService) autoQueue(ctx context.Context, companyID uuid.UUID) error {
	pending, err := s.queue.HasPending(ctx, companyID)
	if err != nil || pending {
		return err
	}
	n, err := s.queue.EnqueueDefaultPulls(ctx, companyID)
	if err != nil {
		return err
	}
	s.logger.Info("SYNC_SESSION", "Queued default pulls", map[string]interface{}{
		"company_id": companyID.String(),
		"count":      n,
	})
	return nil
}

// openSession claims all pending work under ticket and records the session
// in one transaction. A nil session means nothing was claimed.
func (s *syncSessionService) openSession(ctx context.Context, companyID uuid.UUID, ticket string) (*entity.SyncSession, int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, 0, err
	}

	claimed, err := uow.SyncOperationRepository().ClaimPending(ctx, companyID, ticket)
	if err != nil {
		_ = uow.Rollback()
		return nil, 0, err
	}
	if claimed == 0 {
		return nil, 0, uow.Rollback()
	}

	session := &entity.SyncSession{
		Ticket:    ticket,
		CompanyId: companyID,
		Status:    entity.SessionActive,
	}
	if err := uow.SyncSessionRepository().Create(ctx, session); err != nil {
		_ = uow.Rollback()
		return nil, 0, err
	}
	if err := uow.Commit(); err != nil {
		return nil, 0, err
	}
	return session, claimed, nil
}

func (s *syncSessionService) FindSession(ctx context.Context, ticket string) (*entity.SyncSession, error) {
	if ticket == "" {
		return nil, nil
	}
	return s.uowFactory.NewUnitOfWork(ctx).SyncSessionRepository().FindByTicket(ctx, ticket)
}

func (s *syncSessionService) NextOperation(ctx context.Context, ticket string) (*entity.SyncOperation, error) {
	session, err := s.FindSession(ctx, ticket)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, nil
	}
	return s.uowFactory.NewUnitOfWork(ctx).SyncOperationRepository().FindNextForTicket(ctx, ticket)
}

func (s *syncSessionService) MarkSent(ctx context.Context, operationID uuid.UUID, requestXML string) (bool, error) {
	return s.uowFactory.NewUnitOfWork(ctx).SyncOperationRepository().MarkSent(ctx, operationID, requestXML)
}

func (s *syncSessionService) Complete(ctx context.Context, ticket string, op *entity.SyncOperation, responseXML, errorMessage string) (Progress, error) {
	session, err := s.FindSession(ctx, ticket)
	if err != nil {
		return Progress{}, err
	}
	if !session.IsActive() || op == nil || op.SessionTicket != ticket {
		return s.Progress(ctx, ticket)
	}

	var parsed *qbxml.Response
	if errorMessage == "" {
		parsed, err = qbxml.Parse(op.Kind, responseXML)
		if err != nil {
			errorMessage = err.Error()
		}
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).SyncOperationRepository()
	transitioned, err := repo.Complete(ctx, op.Id, responseXML, errorMessage)
	if err != nil {
		return Progress{}, err
	}

	if transitioned {
		details := map[string]interface{}{
			"operation_id": op.Id.String(),
			"kind":         string(op.Kind),
		}
		if errorMessage == "" && s.handler != nil {
			summary, herr := s.handler.HandleResponse(ctx, ResponseInput{
				CompanyID: session.CompanyId,
				Operation: op,
				Raw:       responseXML,
				Parsed:    parsed,
			})
			if herr != nil {
				errorMessage = fmt.Sprintf("response handler: %v", herr)
				if err := repo.MarkErrored(ctx, op.Id, errorMessage); err != nil {
					return Progress{}, err
				}
			} else {
				for k, v := range summary.Details() {
					details[k] = v
				}
			}
		}

		level, message := "INFO", "Operation completed"
		if errorMessage != "" {
			level, message = "ERROR", "Operation failed"
			details["error"] = errorMessage
		}
		s.logOperation(level, message, ticket, details)
		s.publishAudit(ctx, level, message, session, details)
	}

	progress, err := s.Progress(ctx, ticket)
	if err != nil {
		return Progress{}, err
	}
	if !progress.HasMore {
		s.finish(ctx, session, entity.SessionCompleted)
	}
	return progress, nil
}

func (s *syncSessionService) logOperation(level, message, ticket string, details map[string]interface{}) {
	fields := map[string]interface{}{"ticket": shortTicket(ticket)}
	for k, v := range details {
		fields[k] = v
	}
	if level == "ERROR" {
		s.logger.Warn("SYNC_SESSION", message, fields)
		return
	}
	s.logger.Info("SYNC_SESSION", message, fields)
}

// Progress reports 100 with nothing more for unknown or finished sessions.
func (s *syncSessionService) Progress(ctx context.Context, ticket string) (Progress, error) {
	done := Progress{Percent: 100}

	session, err := s.FindSession(ctx, ticket)
	if err != nil {
		return Progress{}, err
	}
	if !session.IsActive() {
		return done, nil
	}

	total, finished, err := s.uowFactory.NewUnitOfWork(ctx).SyncOperationRepository().CountByTicket(ctx, ticket)
	if err != nil {
		return Progress{}, err
	}
	return progressOf(total, finished), nil
}

func progressOf(total, finished int64) Progress {
	if total == 0 {
		return Progress{Percent: 100}
	}
	return Progress{
		Percent:  int(math.Round(100 * float64(finished) / float64(total))),
		HasMore:  finished < total,
		Total:    total,
		Finished: finished,
	}
}

func (s *syncSessionService) ConnectionError(ctx context.Context, ticket, message string) error {
	_, err := s.closeAs(ctx, ticket, message)
	return err
}

func (s *syncSessionService) Close(ctx context.Context, ticket string) (Progress, error) {
	return s.closeAs(ctx, ticket, "")
}

func (s *syncSessionService) closeAs(ctx context.Context, ticket, reason string) (Progress, error) {
	session, err := s.FindSession(ctx, ticket)
	if err != nil {
		return Progress{}, err
	}
	if session == nil {
		return Progress{Percent: 100}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, finished, err := uow.SyncOperationRepository().CountByTicket(ctx, ticket)
	if err != nil {
		return Progress{}, err
	}
	progress := progressOf(total, finished)

	if session.IsActive() {
		inFlight := abandonedMessage
		if reason != "" {
			inFlight = abandonedMessage + ": " + reason
		}
		cancelled, abandoned, err := uow.SyncOperationRepository().AbandonTicket(ctx, ticket, unsentMessage, inFlight)
		if err != nil {
			return Progress{}, err
		}
		s.logger.Info("SYNC_SESSION", "Session closed", map[string]interface{}{
			"ticket":    shortTicket(ticket),
			"percent":   progress.Percent,
			"cancelled": cancelled,
			"abandoned": abandoned,
			"reason":    reason,
		})
		s.finish(ctx, session, entity.SessionClosed)
	}
	return progress, nil
}

// finish moves an active session to a terminal status and reports it once.
func (s *syncSessionService) finish(ctx context.Context, session *entity.SyncSession, status entity.SessionStatus) {
	moved, err := s.uowFactory.NewUnitOfWork(ctx).SyncSessionRepository().UpdateStatus(ctx, session.Ticket, status)
	if err != nil {
		s.logger.Error("SYNC_SESSION", "Failed to finish session", map[string]interface{}{
			"error":  err.Error(),
			"ticket": shortTicket(session.Ticket),
		})
		return
	}
	if !moved {
		return
	}
	if err := s.uowFactory.NewUnitOfWork(ctx).SyncSessionRepository().ClearLastError(ctx, session.Ticket); err != nil {
		s.logger.Warn("SYNC_SESSION", "Failed to clear last error", map[string]interface{}{
			"error":  err.Error(),
			"ticket": shortTicket(session.Ticket),
		})
	}
	session.Status = status
	session.LastError = ""
	s.publishAudit(ctx, "INFO", "Sync session "+string(status), session, nil)
	s.notifier.SessionFinished(ctx, session, status)
}

// LastError is empty for unknown and finished tickets.
func (s *syncSessionService) LastError(ctx context.Context, ticket string) (string, error) {
	session, err := s.FindSession(ctx, ticket)
	if err != nil {
		return "", err
	}
	if session == nil || !session.IsActive() {
		return "", nil
	}
	return session.LastError, nil
}

func (s *syncSessionService) SetLastError(ctx context.Context, ticket, message string) error {
	if ticket == "" {
		return nil
	}
	return s.uowFactory.NewUnitOfWork(ctx).SyncSessionRepository().SetLastError(ctx, ticket, message)
}

func (s *syncSessionService) publishAudit(ctx context.Context, level, message string, session *entity.SyncSession, details map[string]interface{}) {
	if s.audit == nil {
		return
	}
	companyID := session.CompanyId
	s.audit.Publish(ctx, dto.AuditMessage{
		Level:     level,
		Module:    "SYNC_SESSION",
		Message:   message,
		CompanyId: &companyID,
		Ticket:    session.Ticket,
		Details:   details,
	})
}
