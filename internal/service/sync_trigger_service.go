package service

import (
	"context"
	"fmt"

	"qbwc-sync-be/internal/dto"
	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/repository/unitofwork"
	"qbwc-sync-be/pkg/qbxml"

	"github.com/google/uuid"
)

type ISyncTriggerService interface {
	Trigger(ctx context.Context, companyID uuid.UUID, req dto.TriggerSyncRequest) (*dto.TriggerSyncResponse, error)
	Pending(ctx context.Context, companyID uuid.UUID) (*dto.PendingResponse, error)
	CancelPending(ctx context.Context, companyID uuid.UUID) (*dto.CancelPendingResponse, error)
	Operations(ctx context.Context, companyID uuid.UUID, req dto.OperationListRequest) (*dto.OperationListResponse, error)
	Progress(ctx context.Context, ticket string) (*dto.ProgressResponse, error)
	Company(ctx context.Context, companyID uuid.UUID) (*entity.Company, error)
}

type syncTriggerService struct {
	uowFactory  unitofwork.RepositoryFactory
	queue       ISyncQueueService
	sessions    ISyncSessionService
	maxReturned int
}

func NewSyncTriggerService(
	uowFactory unitofwork.RepositoryFactory,
	queue ISyncQueueService,
	sessions ISyncSessionService,
	maxReturned int,
) ISyncTriggerService {
	return &syncTriggerService{
		uowFactory:  uowFactory,
		queue:       queue,
		sessions:    sessions,
		maxReturned: maxReturned,
	}
}

func (s *syncTriggerService) Company(ctx context.Context, companyID uuid.UUID) (*entity.Company, error) {
	company, err := s.uowFactory.NewUnitOfWork(ctx).CompanyRepository().FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

func (s *syncTriggerService) Trigger(ctx context.Context, companyID uuid.UUID, req dto.TriggerSyncRequest) (*dto.TriggerSyncResponse, error) {
	company, err := s.Company(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return nil, ErrCompanyInactive
	}

	maxReturned := req.MaxReturned
	if maxReturned == 0 {
		maxReturned = s.maxReturned
	}
	txnFilter := qbxml.QueryFilter{FromTxnDate: req.FromDate, ToTxnDate: req.ToDate, MaxReturned: maxReturned}
	listFilter := qbxml.QueryFilter{ActiveStatus: qbxml.ActiveAll, MaxReturned: maxReturned}

	var (
		ops     []*entity.SyncOperation
		skipped int
	)
	pullLists := func() { ops = append(ops, PullOperations(listFilter, ListPullKinds...)...) }
	pullTxns := func() { ops = append(ops, PullOperations(txnFilter, DefaultPullKinds...)...) }
	push := func() error {
		pushOps, n, err := s.queue.BuildPushOperations(ctx, companyID)
		ops = append(ops, pushOps...)
		skipped += n
		return err
	}

	switch req.Bundle {
	case dto.BundlePullLists:
		pullLists()
	case dto.BundlePullTransactions:
		pullTxns()
	case dto.BundlePullAll:
		pullLists()
		pullTxns()
	case dto.BundlePush:
		if err := push(); err != nil {
			return nil, err
		}
	case dto.BundleFull:
		// Lists first so pushed transactions can reference fresh names.
		pullLists()
		if err := push(); err != nil {
			return nil, err
		}
		pullTxns()
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBundle, req.Bundle)
	}

	if err := s.queue.Enqueue(ctx, companyID, ops); err != nil {
		return nil, err
	}

	return &dto.TriggerSyncResponse{
		CompanyId:  companyID,
		Bundle:     req.Bundle,
		Queued:     len(ops),
		Skipped:    skipped,
		Operations: toOperationResponses(ops),
	}, nil
}

func (s *syncTriggerService) Pending(ctx context.Context, companyID uuid.UUID) (*dto.PendingResponse, error) {
	if _, err := s.Company(ctx, companyID); err != nil {
		return nil, err
	}
	n, err := s.queue.CountPending(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &dto.PendingResponse{CompanyId: companyID, Pending: n}, nil
}

func (s *syncTriggerService) CancelPending(ctx context.Context, companyID uuid.UUID) (*dto.CancelPendingResponse, error) {
	if _, err := s.Company(ctx, companyID); err != nil {
		return nil, err
	}
	n, err := s.queue.CancelPending(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &dto.CancelPendingResponse{CompanyId: companyID, Cancelled: n}, nil
}

func (s *syncTriggerService) Operations(ctx context.Context, companyID uuid.UUID, req dto.OperationListRequest) (*dto.OperationListResponse, error) {
	if _, err := s.Company(ctx, companyID); err != nil {
		return nil, err
	}
	return s.queue.ListOperations(ctx, companyID, req)
}

func (s *syncTriggerService) Progress(ctx context.Context, ticket string) (*dto.ProgressResponse, error) {
	session, err := s.sessions.FindSession(ctx, ticket)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	total, finished, err := s.uowFactory.NewUnitOfWork(ctx).SyncOperationRepository().CountByTicket(ctx, ticket)
	if err != nil {
		return nil, err
	}
	progress := progressOf(total, finished)
	return &dto.ProgressResponse{
		Ticket:   ticket,
		Status:   string(session.Status),
		Percent:  progress.Percent,
		HasMore:  progress.HasMore && session.IsActive(),
		Total:    total,
		Finished: finished,
	}, nil
}
