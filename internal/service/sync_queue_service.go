package service

import (
	"context"
	"fmt"
	"time"

	"qbwc-sync-be/internal/dto"
	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/pkg/logger"
	"qbwc-sync-be/internal/repository/specification"
	"qbwc-sync-be/internal/repository/unitofwork"
	"qbwc-sync-be/pkg/qbxml"

	"github.com/google/uuid"
)

var (
	DefaultPullKinds = []qbxml.OperationKind{
		qbxml.KindPullChecks,
		qbxml.KindPullBills,
		qbxml.KindPullCreditCardCharges,
	}
	ListPullKinds = []qbxml.OperationKind{
		qbxml.KindPullVendors,
		qbxml.KindPullCustomers,
		qbxml.KindPullAccounts,
	}
)

type ISyncQueueService interface {
	Enqueue(ctx context.Context, companyID uuid.UUID, ops []*entity.SyncOperation) error
	CountPending(ctx context.Context, companyID uuid.UUID) (int64, error)
	HasPending(ctx context.Context, companyID uuid.UUID) (bool, error)
	CancelPending(ctx context.Context, companyID uuid.UUID) (int64, error)
	// EnqueueDefaultPulls queues the baseline check, bill and charge pulls.
	EnqueueDefaultPulls(ctx context.Context, companyID uuid.UUID) (int, error)
	// BuildPushOperations turns local transactions flagged for push into
	// add or modify operations. It does not enqueue them; the second result
	// counts transactions that could not be pushed.
	BuildPushOperations(ctx context.Context, companyID uuid.UUID) ([]*entity.SyncOperation, int, error)
	ListOperations(ctx context.Context, companyID uuid.UUID, req dto.OperationListRequest) (*dto.OperationListResponse, error)
}

type syncQueueService struct {
	uowFactory   unitofwork.RepositoryFactory
	logger       logger.ILogger
	lookbackDays int
	maxReturned  int
}

func NewSyncQueueService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger, lookbackDays, maxReturned int) ISyncQueueService {
	return &syncQueueService{
		uowFactory:   uowFactory,
		logger:       log,
		lookbackDays: lookbackDays,
		maxReturned:  maxReturned,
	}
}

// PullOperations builds one pull per kind, all sharing filter.
func PullOperations(filter qbxml.QueryFilter, kinds ...qbxml.OperationKind) []*entity.SyncOperation {
	ops := make([]*entity.SyncOperation, 0, len(kinds))
	for _, k := range kinds {
		f := filter
		ops = append(ops, &entity.SyncOperation{Kind: k, Params: qbxml.Params{Filter: &f}})
	}
	return ops
}

func (s *syncQueueService) Enqueue(ctx context.Context, companyID uuid.UUID, ops []*entity.SyncOperation) error {
	for _, op := range ops {
		if !op.Kind.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidOperationKind, op.Kind)
		}
		if _, err := qbxml.RequestFromParams(op.Kind, op.Params); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOperationKind, err)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SyncOperationRepository().Enqueue(ctx, companyID, ops); err != nil {
		return err
	}

	kinds := make([]string, 0, len(ops))
	for _, op := range ops {
		kinds = append(kinds, string(op.Kind))
	}
	s.logger.Info("SYNC_QUEUE", "Operations queued", map[string]interface{}{
		"company_id": companyID.String(),
		"count":      len(ops),
		"kinds":      kinds,
	})
	return nil
}

func (s *syncQueueService) CountPending(ctx context.Context, companyID uuid.UUID) (int64, error) {
	return s.uowFactory.NewUnitOfWork(ctx).SyncOperationRepository().CountPending(ctx, companyID)
}

func (s *syncQueueService) HasPending(ctx context.Context, companyID uuid.UUID) (bool, error) {
	n, err := s.CountPending(ctx, companyID)
	return n > 0, err
}

func (s *syncQueueService) CancelPending(ctx context.Context, companyID uuid.UUID) (int64, error) {
	n, err := s.uowFactory.NewUnitOfWork(ctx).SyncOperationRepository().CancelPending(ctx, companyID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("SYNC_QUEUE", "Pending operations cancelled", map[string]interface{}{
		"company_id": companyID.String(),
		"count":      n,
	})
	return n, nil
}

func (s *syncQueueService) EnqueueDefaultPulls(ctx context.Context, companyID uuid.UUID) (int, error) {
	filter := qbxml.QueryFilter{MaxReturned: s.maxReturned}
	if s.lookbackDays > 0 {
		from := time.Now().UTC().AddDate(0, 0, -s.lookbackDays)
		filter.FromModifiedDate = &from
	}
	ops := PullOperations(filter, DefaultPullKinds...)
	if err := s.Enqueue(ctx, companyID, ops); err != nil {
		return 0, err
	}
	return len(ops), nil
}

func (s *syncQueueService) BuildPushOperations(ctx context.Context, companyID uuid.UUID) ([]*entity.SyncOperation, int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	txns, err := uow.TransactionRepository().FindNeedingPush(ctx, companyID)
	if err != nil {
		return nil, 0, err
	}
	if len(txns) == 0 {
		return nil, 0, nil
	}

	inFlight, err := s.openPushTargets(ctx, uow, companyID)
	if err != nil {
		return nil, 0, err
	}

	var (
		ops     []*entity.SyncOperation
		skipped int
	)
	for _, txn := range txns {
		if inFlight[txn.Id.String()] {
			continue
		}
		op, reason := pushOperation(txn)
		if op == nil {
			skipped++
			s.logger.Warn("SYNC_QUEUE", "Transaction cannot be pushed", map[string]interface{}{
				"transaction_id": txn.Id.String(),
				"reason":         reason,
			})
			continue
		}
		ops = append(ops, op)
	}
	return ops, skipped, nil
}

// openPushTargets returns the local transactions that already have a push
// waiting or in flight.
func (s *syncQueueService) openPushTargets(ctx context.Context, uow unitofwork.UnitOfWork, companyID uuid.UUID) (map[string]bool, error) {
	open, err := uow.SyncOperationRepository().FindAll(ctx,
		specification.ByCompanyID{CompanyID: companyID},
		specification.WithStatus(entity.OperationPending, entity.OperationSent),
	)
	if err != nil {
		return nil, err
	}
	targets := make(map[string]bool, len(open))
	for _, op := range open {
		if op.Kind.IsPush() && op.Params.LocalTransactionID != "" {
			targets[op.Params.LocalTransactionID] = true
		}
	}
	return targets, nil
}

func pushOperation(txn *entity.Transaction) (*entity.SyncOperation, string) {
	if len(txn.Lines.Expense) == 0 && len(txn.Lines.Item) == 0 {
		return nil, "no expense or item lines"
	}

	modify := txn.ExternalId != ""
	if modify && txn.EditSequence == "" {
		return nil, "linked transaction has no edit sequence"
	}

	var kind qbxml.OperationKind
	switch txn.ExternalType {
	case qbxml.TxnTypeCheck:
		kind = qbxml.KindAddCheck
		if modify {
			kind = qbxml.KindModifyCheck
		}
	case qbxml.TxnTypeBill:
		kind = qbxml.KindAddBill
		if modify {
			kind = qbxml.KindModifyBill
		}
	case qbxml.TxnTypeCreditCardCharge:
		if modify {
			return nil, "credit card charges cannot be modified"
		}
		kind = qbxml.KindAddCreditCardCharge
	default:
		return nil, fmt.Sprintf("unsupported transaction type %q", txn.ExternalType)
	}

	expenses := make([]qbxml.ExpenseLine, len(txn.Lines.Expense))
	for i, line := range txn.Lines.Expense {
		line.Memo = qbxml.TruncateMemo(line.Memo)
		expenses[i] = line
	}
	items := make([]qbxml.ItemLine, len(txn.Lines.Item))
	for i, line := range txn.Lines.Item {
		line.Description = qbxml.TruncateMemo(line.Description)
		items[i] = line
	}

	params := qbxml.Params{
		LocalTransactionID: txn.Id.String(),
		Txn: &qbxml.TxnPayload{
			Account:      qbxml.Ref{FullName: txn.AccountName},
			Payee:        qbxml.Ref{FullName: txn.Payee},
			TxnDate:      txn.TxnDate,
			DueDate:      txn.DueDate,
			RefNumber:    txn.RefNumber,
			Memo:         qbxml.TruncateMemo(txn.Memo),
			ExpenseLines: expenses,
			ItemLines:    items,
		},
	}
	if modify {
		params.TxnID = txn.ExternalId
		params.EditSequence = txn.EditSequence
	}
	return &entity.SyncOperation{Kind: kind, Params: params}, ""
}

func (s *syncQueueService) ListOperations(ctx context.Context, companyID uuid.UUID, req dto.OperationListRequest) (*dto.OperationListResponse, error) {
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 50
	}

	specs := []specification.Specification{specification.ByCompanyID{CompanyID: companyID}}
	if req.Status != "" {
		specs = append(specs, specification.WithStatus(entity.OperationStatus(req.Status)))
	}
	if req.Kind != "" {
		kind, err := qbxml.ParseKind(req.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOperationKind, err)
		}
		specs = append(specs, specification.ByKind{Kind: kind})
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).SyncOperationRepository()
	total, err := repo.Count(ctx, specs...)
	if err != nil {
		return nil, err
	}
	ops, err := repo.FindAll(ctx, append(specs,
		specification.NewestFirst{},
		specification.Pagination{Limit: req.PageSize, Offset: (req.Page - 1) * req.PageSize},
	)...)
	if err != nil {
		return nil, err
	}

	return &dto.OperationListResponse{
		Items:    toOperationResponses(ops),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func toOperationResponses(ops []*entity.SyncOperation) []dto.OperationResponse {
	out := make([]dto.OperationResponse, 0, len(ops))
	for _, op := range ops {
		out = append(out, dto.OperationResponse{
			Id:            op.Id,
			Kind:          string(op.Kind),
			Status:        string(op.Status),
			SessionTicket: op.SessionTicket,
			ErrorMessage:  op.ErrorMessage,
			CreatedAt:     op.CreatedAt,
			SentAt:        op.SentAt,
			CompletedAt:   op.CompletedAt,
		})
	}
	return out
}
