package service

import (
	"context"
	"fmt"
	"time"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/pkg/logger"
	"qbwc-sync-be/internal/repository/contract"
	"qbwc-sync-be/internal/repository/unitofwork"
	"qbwc-sync-be/pkg/qbxml"
	"qbwc-sync-be/pkg/reconcile"

	"github.com/google/uuid"
)

// ResponseInput is one successfully completed operation.
type ResponseInput struct {
	CompanyID uuid.UUID
	Operation *entity.SyncOperation
	Raw       string
	Parsed    *qbxml.Response
}

// HandleSummary counts what a response changed in the local store.
type HandleSummary struct {
	Created     int `json:"created"`
	Updated     int `json:"updated"`
	Skipped     int `json:"skipped"`
	Review      int `json:"review"`
	ListEntries int `json:"list_entries"`
	Linked      int `json:"linked"`
}

func (s HandleSummary) Details() map[string]interface{} {
	return map[string]interface{}{
		"created":      s.Created,
		"updated":      s.Updated,
		"skipped":      s.Skipped,
		"review":       s.Review,
		"list_entries": s.ListEntries,
		"linked":       s.Linked,
	}
}

// ISyncResponseHandler receives every completed operation exactly once.
type ISyncResponseHandler interface {
	HandleResponse(ctx context.Context, in ResponseInput) (*HandleSummary, error)
}

type syncResponseHandler struct {
	uowFactory unitofwork.RepositoryFactory
	engine     *reconcile.Engine
	policy     reconcile.Policy
	logger     logger.ILogger
}

func NewSyncResponseHandler(
	uowFactory unitofwork.RepositoryFactory,
	engine *reconcile.Engine,
	policy reconcile.Policy,
	log logger.ILogger,
) ISyncResponseHandler {
	return &syncResponseHandler{
		uowFactory: uowFactory,
		engine:     engine,
		policy:     policy,
		logger:     log,
	}
}

func (h *syncResponseHandler) HandleResponse(ctx context.Context, in ResponseInput) (summary *HandleSummary, err error) {
	resp := in.Parsed
	if resp == nil {
		resp, err = qbxml.Parse(in.Operation.Kind, in.Raw)
		if err != nil {
			return nil, err
		}
	}

	uow := h.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = uow.Rollback()
		}
	}()

	summary = &HandleSummary{}
	kind := in.Operation.Kind
	switch {
	case kind.IsPull() && kind.IsTransaction():
		err = h.importTransactions(ctx, uow, in.CompanyID, resp, summary)
	case kind.IsPull():
		err = h.importListEntries(ctx, uow, in.CompanyID, resp, summary)
	case kind.IsPush():
		err = h.linkPushResult(ctx, uow, in.Operation, resp, summary)
	default:
		err = fmt.Errorf("%w: %q", ErrInvalidOperationKind, kind)
	}
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(); err != nil {
		return nil, err
	}
	return summary, nil
}

func (h *syncResponseHandler) importListEntries(ctx context.Context, uow unitofwork.UnitOfWork, companyID uuid.UUID, resp *qbxml.Response, summary *HandleSummary) error {
	var entries []*entity.ListEntry
	for _, v := range resp.Vendors {
		entries = append(entries, &entity.ListEntry{
			CompanyId: companyID, Kind: entity.ListVendor, ListId: v.ListID,
			Name: v.Name, FullName: v.Name, IsActive: v.IsActive,
			EditSequence: v.EditSequence, Balance: v.Balance,
		})
	}
	for _, c := range resp.Customers {
		entries = append(entries, &entity.ListEntry{
			CompanyId: companyID, Kind: entity.ListCustomer, ListId: c.ListID,
			Name: c.Name, FullName: c.FullName, IsActive: c.IsActive,
			EditSequence: c.EditSequence, Balance: c.Balance,
		})
	}
	for _, a := range resp.Accounts {
		entries = append(entries, &entity.ListEntry{
			CompanyId: companyID, Kind: entity.ListAccount, ListId: a.ListID,
			Name: a.Name, FullName: a.FullName, IsActive: a.IsActive,
			AccountType: a.AccountType, EditSequence: a.EditSequence, Balance: a.Balance,
		})
	}
	if err := uow.ListEntryRepository().UpsertByListID(ctx, entries); err != nil {
		return err
	}
	summary.ListEntries = len(entries)
	return nil
}

func (h *syncResponseHandler) importTransactions(ctx context.Context, uow unitofwork.UnitOfWork, companyID uuid.UUID, resp *qbxml.Response, summary *HandleSummary) error {
	repo := uow.TransactionRepository()
	existing, err := repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return err
	}

	byID := make(map[string]*entity.Transaction, len(existing))
	locals := make([]reconcile.Local, 0, len(existing))
	for _, t := range existing {
		byID[t.Id.String()] = t
		locals = append(locals, toLocal(t))
	}

	now := time.Now().UTC()
	for _, pulled := range resp.Transactions() {
		verdict := h.engine.Evaluate(toPulled(pulled), locals)
		action := h.policy.Resolve(verdict)
		match := byID[verdict.MatchID]
		if match == nil {
			action = reconcile.ActionCreate
		}

		// A match already linked to a different QuickBooks record cannot be
		// relinked; let a human decide.
		if (action == reconcile.ActionSkip || action == reconcile.ActionUpdate) &&
			match.ExternalId != "" && match.ExternalId != pulled.TxnID {
			action = reconcile.ActionReview
		}

		switch action {
		case reconcile.ActionSkip:
			summary.Skipped++
			switch {
			case match.ExternalId == "":
				// The local copy already exists remotely; link it so it is not pushed.
				if err := h.refresh(ctx, repo, match, pulled, now); err != nil {
					return err
				}
				locals = replaceLocal(locals, match)
				summary.Linked++
			case match.EditSequence != pulled.EditSequence:
				if err := h.refresh(ctx, repo, match, pulled, now); err != nil {
					return err
				}
				locals = replaceLocal(locals, match)
			}
			continue

		case reconcile.ActionUpdate:
			if err := h.refresh(ctx, repo, match, pulled, now); err != nil {
				return err
			}
			locals = replaceLocal(locals, match)
			summary.Updated++
			continue
		}

		txn := fromPulled(companyID, pulled, now)
		if action == reconcile.ActionReview {
			txn.SyncStatus = entity.TxnNeedsReview
			if match != nil {
				id := match.Id
				txn.ReviewCandidateId = &id
			}
			summary.Review++
		} else {
			summary.Created++
		}
		if err := repo.UpsertByExternalID(ctx, txn); err != nil {
			return err
		}
		byID[txn.Id.String()] = txn
		locals = append(locals, toLocal(txn))

		h.logger.Debug("SYNC_IMPORT", "Pulled transaction stored", map[string]interface{}{
			"txn_id":     pulled.TxnID,
			"action":     string(action),
			"confidence": verdict.Confidence,
			"reason":     verdict.Reason,
		})
	}
	return nil
}

// link ties local to the pulled record without touching its content.
func (h *syncResponseHandler) link(ctx context.Context, repo contract.TransactionRepository, local *entity.Transaction, pulled qbxml.PulledTxn, now time.Time) error {
	local.ExternalId = pulled.TxnID
	local.ExternalType = pulled.Type
	local.EditSequence = pulled.EditSequence
	local.SyncStatus = entity.TxnSynced
	local.NeedsPush = false
	local.LastSyncedAt = &now
	return repo.Update(ctx, local)
}

// refresh links local to the pulled record and copies the QuickBooks-owned
// fields, so the next modify starts from what QuickBooks holds.
func (h *syncResponseHandler) refresh(ctx context.Context, repo contract.TransactionRepository, local *entity.Transaction, pulled qbxml.PulledTxn, now time.Time) error {
	local.Amount = pulled.Amount
	local.TxnDate = pulled.TxnDate
	local.Payee = pulled.Payee
	local.AccountName = pulled.Account
	local.RefNumber = pulled.RefNumber
	local.Memo = pulled.Memo
	local.Lines = entity.TransactionLines{Expense: pulled.ExpenseLines, Item: pulled.ItemLines}
	return h.link(ctx, repo, local, pulled, now)
}

func (h *syncResponseHandler) linkPushResult(ctx context.Context, uow unitofwork.UnitOfWork, op *entity.SyncOperation, resp *qbxml.Response, summary *HandleSummary) error {
	pulled := resp.Transactions()
	if len(pulled) == 0 {
		return fmt.Errorf("%s response carried no transaction", op.Kind)
	}
	if op.Params.LocalTransactionID == "" {
		return nil
	}
	localID, err := uuid.Parse(op.Params.LocalTransactionID)
	if err != nil {
		return fmt.Errorf("bad local transaction id %q: %w", op.Params.LocalTransactionID, err)
	}

	repo := uow.TransactionRepository()
	local, err := repo.FindByID(ctx, localID)
	if err != nil {
		return err
	}
	if local == nil {
		h.logger.Warn("SYNC_IMPORT", "Pushed transaction no longer exists locally", map[string]interface{}{
			"transaction_id": localID.String(),
			"txn_id":         pulled[0].TxnID,
		})
		return nil
	}

	if err := h.link(ctx, repo, local, pulled[0], time.Now().UTC()); err != nil {
		return err
	}
	summary.Linked++
	return nil
}

func toPulled(p qbxml.PulledTxn) reconcile.Pulled {
	return reconcile.Pulled{
		ExternalID: p.TxnID,
		Type:       p.Type,
		Amount:     p.Amount,
		Date:       p.TxnDate,
		Payee:      p.Payee,
		RefNumber:  p.RefNumber,
		Memo:       p.Memo,
	}
}

func toLocal(t *entity.Transaction) reconcile.Local {
	return reconcile.Local{
		ID:         t.Id.String(),
		ExternalID: t.ExternalId,
		Amount:     t.Amount,
		Date:       t.TxnDate,
		Payee:      t.Payee,
		RefNumber:  t.RefNumber,
		Memo:       t.Memo,
	}
}

func replaceLocal(locals []reconcile.Local, t *entity.Transaction) []reconcile.Local {
	id := t.Id.String()
	for i := range locals {
		if locals[i].ID == id {
			locals[i] = toLocal(t)
			break
		}
	}
	return locals
}

func fromPulled(companyID uuid.UUID, p qbxml.PulledTxn, now time.Time) *entity.Transaction {
	return &entity.Transaction{
		Id:           uuid.New(),
		CompanyId:    companyID,
		ExternalId:   p.TxnID,
		ExternalType: p.Type,
		EditSequence: p.EditSequence,
		Amount:       p.Amount,
		TxnDate:      p.TxnDate,
		Payee:        p.Payee,
		AccountName:  p.Account,
		RefNumber:    p.RefNumber,
		Memo:         p.Memo,
		Lines:        entity.TransactionLines{Expense: p.ExpenseLines, Item: p.ItemLines},
		SyncStatus:   entity.TxnSynced,
		LastSyncedAt: &now,
	}
}
