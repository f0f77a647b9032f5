package mapper

import (
	"encoding/json"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/model"

	"gorm.io/datatypes"
)

type TransactionMapper struct{}

func NewTransactionMapper() *TransactionMapper {
	return &TransactionMapper{}
}

func (m *TransactionMapper) ToEntity(t *model.Transaction) *entity.Transaction {
	if t == nil {
		return nil
	}
	var lines entity.TransactionLines
	if len(t.Lines) > 0 {
		_ = json.Unmarshal(t.Lines, &lines)
	}
	return &entity.Transaction{
		Id:                t.Id,
		CompanyId:         t.CompanyId,
		ExternalId:        deref(t.ExternalId),
		ExternalType:      t.ExternalType,
		EditSequence:      t.EditSequence,
		Amount:            t.Amount,
		TxnDate:           t.TxnDate,
		DueDate:           t.DueDate,
		Payee:             t.Payee,
		AccountName:       t.AccountName,
		RefNumber:         t.RefNumber,
		Memo:              t.Memo,
		Lines:             lines,
		NeedsPush:         t.NeedsPush,
		SyncStatus:        entity.TransactionSyncStatus(t.SyncStatus),
		ReviewCandidateId: t.ReviewCandidateId,
		LastSyncedAt:      t.LastSyncedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         timePtr(t.UpdatedAt),
	}
}

func (m *TransactionMapper) ToModel(t *entity.Transaction) (*model.Transaction, error) {
	if t == nil {
		return nil, nil
	}
	lines, err := json.Marshal(t.Lines)
	if err != nil {
		return nil, err
	}
	status := t.SyncStatus
	if status == "" {
		status = entity.TxnLocal
	}
	out := &model.Transaction{
		Id:                t.Id,
		CompanyId:         t.CompanyId,
		ExternalId:        ptr(t.ExternalId),
		ExternalType:      t.ExternalType,
		EditSequence:      t.EditSequence,
		Amount:            t.Amount,
		TxnDate:           t.TxnDate,
		DueDate:           t.DueDate,
		Payee:             t.Payee,
		AccountName:       t.AccountName,
		RefNumber:         t.RefNumber,
		Memo:              t.Memo,
		Lines:             datatypes.JSON(lines),
		NeedsPush:         t.NeedsPush,
		SyncStatus:        string(status),
		ReviewCandidateId: t.ReviewCandidateId,
		LastSyncedAt:      t.LastSyncedAt,
		CreatedAt:         t.CreatedAt,
	}
	if t.UpdatedAt != nil {
		out.UpdatedAt = *t.UpdatedAt
	}
	return out, nil
}

func (m *TransactionMapper) ToEntities(models []*model.Transaction) []*entity.Transaction {
	out := make([]*entity.Transaction, 0, len(models))
	for _, t := range models {
		out = append(out, m.ToEntity(t))
	}
	return out
}

type ListEntryMapper struct{}

func NewListEntryMapper() *ListEntryMapper {
	return &ListEntryMapper{}
}

func (m *ListEntryMapper) ToEntity(e *model.QBListEntry) *entity.ListEntry {
	if e == nil {
		return nil
	}
	return &entity.ListEntry{
		Id:           e.Id,
		CompanyId:    e.CompanyId,
		Kind:         entity.ListEntryKind(e.Kind),
		ListId:       e.ListId,
		Name:         e.Name,
		FullName:     e.FullName,
		IsActive:     e.IsActive,
		AccountType:  e.AccountType,
		EditSequence: e.EditSequence,
		Balance:      e.Balance,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    timePtr(e.UpdatedAt),
	}
}

func (m *ListEntryMapper) ToModel(e *entity.ListEntry) *model.QBListEntry {
	if e == nil {
		return nil
	}
	return &model.QBListEntry{
		Id:           e.Id,
		CompanyId:    e.CompanyId,
		Kind:         string(e.Kind),
		ListId:       e.ListId,
		Name:         e.Name,
		FullName:     e.FullName,
		IsActive:     e.IsActive,
		AccountType:  e.AccountType,
		EditSequence: e.EditSequence,
		Balance:      e.Balance,
		CreatedAt:    e.CreatedAt,
	}
}

func (m *ListEntryMapper) ToEntities(models []*model.QBListEntry) []*entity.ListEntry {
	out := make([]*entity.ListEntry, 0, len(models))
	for _, e := range models {
		out = append(out, m.ToEntity(e))
	}
	return out
}

type SystemLogMapper struct{}

func NewSystemLogMapper() *SystemLogMapper {
	return &SystemLogMapper{}
}

func (m *SystemLogMapper) ToModel(l *entity.SystemLog) (*model.SystemLog, error) {
	if l == nil {
		return nil, nil
	}
	out := &model.SystemLog{
		Id:        l.Id,
		Level:     l.Level,
		Module:    ptr(l.Module),
		Message:   l.Message,
		CompanyId: l.CompanyId,
		Ticket:    ptr(l.Ticket),
		CreatedAt: l.CreatedAt,
	}
	if len(l.Details) > 0 {
		details, err := json.Marshal(l.Details)
		if err != nil {
			return nil, err
		}
		out.Details = datatypes.JSON(details)
	}
	return out, nil
}

func (m *SystemLogMapper) ToEntity(l *model.SystemLog) *entity.SystemLog {
	if l == nil {
		return nil
	}
	var details map[string]interface{}
	if len(l.Details) > 0 {
		_ = json.Unmarshal(l.Details, &details)
	}
	return &entity.SystemLog{
		Id:        l.Id,
		Level:     l.Level,
		Module:    deref(l.Module),
		Message:   l.Message,
		CompanyId: l.CompanyId,
		Ticket:    deref(l.Ticket),
		Details:   details,
		CreatedAt: l.CreatedAt,
	}
}
