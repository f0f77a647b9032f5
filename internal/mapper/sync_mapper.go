package mapper

import (
	"encoding/json"
	"time"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/model"
	"qbwc-sync-be/pkg/qbxml"

	"gorm.io/datatypes"
)

type CompanyMapper struct{}

func NewCompanyMapper() *CompanyMapper {
	return &CompanyMapper{}
}

func (m *CompanyMapper) ToEntity(c *model.Company) *entity.Company {
	if c == nil {
		return nil
	}
	return &entity.Company{
		Id:              c.Id,
		Code:            c.Code,
		Name:            c.Name,
		CompanyFilePath: c.CompanyFilePath,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       timePtr(c.UpdatedAt),
	}
}

func (m *CompanyMapper) ToModel(c *entity.Company) *model.Company {
	if c == nil {
		return nil
	}
	out := &model.Company{
		Id:              c.Id,
		Code:            c.Code,
		Name:            c.Name,
		CompanyFilePath: c.CompanyFilePath,
		IsActive:        c.IsActive,
		CreatedAt:       c.CreatedAt,
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = *c.UpdatedAt
	}
	return out
}

type SyncOperationMapper struct{}

func NewSyncOperationMapper() *SyncOperationMapper {
	return &SyncOperationMapper{}
}

// ToEntity decodes the stored params. Params that no longer decode are left
// zero; building the request will then fail and error the operation.
func (m *SyncOperationMapper) ToEntity(o *model.SyncOperation) *entity.SyncOperation {
	if o == nil {
		return nil
	}
	var params qbxml.Params
	if len(o.Params) > 0 {
		_ = json.Unmarshal(o.Params, &params)
	}
	return &entity.SyncOperation{
		Id:            o.Id,
		CompanyId:     o.CompanyId,
		Kind:          qbxml.OperationKind(o.Kind),
		Params:        params,
		Status:        entity.OperationStatus(o.Status),
		SessionTicket: deref(o.SessionTicket),
		Sequence:      o.Sequence,
		RequestXML:    deref(o.RequestXML),
		ResponseXML:   deref(o.ResponseXML),
		ErrorMessage:  deref(o.ErrorMessage),
		CreatedAt:     o.CreatedAt,
		ClaimedAt:     o.ClaimedAt,
		SentAt:        o.SentAt,
		CompletedAt:   o.CompletedAt,
	}
}

func (m *SyncOperationMapper) ToModel(o *entity.SyncOperation) (*model.SyncOperation, error) {
	if o == nil {
		return nil, nil
	}
	params, err := json.Marshal(o.Params)
	if err != nil {
		return nil, err
	}
	return &model.SyncOperation{
		Id:            o.Id,
		CompanyId:     o.CompanyId,
		Kind:          string(o.Kind),
		Params:        datatypes.JSON(params),
		Status:        string(o.Status),
		SessionTicket: ptr(o.SessionTicket),
		Sequence:      o.Sequence,
		RequestXML:    ptr(o.RequestXML),
		ResponseXML:   ptr(o.ResponseXML),
		ErrorMessage:  ptr(o.ErrorMessage),
		CreatedAt:     o.CreatedAt,
		ClaimedAt:     o.ClaimedAt,
		SentAt:        o.SentAt,
		CompletedAt:   o.CompletedAt,
	}, nil
}

func (m *SyncOperationMapper) ToEntities(models []*model.SyncOperation) []*entity.SyncOperation {
	out := make([]*entity.SyncOperation, 0, len(models))
	for _, o := range models {
		out = append(out, m.ToEntity(o))
	}
	return out
}

type SyncSessionMapper struct{}

func NewSyncSessionMapper() *SyncSessionMapper {
	return &SyncSessionMapper{}
}

func (m *SyncSessionMapper) ToEntity(s *model.SyncSession) *entity.SyncSession {
	if s == nil {
		return nil
	}
	return &entity.SyncSession{
		Ticket:    s.Ticket,
		CompanyId: s.CompanyId,
		Status:    entity.SessionStatus(s.Status),
		LastError: deref(s.LastError),
		CreatedAt: s.CreatedAt,
		ClosedAt:  s.ClosedAt,
	}
}

func (m *SyncSessionMapper) ToModel(s *entity.SyncSession) *model.SyncSession {
	if s == nil {
		return nil
	}
	return &model.SyncSession{
		Ticket:    s.Ticket,
		CompanyId: s.CompanyId,
		Status:    string(s.Status),
		LastError: ptr(s.LastError),
		CreatedAt: s.CreatedAt,
		ClosedAt:  s.ClosedAt,
	}
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
