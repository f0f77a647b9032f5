package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	BundlePullLists        = "pull_lists"
	BundlePullTransactions = "pull_transactions"
	BundlePullAll          = "pull_all"
	BundlePush             = "push"
	BundleFull             = "full"
)

type TriggerSyncRequest struct {
	Bundle      string     `json:"bundle" validate:"required,oneof=pull_lists pull_transactions pull_all push full"`
	FromDate    *time.Time `json:"from_date"`
	ToDate      *time.Time `json:"to_date"`
	MaxReturned int        `json:"max_returned" validate:"gte=0,lte=10000"`
}

type TriggerSyncResponse struct {
	CompanyId  uuid.UUID           `json:"company_id"`
	Bundle     string              `json:"bundle"`
	Queued     int                 `json:"queued"`
	Skipped    int                 `json:"skipped"`
	Operations []OperationResponse `json:"operations"`
}

type OperationResponse struct {
	Id            uuid.UUID  `json:"id"`
	Kind          string     `json:"kind"`
	Status        string     `json:"status"`
	SessionTicket string     `json:"session_ticket,omitempty"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

type PendingResponse struct {
	CompanyId uuid.UUID `json:"company_id"`
	Pending   int64     `json:"pending"`
}

type CancelPendingResponse struct {
	CompanyId uuid.UUID `json:"company_id"`
	Cancelled int64     `json:"cancelled"`
}

type OperationListRequest struct {
	Page     int    `query:"page" validate:"gte=0"`
	PageSize int    `query:"page_size" validate:"gte=0,lte=200"`
	Status   string `query:"status" validate:"omitempty,oneof=pending sent completed errored cancelled"`
	Kind     string `query:"kind"`
}

type OperationListResponse struct {
	Items    []OperationResponse `json:"items"`
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"page_size"`
}

type ProgressResponse struct {
	Ticket   string `json:"ticket"`
	Status   string `json:"status"`
	Percent  int    `json:"percent"`
	HasMore  bool   `json:"has_more"`
	Total    int64  `json:"total"`
	Finished int64  `json:"finished"`
}

// AuditMessage is the payload carried on the in-process audit topic.
type AuditMessage struct {
	Level     string                 `json:"level"`
	Module    string                 `json:"module"`
	Message   string                 `json:"message"`
	CompanyId *uuid.UUID             `json:"company_id,omitempty"`
	Ticket    string                 `json:"ticket,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
