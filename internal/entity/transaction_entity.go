package entity

import (
	"time"

	"qbwc-sync-be/pkg/qbxml"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionSyncStatus string

const (
	TxnLocal       TransactionSyncStatus = "local"
	TxnSynced      TransactionSyncStatus = "synced"
	TxnNeedsReview TransactionSyncStatus = "needs_review"
)

type TransactionLines struct {
	Expense []qbxml.ExpenseLine `json:"expense,omitempty"`
	Item    []qbxml.ItemLine    `json:"item,omitempty"`
}

type Transaction struct {
	Id                uuid.UUID
	CompanyId         uuid.UUID
	ExternalId        string
	ExternalType      string
	EditSequence      string
	Amount            decimal.Decimal
	TxnDate           time.Time
	DueDate           *time.Time
	Payee             string
	// AccountName is the header account: bank or card for checks and
	// charges, A/P for bills. Expense accounts live on the lines.
	AccountName       string
	RefNumber         string
	Memo              string
	Lines             TransactionLines
	NeedsPush         bool
	SyncStatus        TransactionSyncStatus
	ReviewCandidateId *uuid.UUID
	LastSyncedAt      *time.Time
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

type ListEntryKind string

const (
	ListVendor   ListEntryKind = qbxml.ListTypeVendor
	ListCustomer ListEntryKind = qbxml.ListTypeCustomer
	ListAccount  ListEntryKind = qbxml.ListTypeAccount
)

type ListEntry struct {
	Id           uuid.UUID
	CompanyId    uuid.UUID
	Kind         ListEntryKind
	ListId       string
	Name         string
	FullName     string
	IsActive     bool
	AccountType  string
	EditSequence string
	Balance      decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type SystemLog struct {
	Id        uuid.UUID
	Level     string
	Module    string
	Message   string
	CompanyId *uuid.UUID
	Ticket    string
	Details   map[string]interface{}
	CreatedAt time.Time
}
