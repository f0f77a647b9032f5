package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction is the local transaction store the sync writes pulled
// checks, bills and charges into.
type Transaction struct {
	Id                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyId         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_transactions_company_external"`
	ExternalId        *string         `gorm:"type:varchar(64);uniqueIndex:idx_transactions_company_external"`
	ExternalType      string          `gorm:"type:varchar(30);not null"`
	EditSequence      string          `gorm:"type:varchar(64)"`
	Amount            decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	TxnDate           time.Time       `gorm:"not null;index"`
	DueDate           *time.Time
	Payee             string         `gorm:"type:varchar(255)"`
	AccountName       string         `gorm:"type:varchar(255)"`
	RefNumber         string         `gorm:"type:varchar(64)"`
	Memo              string         `gorm:"type:text"`
	Lines             datatypes.JSON `gorm:"not null"`
	NeedsPush         bool           `gorm:"not null;index"`
	SyncStatus        string         `gorm:"type:varchar(20);not null"`
	ReviewCandidateId *uuid.UUID     `gorm:"type:uuid"`
	LastSyncedAt      *time.Time
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// QBListEntry mirrors a QuickBooks vendor, customer or account.
type QBListEntry struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyId    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_qb_list_entries_identity"`
	Kind         string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_qb_list_entries_identity"`
	ListId       string          `gorm:"column:list_id;type:varchar(64);not null;uniqueIndex:idx_qb_list_entries_identity"`
	Name         string          `gorm:"type:varchar(255)"`
	FullName     string          `gorm:"type:varchar(255)"`
	IsActive     bool            `gorm:"not null"`
	AccountType  string          `gorm:"type:varchar(50)"`
	EditSequence string          `gorm:"type:varchar(64)"`
	Balance      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	CreatedAt    time.Time       `gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime"`
}

func (QBListEntry) TableName() string {
	return "qb_list_entries"
}
