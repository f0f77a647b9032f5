package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SyncOperation struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CompanyId     uuid.UUID      `gorm:"type:uuid;not null;index:idx_sync_operations_company_status"`
	Kind          string         `gorm:"type:varchar(50);not null"`
	Params        datatypes.JSON `gorm:"not null"`
	Status        string         `gorm:"type:varchar(20);not null;index:idx_sync_operations_company_status"`
	SessionTicket *string        `gorm:"type:varchar(64);index"`
	Sequence      int            `gorm:"not null"`
	RequestXML    *string        `gorm:"column:request_xml;type:text"`
	ResponseXML   *string        `gorm:"column:response_xml;type:text"`
	ErrorMessage  *string        `gorm:"type:text"`
	CreatedAt     time.Time      `gorm:"not null;index"`
	ClaimedAt     *time.Time
	SentAt        *time.Time
	CompletedAt   *time.Time
}

func (SyncOperation) TableName() string {
	return "sync_operations"
}

type SyncSession struct {
	Ticket    string    `gorm:"type:varchar(64);primaryKey"`
	CompanyId uuid.UUID `gorm:"type:uuid;not null;index"`
	Status    string    `gorm:"type:varchar(20);not null"`
	LastError *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	ClosedAt  *time.Time
}

func (SyncSession) TableName() string {
	return "sync_sessions"
}
