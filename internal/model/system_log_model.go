package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SystemLog struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Level     string         `gorm:"type:varchar(20);not null;index"`
	Module    *string        `gorm:"type:varchar(50)"`
	Message   string         `gorm:"type:text;not null"`
	CompanyId *uuid.UUID     `gorm:"type:uuid;index"`
	Ticket    *string        `gorm:"type:varchar(64)"`
	Details   datatypes.JSON
	CreatedAt time.Time `gorm:"not null;index"`
}

func (SystemLog) TableName() string {
	return "system_logs"
}

// All lists every table, in migration order.
func All() []interface{} {
	return []interface{}{
		&Company{},
		&SyncOperation{},
		&SyncSession{},
		&Transaction{},
		&QBListEntry{},
		&SystemLog{},
	}
}
