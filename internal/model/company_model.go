package model

import (
	"time"

	"github.com/google/uuid"
)

type Company struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Code            string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name            string    `gorm:"type:varchar(255);not null"`
	CompanyFilePath string    `gorm:"type:text"`
	IsActive        bool      `gorm:"not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Company) TableName() string {
	return "companies"
}
