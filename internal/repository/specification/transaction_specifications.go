package specification

import (
	"qbwc-sync-be/internal/entity"

	"gorm.io/gorm"
)

// NeedsPush matches local transactions waiting to be sent to QuickBooks.
type NeedsPush struct{}

func (s NeedsPush) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("needs_push = ?", true)
}

type ByExternalID struct {
	ExternalID string
}

func (s ByExternalID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("external_id = ?", s.ExternalID)
}

type ByListKind struct {
	Kind entity.ListEntryKind
}

func (s ByListKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", string(s.Kind))
}
