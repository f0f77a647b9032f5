package specification

import (
	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/pkg/qbxml"

	"gorm.io/gorm"
)

type ByTicket struct {
	Ticket string
}

func (s ByTicket) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_ticket = ?", s.Ticket)
}

type ByOperationStatus struct {
	Statuses []entity.OperationStatus
}

func (s ByOperationStatus) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, 0, len(s.Statuses))
	for _, st := range s.Statuses {
		values = append(values, string(st))
	}
	return db.Where("status IN ?", values)
}

func WithStatus(statuses ...entity.OperationStatus) Specification {
	return ByOperationStatus{Statuses: statuses}
}

type ByKind struct {
	Kind qbxml.OperationKind
}

func (s ByKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", string(s.Kind))
}

// Unclaimed matches operations no session has picked up yet.
type Unclaimed struct{}

func (s Unclaimed) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_ticket IS NULL")
}

// QueueOrder is the order operations are handed to the agent.
type QueueOrder struct{}

func (s QueueOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("sequence ASC").Order("id ASC")
}

// NewestFirst is the sync log order.
type NewestFirst struct{}

func (s NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("sequence DESC")
}
