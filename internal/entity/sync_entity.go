package entity

import (
	"time"

	"qbwc-sync-be/pkg/qbxml"

	"github.com/google/uuid"
)

type OperationStatus string

const (
	OperationPending   OperationStatus = "pending"
	OperationSent      OperationStatus = "sent"
	OperationCompleted OperationStatus = "completed"
	OperationErrored   OperationStatus = "errored"
	// OperationCancelled marks work withdrawn before it was sent: unclaimed
	// work cancelled by a collaborator, or claimed work left when its
	// session closed.
	OperationCancelled OperationStatus = "cancelled"
)

// Finished reports whether the operation counts toward session progress.
func (s OperationStatus) Finished() bool {
	return s == OperationCompleted || s == OperationErrored || s == OperationCancelled
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionClosed    SessionStatus = "closed"
)

type Company struct {
	Id              uuid.UUID
	Code            string
	Name            string
	CompanyFilePath string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type SyncOperation struct {
	Id            uuid.UUID
	CompanyId     uuid.UUID
	Kind          qbxml.OperationKind
	Params        qbxml.Params
	Status        OperationStatus
	SessionTicket string
	Sequence      int
	RequestXML    string
	ResponseXML   string
	ErrorMessage  string
	CreatedAt     time.Time
	ClaimedAt     *time.Time
	SentAt        *time.Time
	CompletedAt   *time.Time
}

type SyncSession struct {
	Ticket    string
	CompanyId uuid.UUID
	Status    SessionStatus
	LastError string
	CreatedAt time.Time
	ClosedAt  *time.Time
}

func (s *SyncSession) IsActive() bool {
	return s != nil && s.Status == SessionActive
}
