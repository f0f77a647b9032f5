package service

import "errors"

var (
	ErrCompanyNotFound      = errors.New("company not found")
	ErrCompanyInactive      = errors.New("company is inactive")
	ErrInvalidOperationKind = errors.New("invalid operation kind")
	ErrInvalidBundle        = errors.New("invalid sync bundle")
	ErrSessionNotFound      = errors.New("sync session not found")
)
