package service

import (
	"context"
	"crypto/subtle"
	"strings"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/repository/memory"
	"qbwc-sync-be/internal/repository/unitofwork"

	"golang.org/x/crypto/bcrypt"
)

// UsernamePrefix starts every Web Connector user name; the rest identifies
// the company by code or by a prefix of its id.
const UsernamePrefix = "sync-"

type CredentialResult struct {
	Valid           bool
	Company         *entity.Company
	CompanyFilePath string
}

type ICredentialService interface {
	// Validate returns an error only when the company store failed.
	Validate(ctx context.Context, username, password string) (*CredentialResult, error)
	ResolveCompany(ctx context.Context, identifier string) (*entity.Company, error)
}

type credentialService struct {
	uowFactory      unitofwork.RepositoryFactory
	cache           *memory.CompanyCache
	sharedSecret    string
	defaultFilePath string
}

func NewCredentialService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.CompanyCache,
	sharedSecret string,
	defaultFilePath string,
) ICredentialService {
	return &credentialService{
		uowFactory:      uowFactory,
		cache:           cache,
		sharedSecret:    sharedSecret,
		defaultFilePath: defaultFilePath,
	}
}

func (s *credentialService) Validate(ctx context.Context, username, password string) (*CredentialResult, error) {
	invalid := &CredentialResult{}

	username = strings.TrimSpace(username)
	if len(username) <= len(UsernamePrefix) || !strings.EqualFold(username[:len(UsernamePrefix)], UsernamePrefix) {
		return invalid, nil
	}
	if !s.secretMatches(password) {
		return invalid, nil
	}

	company, err := s.ResolveCompany(ctx, username[len(UsernamePrefix):])
	if err != nil {
		return nil, err
	}
	if company == nil || !company.IsActive {
		return invalid, nil
	}

	filePath := company.CompanyFilePath
	if filePath == "" {
		filePath = s.defaultFilePath
	}
	return &CredentialResult{Valid: true, Company: company, CompanyFilePath: filePath}, nil
}

// ResolveCompany looks the identifier up by code first, then by id prefix.
func (s *credentialService) ResolveCompany(ctx context.Context, identifier string) (*entity.Company, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, nil
	}
	if s.cache != nil {
		if company, ok := s.cache.Get(identifier); ok {
			return company, nil
		}
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).CompanyRepository()
	company, err := repo.FindByCode(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if company == nil {
		company, err = repo.FindByIDPrefix(ctx, identifier)
		if err != nil {
			return nil, err
		}
	}

	if company != nil && s.cache != nil {
		s.cache.Save(identifier, company)
	}
	return company, nil
}

func (s *credentialService) secretMatches(password string) bool {
	if s.sharedSecret == "" || password == "" {
		return false
	}
	if strings.HasPrefix(s.sharedSecret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(s.sharedSecret), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.sharedSecret), []byte(password)) == 1
}
