package service

import (
	"strings"
	"testing"

	"qbwc-sync-be/internal/entity"
	"qbwc-sync-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentials_Validate(t *testing.T) {
	h := newHarness(t)
	creds := NewCredentialService(h.uow, memory.NewCompanyCache(0), testSecret, `C:\Books\default.qbw`)

	res, err := creds.Validate(h.ctx, "SYNC-t1", testSecret)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, h.company.Id, res.Company.Id)
	assert.Equal(t, `C:\Books\default.qbw`, res.CompanyFilePath)

	for _, c := range [][2]string{
		{"sync-T1", ""},
		{"sync-T1", "wrong"},
		{"sync-", testSecret},
		{"T1", testSecret},
		{"sync-nobody", testSecret},
	} {
		res, err := creds.Validate(h.ctx, c[0], c[1])
		require.NoError(t, err)
		assert.False(t, res.Valid, c[0])
	}
}

func TestCredentials_ResolveByIDPrefix(t *testing.T) {
	h := newHarness(t)
	creds := NewCredentialService(h.uow, nil, testSecret, "")

	prefix := strings.Split(h.company.Id.String(), "-")[0]
	res, err := creds.Validate(h.ctx, "sync-"+prefix, testSecret)
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, h.company.Id, res.Company.Id)
}

func TestCredentials_CompanyFilePathAndInactive(t *testing.T) {
	h := newHarness(t)
	creds := NewCredentialService(h.uow, nil, testSecret, `C:\Books\default.qbw`)
	repo := h.uow.NewUnitOfWork(h.ctx).CompanyRepository()

	require.NoError(t, repo.Create(h.ctx, &entity.Company{Code: "T2", Name: "Two", CompanyFilePath: `D:\two.qbw`, IsActive: true}))
	require.NoError(t, repo.Create(h.ctx, &entity.Company{Code: "T3", Name: "Three"}))

	res, err := creds.Validate(h.ctx, "sync-T2", testSecret)
	require.NoError(t, err)
	assert.Equal(t, `D:\two.qbw`, res.CompanyFilePath)

	res, err = creds.Validate(h.ctx, "sync-T3", testSecret)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestCredentials_BcryptSecret(t *testing.T) {
	h := newHarness(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	creds := NewCredentialService(h.uow, nil, string(hash), "")

	res, err := creds.Validate(h.ctx, "sync-T1", "hunter2")
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = creds.Validate(h.ctx, "sync-T1", string(hash))
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestCredentials_EmptySecretRejectsEveryone(t *testing.T) {
	h := newHarness(t)
	creds := NewCredentialService(h.uow, nil, "", "")

	res, err := creds.Validate(h.ctx, "sync-T1", "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
}
