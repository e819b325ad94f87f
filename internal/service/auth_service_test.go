package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
)

type mockAuthRepo struct {
	users     map[string]*models.User
	lastLogin map[string]time.Time
	audits    []*models.AuditLog
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if m.lastLogin == nil {
		m.lastLogin = make(map[string]time.Time)
	}
	m.lastLogin[id] = ts
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, log)
	return nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "occ-admission",
	})
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{users: map[string]*models.User{
		"u1": {
			ID:           "u1",
			Username:     "counselor",
			PasswordHash: hashPassword(t, "secret-pass"),
			FullName:     "Guidance Counselor",
			Role:         models.RoleGuidance,
			Active:       true,
		},
	}}
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "counselor", Password: "secret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleGuidance, resp.User.Role)
	assert.NotZero(t, repo.lastLogin["u1"])
	require.Len(t, repo.audits, 1)
	assert.Equal(t, models.AuditActionLogin, repo.audits[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "counselor", claims.Username)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "counselor", PasswordHash: hashPassword(t, "secret-pass"), Active: true},
	}}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "counselor", Password: "wrong"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginUnknownUser(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	repo := &mockAuthRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "counselor", PasswordHash: hashPassword(t, "secret-pass"), Active: false},
	}}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "counselor", Password: "secret-pass"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenRejectsTampering(t *testing.T) {
	repo := &mockAuthRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "counselor", PasswordHash: hashPassword(t, "secret-pass"), Active: true},
	}}
	svc := newTestAuthService(repo)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "counselor", Password: "secret-pass"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	assert.Error(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}
