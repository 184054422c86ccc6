package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type mockUserRepo struct {
	users   map[string]*models.User
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
	}
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error { return nil }

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.tokens[token.Token] = token
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for _, t := range m.tokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error { return nil }

func authFixture(t *testing.T) (*mockUserRepo, *mockAuditWriter, *AuthService) {
	t.Helper()
	repo := newMockUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["user-1"] = &models.User{
		ID:           "user-1",
		Email:        "admin@roblesmun.org",
		PasswordHash: string(hash),
		FullName:     "Admin One",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	audits := &mockAuditWriter{}
	svc := NewAuthService(repo, audits, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "roblesmun-api",
	})
	return repo, audits, svc
}

func TestLoginIssuesTokensAndAudits(t *testing.T) {
	repo, audits, svc := authFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@roblesmun.org", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	assert.Contains(t, repo.tokens, resp.RefreshToken)

	require.Len(t, audits.entries, 1)
	assert.Equal(t, models.AuditActionLogin, audits.entries[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	_, _, svc := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@roblesmun.org", Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsUnknownEmailWithSameMessage(t *testing.T) {
	_, _, svc := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "ghost@roblesmun.org", Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	repo, _, svc := authFixture(t)
	repo.users["user-1"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@roblesmun.org", Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	repo, _, svc := authFixture(t)
	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email: "admin@roblesmun.org", Password: "secret123",
	})
	require.NoError(t, err)

	renewed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, renewed.RefreshToken)
	assert.True(t, repo.tokens[resp.RefreshToken].Revoked)

	// The consumed token cannot be replayed.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	repo, _, svc := authFixture(t)
	repo.tokens["stale"] = &models.RefreshToken{
		ID: "tok-1", UserID: "user-1", Token: "stale",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "stale"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	_, _, svc := authFixture(t)

	other := NewAuthService(newMockUserRepo(), nil, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})
	token, err := other.generateAccessToken(&models.User{ID: "user-9", Role: models.RoleStaff})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestMeReturnsProfile(t *testing.T) {
	_, _, svc := authFixture(t)

	info, err := svc.Me(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Admin One", info.FullName)

	_, err = svc.Me(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
