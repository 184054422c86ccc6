package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type mockDelegateRepo struct {
	delegates map[string]*models.Delegate
}

func newMockDelegateRepo() *mockDelegateRepo {
	return &mockDelegateRepo{delegates: make(map[string]*models.Delegate)}
}

func (m *mockDelegateRepo) ListByRegistration(ctx context.Context, registrationID string) ([]models.DelegateDetail, error) {
	var out []models.DelegateDetail
	for _, d := range m.delegates {
		if d.RegistrationID == registrationID {
			out = append(out, models.DelegateDetail{Delegate: *d})
		}
	}
	return out, nil
}

func (m *mockDelegateRepo) FindByID(ctx context.Context, id string) (*models.Delegate, error) {
	if d, ok := m.delegates[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDelegateRepo) Create(ctx context.Context, delegate *models.Delegate) error {
	if delegate.ID == "" {
		delegate.ID = "del-new"
	}
	m.delegates[delegate.ID] = delegate
	return nil
}

func (m *mockDelegateRepo) Update(ctx context.Context, delegate *models.Delegate) error {
	m.delegates[delegate.ID] = delegate
	return nil
}

func (m *mockDelegateRepo) Delete(ctx context.Context, id string) error {
	delete(m.delegates, id)
	return nil
}

type mockRegistrationReader struct {
	regs map[string]*models.Registration
}

func (m *mockRegistrationReader) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	if r, ok := m.regs[id]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func delegateFixture() (*mockDelegateRepo, *DelegateService) {
	repo := newMockDelegateRepo()
	regs := &mockRegistrationReader{regs: map[string]*models.Registration{
		"reg-1": {
			ID:            "reg-1",
			Institution:   "Colegio Los Robles",
			AssignedSeats: []string{"UNHRC - France", "UNHRC - Chile"},
		},
	}}
	return repo, NewDelegateService(repo, regs, nil, zap.NewNop())
}

func TestDelegateCreateAcceptsAssignedSeat(t *testing.T) {
	_, svc := delegateFixture()

	delegate, err := svc.Create(context.Background(), "reg-1", UpsertDelegateRequest{
		FullName: "Lucia Paredes", SeatLabel: "UNHRC - France",
	})
	require.NoError(t, err)
	assert.Equal(t, "reg-1", delegate.RegistrationID)
}

func TestDelegateCreateAllowsEmptySeatBeforeAssignment(t *testing.T) {
	_, svc := delegateFixture()

	_, err := svc.Create(context.Background(), "reg-1", UpsertDelegateRequest{FullName: "Lucia Paredes"})
	require.NoError(t, err)
}

func TestDelegateCreateRejectsUnassignedSeat(t *testing.T) {
	_, svc := delegateFixture()

	_, err := svc.Create(context.Background(), "reg-1", UpsertDelegateRequest{
		FullName: "Lucia Paredes", SeatLabel: "UNSC - Kenya",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDelegateCreateRejectsUnknownRegistration(t *testing.T) {
	_, svc := delegateFixture()

	_, err := svc.Create(context.Background(), "missing", UpsertDelegateRequest{FullName: "Lucia Paredes"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDelegateUpdateRejectsCrossRegistrationAccess(t *testing.T) {
	repo, svc := delegateFixture()
	repo.delegates["del-1"] = &models.Delegate{ID: "del-1", RegistrationID: "reg-other", FullName: "Someone"}

	_, err := svc.Update(context.Background(), "reg-1", "del-1", UpsertDelegateRequest{FullName: "Changed"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDelegateDeleteScopedToRegistration(t *testing.T) {
	repo, svc := delegateFixture()
	repo.delegates["del-1"] = &models.Delegate{ID: "del-1", RegistrationID: "reg-1", FullName: "Someone"}

	require.NoError(t, svc.Delete(context.Background(), "reg-1", "del-1"))
	assert.Empty(t, repo.delegates)
}
