package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/roblesmun/roblesmun-api/internal/models"
	appErrors "github.com/roblesmun/roblesmun-api/pkg/errors"
)

type mockCommitteeRepo struct {
	committees []models.Committee
	listCalls  int
	err        error
}

func (m *mockCommitteeRepo) List(ctx context.Context, filter models.CommitteeFilter) ([]models.Committee, error) {
	m.listCalls++
	if m.err != nil {
		return nil, m.err
	}
	if filter.Open == nil {
		return m.committees, nil
	}
	var out []models.Committee
	for _, c := range m.committees {
		if c.Open == *filter.Open {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommitteeRepo) FindByID(ctx context.Context, id string) (*models.Committee, error) {
	for i := range m.committees {
		if m.committees[i].ID == id {
			return &m.committees[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockCommitteeRepo) Create(ctx context.Context, committee *models.Committee) error {
	committee.ID = "com-new"
	m.committees = append(m.committees, *committee)
	return nil
}

func (m *mockCommitteeRepo) Update(ctx context.Context, committee *models.Committee) error {
	for i := range m.committees {
		if m.committees[i].ID == committee.ID {
			m.committees[i] = *committee
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockCommitteeRepo) Delete(ctx context.Context, id string) error { return nil }

// mockCache is an in-memory stand-in for the redis cache repository.
type mockCache struct {
	values      map[string][]models.Committee
	invalidated int
}

func newMockCache() *mockCache {
	return &mockCache{values: make(map[string][]models.Committee)}
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.Committee)) = cached
	return nil
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value.([]models.Committee)
	return nil
}

func (m *mockCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.values = make(map[string][]models.Committee)
	m.invalidated++
	return nil
}

func committeeFixture() (*mockCommitteeRepo, *mockCache, *CommitteeService) {
	repo := &mockCommitteeRepo{committees: []models.Committee{
		{ID: "com-1", Name: "UNHRC", Topic: "Digital rights", Level: models.CommitteeLevelIntermediate, SeatNames: []string{"France", "Chile"}, Open: true},
		{ID: "com-2", Name: "UNSC", Topic: "Maritime security", Level: models.CommitteeLevelAdvanced, SeatNames: []string{"Kenya"}, Open: false},
	}}
	cache := newMockCache()
	svc := NewCommitteeService(repo, cache, time.Minute, nil, zap.NewNop())
	return repo, cache, svc
}

func TestCommitteeListServesSecondCallFromCache(t *testing.T) {
	repo, _, svc := committeeFixture()

	first, err := svc.List(context.Background(), models.CommitteeFilter{})
	require.NoError(t, err)
	second, err := svc.List(context.Background(), models.CommitteeFilter{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.listCalls)
}

func TestCommitteeMutationInvalidatesCache(t *testing.T) {
	repo, cache, svc := committeeFixture()

	_, err := svc.List(context.Background(), models.CommitteeFilter{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), UpsertCommitteeRequest{
		Name: "ECOSOC", Topic: "Trade", Level: "beginner", SeatNames: []string{"Peru"}, Open: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	_, err = svc.List(context.Background(), models.CommitteeFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCommitteeOpenSeatLabelsAreComposite(t *testing.T) {
	_, _, svc := committeeFixture()

	labels, err := svc.OpenSeatLabels(context.Background())
	require.NoError(t, err)
	assert.Contains(t, labels, "UNHRC - France")
	assert.Contains(t, labels, "UNHRC - Chile")
	// Closed committees contribute no seats.
	assert.NotContains(t, labels, "UNSC - Kenya")
}

func TestCommitteeCreateRejectsUnknownLevel(t *testing.T) {
	_, _, svc := committeeFixture()

	_, err := svc.Create(context.Background(), UpsertCommitteeRequest{
		Name: "DISEC", Topic: "Disarmament", Level: "expert", SeatNames: []string{"Chile"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCommitteeUpdateOverwritesAndInvalidates(t *testing.T) {
	repo, cache, svc := committeeFixture()

	updated, err := svc.Update(context.Background(), "com-1", UpsertCommitteeRequest{
		Name: "UNHRC", Topic: "Freedom of assembly", Level: "intermediate", SeatNames: []string{"France"}, Open: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Freedom of assembly", updated.Topic)
	assert.False(t, repo.committees[0].Open)
	assert.Equal(t, 1, cache.invalidated)
}

func TestCommitteeGetNotFound(t *testing.T) {
	_, _, svc := committeeFixture()

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
