package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

func newCommitteeMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func committeeRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "topic", "description", "level", "seat_names", "open", "created_at", "updated_at"}).
		AddRow("com-1", "UNHRC", "Digital rights", "Human rights council", "intermediate", `{France,Chile,Kenya}`, true, now, now)
}

func TestCommitteeRepositoryList(t *testing.T) {
	db, mock, cleanup := newCommitteeMock(t)
	defer cleanup()
	repo := NewCommitteeRepository(db)

	open := true
	mock.ExpectQuery("SELECT (.+) FROM committees WHERE open = \\$1 ORDER BY name ASC").
		WithArgs(open).
		WillReturnRows(committeeRows())

	committees, err := repo.List(context.Background(), models.CommitteeFilter{Open: &open})
	require.NoError(t, err)
	require.Len(t, committees, 1)
	assert.Equal(t, "UNHRC", committees[0].Name)
	assert.Equal(t, 3, len(committees[0].SeatNames))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newCommitteeMock(t)
	defer cleanup()
	repo := NewCommitteeRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM committees WHERE id = \\$1").
		WithArgs("com-1").
		WillReturnRows(committeeRows())

	committee, err := repo.FindByID(context.Background(), "com-1")
	require.NoError(t, err)
	assert.Equal(t, "com-1", committee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newCommitteeMock(t)
	defer cleanup()
	repo := NewCommitteeRepository(db)

	mock.ExpectExec("INSERT INTO committees").
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	committee := &models.Committee{
		Name:      "UNSC",
		Topic:     "Maritime security",
		Level:     models.CommitteeLevelAdvanced,
		SeatNames: []string{"France", "Chile"},
		Open:      true,
	}
	err := repo.Create(context.Background(), committee)
	require.NoError(t, err)
	assert.NotEmpty(t, committee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitteeRepositoryUpdateNotFound(t *testing.T) {
	db, mock, cleanup := newCommitteeMock(t)
	defer cleanup()
	repo := NewCommitteeRepository(db)

	mock.ExpectExec("UPDATE committees SET").
		WithArgs(
			"missing", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Committee{ID: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
