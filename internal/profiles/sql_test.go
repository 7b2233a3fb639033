package profiles

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illegalcall/tracys-match/internal/models"
)

func setupMockDB(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	dbMock, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %s", err)
	}
	t.Cleanup(func() { dbMock.Close() })
	return NewSQLStore(sqlx.NewDb(dbMock, "sqlmock")), mock
}

func TestSQLStoreRole(t *testing.T) {
	store, mock := setupMockDB(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, role FROM profiles WHERE id = $1")).
		WithArgs(jane.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow(jane.ID, "curator"))

	role, err := store.Role(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCurator, role)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, role FROM profiles WHERE id = $1")).
		WithArgs(jane.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}))

	_, err = store.Role(ctx, jane)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, role FROM profiles WHERE id = $1")).
		WithArgs(jane.ID).
		WillReturnError(errors.New("connection reset"))

	_, err = store.Role(ctx, jane)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSetRole(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles (id, role) VALUES ($1, $2)")).
		WithArgs(jane.ID, "dater").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SetRole(context.Background(), jane, models.RoleDater))
	assert.Error(t, store.SetRole(context.Background(), jane, models.Role("")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreDaterProfile(t *testing.T) {
	store, mock := setupMockDB(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, bio, photos FROM dater_profiles WHERE id = $1")).
		WithArgs(jane.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bio", "photos"}).
			AddRow(jane.ID, "Loves hiking", "{https://cdn.example.com/a.jpg,https://cdn.example.com/b.jpg}"))

	p, err := store.DaterProfile(ctx, jane)
	require.NoError(t, err)
	assert.Equal(t, "Loves hiking", p.Bio)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, p.Photos)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, bio, photos FROM dater_profiles WHERE id = $1")).
		WithArgs(jane.ID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "bio", "photos"}))

	p, err = store.DaterProfile(ctx, jane)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, jane.ID, p.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSaveDaterProfile(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO dater_profiles (id, bio, photos) VALUES ($1, $2, $3)")).
		WithArgs(jane.ID, "Loves hiking", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.SaveDaterProfile(context.Background(), jane, models.DaterProfile{Bio: "Loves hiking"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreCreateTables(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.CreateTables(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
