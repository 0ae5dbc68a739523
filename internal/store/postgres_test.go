package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockCollection(t *testing.T, name string) (*sql.DB, sqlmock.Sqlmock, *PostgresCollection) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, NewPostgresCollection(db, name)
}

func TestPostgresCollection_Get(t *testing.T) {
	db, mock, c := setupMockCollection(t, "tanks")
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("65f1c0ffee0000000000abcd", []byte(`{"name":"north","level":3.5}`))
	mock.ExpectQuery(`SELECT id, data FROM documents WHERE collection = \$1 AND id = \$2`).
		WithArgs("tanks", "65f1c0ffee0000000000abcd").
		WillReturnRows(rows)

	var got testDoc
	require.NoError(t, c.Get(context.Background(), "65f1c0ffee0000000000abcd", &got))
	assert.Equal(t, "65f1c0ffee0000000000abcd", got.ID)
	assert.Equal(t, "north", got.Name)
	assert.Equal(t, 3.5, got.Level)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_GetNotFound(t *testing.T) {
	db, mock, c := setupMockCollection(t, "tanks")
	defer db.Close()

	mock.ExpectQuery(`SELECT id, data FROM documents`).
		WithArgs("tanks", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "data"}))

	var got testDoc
	err := c.Get(context.Background(), "nope", &got)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_Recent(t *testing.T) {
	db, mock, c := setupMockCollection(t, "samples")
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("b", []byte(`{"name":"second"}`)).
		AddRow("a", []byte(`{"name":"first"}`))
	mock.ExpectQuery(`ORDER BY seq DESC LIMIT \$2`).
		WithArgs("samples", 2).
		WillReturnRows(rows)

	var got []testDoc
	require.NoError(t, c.Recent(context.Background(), 2, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "first", got[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_InsertStripsID(t *testing.T) {
	db, mock, c := setupMockCollection(t, "tanks")
	defer db.Close()

	mock.ExpectExec(`INSERT INTO documents \(collection, id, data\)`).
		WithArgs("tanks", sqlmock.AnyArg(), `{"level":1,"name":"t"}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := c.Insert(context.Background(), testDoc{ID: "client-sent", Name: "t", Level: 1})
	require.NoError(t, err)
	assert.True(t, IsObjectID(id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_UpdateReturnsMatched(t *testing.T) {
	db, mock, c := setupMockCollection(t, "tanks")
	defer db.Close()

	mock.ExpectExec(`UPDATE documents SET data = data \|\| \$3::jsonb`).
		WithArgs("tanks", "x", `{"level":9}`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := c.Update(context.Background(), "x", map[string]any{"level": 9})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_Upsert(t *testing.T) {
	db, mock, c := setupMockCollection(t, "preferences")
	defer db.Close()

	mock.ExpectExec(`ON CONFLICT \(collection, id\)`).
		WithArgs("preferences", "user-preference", `{"user_temp":25}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, c.Upsert(context.Background(), "user-preference", map[string]any{"user_temp": 25.0}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCollection_DeleteExcept(t *testing.T) {
	db, mock, c := setupMockCollection(t, "profile")
	defer db.Close()

	mock.ExpectExec(`DELETE FROM documents WHERE collection = \$1 AND id <> \$2`).
		WithArgs("profile", "keep").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := c.DeleteExcept(context.Background(), "keep")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS documents`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, NewPostgresStore(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
