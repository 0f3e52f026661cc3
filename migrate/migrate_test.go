package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cornucopia-rs/cornucopia-go/migrate"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRunAppliesFilesInOrderAndRecordsThem(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0002_add_col.sql", "ALTER TABLE author ADD COLUMN bio text;")
	writeFile(t, dir, "0001_init.sql", "CREATE TABLE author (id serial primary key);")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations (\n\tid text PRIMARY KEY,\n\tapplied_at timestamptz NOT NULL DEFAULT now()\n)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM schema_migrations").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE author (id serial primary key);").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations (id) VALUES ($1)").WithArgs("0001_init.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec("ALTER TABLE author ADD COLUMN bio text;").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations (id) VALUES ($1)").WithArgs("0002_add_col.sql").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	applied, err := migrate.Run(context.Background(), db, dir)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "0001_init.sql", applied[0].ID)
	assert.Equal(t, "0002_add_col.sql", applied[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSkipsAlreadyApplied(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0001_init.sql", "CREATE TABLE author (id serial primary key);")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations (\n\tid text PRIMARY KEY,\n\tapplied_at timestamptz NOT NULL DEFAULT now()\n)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM schema_migrations").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("0001_init.sql"))

	applied, err := migrate.Run(context.Background(), db, dir)
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRollsBackFileTransactionOnError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0001_init.sql", "CREATE TABLE author (id serial primary key);")

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations (\n\tid text PRIMARY KEY,\n\tapplied_at timestamptz NOT NULL DEFAULT now()\n)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id FROM schema_migrations").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE author (id serial primary key);").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = migrate.Run(context.Background(), db, dir)
	require.Error(t, err)
	assert.IsType(t, &migrate.FileError{}, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
