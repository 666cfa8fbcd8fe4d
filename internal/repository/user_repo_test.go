package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/arenaworks/arena-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

// jsonContaining matches a JSON column argument whose serialized form
// contains the given fragment.
type jsonContaining struct {
	fragment string
}

func (j jsonContaining) Match(v driver.Value) bool {
	switch value := v.(type) {
	case string:
		return strings.Contains(value, j.fragment)
	case []byte:
		return strings.Contains(string(value), j.fragment)
	}
	return false
}

var dependentTables = []string{
	"activities",
	"user_profiles",
	"email_opt_ins",
	"user_stats",
	"user_game_stats",
	"linked_accounts",
	"password_resets",
	"email_verifications",
	"game_applications",
}

func TestDeleteWithDependentsPatchesRosters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	for _, table := range dependentTables {
		mock.ExpectExec(`DELETE FROM "` + table + `"`).
			WithArgs(uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	storage := `{"players":{"7":{"id":7,"team":"red","username":"shadowfax"},"9":{"id":9,"team":"blue","username":"ember"}}}`
	mock.ExpectQuery(`SELECT (.+) FROM "games"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "storage"}).
			AddRow(1, "Winter Clash", storage))

	mock.ExpectExec(`UPDATE "games" SET`).
		WithArgs("Winter Clash", jsonContaining{fragment: model.DeletedPlayerName}, sqlmock.AnyArg(), sqlmock.AnyArg(), uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`DELETE FROM "users"`).
		WithArgs(uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteWithDependents(context.Background(), &model.User{ID: 7, Username: "shadowfax"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithDependentsKeepsTeammates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	for _, table := range dependentTables {
		mock.ExpectExec(`DELETE FROM "` + table + `"`).
			WithArgs(uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	storage := `{"players":{"7":{"id":7,"team":"red","username":"shadowfax"},"9":{"id":9,"team":"blue","username":"ember"}}}`
	mock.ExpectQuery(`SELECT (.+) FROM "games"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "storage"}).
			AddRow(1, "Winter Clash", storage))

	// The teammate's slot and the patched slot's team survive untouched.
	mock.ExpectExec(`UPDATE "games" SET`).
		WithArgs("Winter Clash", jsonContaining{fragment: `"ember"`}, sqlmock.AnyArg(), sqlmock.AnyArg(), uint(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`DELETE FROM "users"`).
		WithArgs(uint(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteWithDependents(context.Background(), &model.User{ID: 7})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithDependentsNoGames(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	for _, table := range dependentTables {
		mock.ExpectExec(`DELETE FROM "` + table + `"`).
			WithArgs(uint(3)).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectQuery(`SELECT (.+) FROM "games"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "storage"}))
	mock.ExpectExec(`DELETE FROM "users"`).
		WithArgs(uint(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteWithDependents(context.Background(), &model.User{ID: 3})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithDependentsRollsBackOnFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	boom := errors.New("connection reset")

	mock.ExpectBegin()
	for _, table := range dependentTables[:3] {
		mock.ExpectExec(`DELETE FROM "` + table + `"`).
			WithArgs(uint(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(`DELETE FROM "user_stats"`).
		WithArgs(uint(7)).
		WillReturnError(boom)
	mock.ExpectRollback()

	err := repo.DeleteWithDependents(context.Background(), &model.User{ID: 7})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
