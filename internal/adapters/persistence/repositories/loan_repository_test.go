package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB opens gorm over sqlmock with the postgres dialect
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       sqlDB,
		DriverName: "postgres",
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

const claimSQL = `UPDATE "loan_applications" SET .*"assigned_to_id"=.*"status"=CASE WHEN status = .* THEN .* ELSE status END.* ` +
	`WHERE \(?id = \$\d+ AND assigned_to_id IS NULL AND status IN \(\$\d+,\$\d+\)`

func TestClaimUnassigned_Matched(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLoanApplicationRepository(db)

	mock.ExpectExec(claimSQL).WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.ClaimUnassigned(context.Background(), 7, 3, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimUnassigned_AlreadyClaimed(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLoanApplicationRepository(db)

	mock.ExpectExec(claimSQL).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.ClaimUnassigned(context.Background(), 7, 3, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimUnassigned_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLoanApplicationRepository(db)

	mock.ExpectExec(claimSQL).WillReturnError(errors.New("connection reset"))

	ok, err := repo.ClaimUnassigned(context.Background(), 7, 3, time.Now())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCountActiveGuarantees(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewLoanApplicationRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "loan_applications" WHERE .*guarantor1_id.*guarantor2_id`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountActiveGuarantees(context.Background(), 5, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
