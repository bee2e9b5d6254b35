package persistence

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase wraps a sqlmock connection in our Database type.
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return &Database{DB: gormDB}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	// Ping monitoring makes sqlmock assert every Ping is expected,
	// including the one GORM issues while opening the connection.
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer mockDB.Close()

	mock.ExpectPing()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	db := &Database{DB: gormDB}

	mock.ExpectPing()
	require.NoError(t, db.Ping())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Close(t *testing.T) {
	db, mock, _ := newMockDatabase(t)

	mock.ExpectClose()

	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	require.NoError(t, err)

	// The mock pool holds exactly the one connection sqlmock opened.
	assert.Equal(t, 1, stats.OpenConnections)
	assert.GreaterOrEqual(t, stats.Idle+stats.InUse, 0)
}

func TestDatabase_QueriesFlowThroughGorm(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	type salaryRegister struct {
		ID       uint
		TenantID string
		Period   string
	}

	tenantID := "550e8400-e29b-41d4-a716-446655440000"

	mock.ExpectQuery(`SELECT \* FROM "salary_registers" WHERE tenant_id = \$1 AND period = \$2`).
		WithArgs(tenantID, "2026-08").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "period"}).
			AddRow(1, tenantID, "2026-08"))

	var results []salaryRegister
	err := db.DB.Where("tenant_id = ?", tenantID).
		Where("period = ?", "2026-08").
		Find(&results).Error
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "2026-08", results[0].Period)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_TransactionCommitAndRollback(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		type bonusEntry struct {
			ID     uint
			Reason string
		}

		mock.ExpectBegin()
		// GORM on PostgreSQL inserts via Query with a RETURNING clause.
		mock.ExpectQuery(`INSERT INTO "bonus_entries"`).
			WithArgs("quarterly award").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := db.DB.Transaction(func(tx *gorm.DB) error {
			return tx.Create(&bonusEntry{Reason: "quarterly award"}).Error
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.DB.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
