package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/audit"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockAuditLogRepository creates a GormAuditLogRepository with a mocked SQL connection
func newMockAuditLogRepository(t *testing.T) (*GormAuditLogRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	return NewGormAuditLogRepository(gormDB), mock, mockDB
}

func testAuditEntry() *audit.Log {
	return &audit.Log{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		EventID:       uuid.New(),
		EventType:     "payroll.slip.finalized",
		AggregateType: "SalarySlip",
		AggregateID:   uuid.New(),
		Payload:       `{"month":"2026-07"}`,
		OccurredAt:    time.Now().UTC(),
	}
}

func TestGormAuditLogRepository_Save(t *testing.T) {
	t.Run("inserts a new entry", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditLogRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "audit_logs"`).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Save(context.Background(), testAuditEntry())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absorbs redelivered events as already exists", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditLogRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "audit_logs"`).
			WillReturnError(gorm.ErrDuplicatedKey)

		err := repo.Save(context.Background(), testAuditEntry())

		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAuditLogRepository_ExistsByEventID(t *testing.T) {
	t.Run("reports existing event", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditLogRepository(t)
		defer mockDB.Close()

		eventID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "audit_logs" WHERE event_id = \$1`).
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsByEventID(context.Background(), eventID)

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports unseen event", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditLogRepository(t)
		defer mockDB.Close()

		eventID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "audit_logs" WHERE event_id = \$1`).
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsByEventID(context.Background(), eventID)

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAuditLogRepository_FindByID(t *testing.T) {
	t.Run("returns not found for missing entry", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditLogRepository(t)
		defer mockDB.Close()

		entryID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(entryID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		entry, err := repo.FindByID(context.Background(), entryID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, entry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAuditLogRepository_FindForAggregate(t *testing.T) {
	t.Run("returns entries oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockAuditLogRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		aggregateID := uuid.New()
		first := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
		second := time.Date(2026, 7, 31, 18, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "event_id", "event_type", "aggregate_type", "aggregate_id", "occurred_at"}).
			AddRow(uuid.New(), tenantID, uuid.New(), "payroll.slip.generated", "SalarySlip", aggregateID, first).
			AddRow(uuid.New(), tenantID, uuid.New(), "payroll.slip.finalized", "SalarySlip", aggregateID, second)

		mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE tenant_id = \$1 AND aggregate_id = \$2 ORDER BY occurred_at ASC`).
			WithArgs(tenantID, aggregateID).
			WillReturnRows(rows)

		entries, err := repo.FindForAggregate(context.Background(), tenantID, aggregateID)

		assert.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "payroll.slip.generated", entries[0].EventType)
		assert.Equal(t, "payroll.slip.finalized", entries[1].EventType)
		assert.True(t, entries[0].OccurredAt.Before(entries[1].OccurredAt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
