package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockParameterScoreRepository creates a GormParameterScoreRepository with a mocked SQL connection
func newMockParameterScoreRepository(t *testing.T) (*GormParameterScoreRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormParameterScoreRepository(gormDB), mock, mockDB
}

func testParameterScores(tenantID, userID uuid.UUID, period valueobject.Period) []performance.ParameterScore {
	return []performance.ParameterScore{
		{
			BaseEntity:      shared.NewBaseEntity(),
			TenantID:        tenantID,
			UserID:          userID,
			Period:          period,
			ParameterID:     uuid.New(),
			ParameterCode:   "attendance",
			ParameterName:   "Attendance",
			Weight:          40,
			RawValue:        95,
			NormalizedScore: 95,
			WeightedScore:   38,
		},
		{
			BaseEntity:      shared.NewBaseEntity(),
			TenantID:        tenantID,
			UserID:          userID,
			Period:          period,
			ParameterID:     uuid.New(),
			ParameterCode:   "task_completion",
			ParameterName:   "Task Completion",
			Weight:          60,
			RawValue:        80,
			NormalizedScore: 80,
			WeightedScore:   48,
		},
	}
}

func TestGormParameterScoreRepository_SaveAll(t *testing.T) {
	t.Run("inserts the batch in one transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockParameterScoreRepository(t)
		defer mockDB.Close()

		period, err := valueobject.ParsePeriod("2026-07")
		require.NoError(t, err)
		scores := testParameterScores(uuid.New(), uuid.New(), period)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "parameter_scores"`).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		saveErr := repo.SaveAll(context.Background(), scores)

		assert.NoError(t, saveErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and reports already exists on a duplicate row", func(t *testing.T) {
		repo, mock, mockDB := newMockParameterScoreRepository(t)
		defer mockDB.Close()

		period, err := valueobject.ParsePeriod("2026-07")
		require.NoError(t, err)
		scores := testParameterScores(uuid.New(), uuid.New(), period)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "parameter_scores"`).
			WillReturnError(gorm.ErrDuplicatedKey)
		mock.ExpectRollback()

		saveErr := repo.SaveAll(context.Background(), scores)

		assert.ErrorIs(t, saveErr, shared.ErrAlreadyExists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ignores empty batches", func(t *testing.T) {
		repo, mock, mockDB := newMockParameterScoreRepository(t)
		defer mockDB.Close()

		err := repo.SaveAll(context.Background(), nil)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormParameterScoreRepository_FindForUserPeriod(t *testing.T) {
	t.Run("returns scores ordered by parameter code", func(t *testing.T) {
		repo, mock, mockDB := newMockParameterScoreRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		userID := uuid.New()
		period, err := valueobject.ParsePeriod("2026-07")
		require.NoError(t, err)

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "user_id", "period", "parameter_id", "parameter_code", "weight", "normalized_score", "weighted_score"}).
			AddRow(uuid.New(), tenantID, userID, "2026-07", uuid.New(), "attendance", 40.0, 95.0, 38.0).
			AddRow(uuid.New(), tenantID, userID, "2026-07", uuid.New(), "task_completion", 60.0, 80.0, 48.0)

		mock.ExpectQuery(`SELECT \* FROM "parameter_scores" WHERE tenant_id = \$1 AND user_id = \$2 AND period = \$3 ORDER BY parameter_code ASC`).
			WithArgs(tenantID, userID, "2026-07").
			WillReturnRows(rows)

		scores, findErr := repo.FindForUserPeriod(context.Background(), tenantID, userID, period)

		assert.NoError(t, findErr)
		require.Len(t, scores, 2)
		assert.Equal(t, "attendance", scores[0].ParameterCode)
		assert.Equal(t, "task_completion", scores[1].ParameterCode)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice when nothing stored", func(t *testing.T) {
		repo, mock, mockDB := newMockParameterScoreRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		userID := uuid.New()
		period, err := valueobject.ParsePeriod("2026-06")
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT \* FROM "parameter_scores" WHERE tenant_id = \$1 AND user_id = \$2 AND period = \$3 ORDER BY parameter_code ASC`).
			WithArgs(tenantID, userID, "2026-06").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		scores, findErr := repo.FindForUserPeriod(context.Background(), tenantID, userID, period)

		assert.NoError(t, findErr)
		assert.Empty(t, scores)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormParameterScoreRepository_CountByParameter(t *testing.T) {
	t.Run("counts stored scores referencing a parameter", func(t *testing.T) {
		repo, mock, mockDB := newMockParameterScoreRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		parameterID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "parameter_scores" WHERE tenant_id = \$1 AND parameter_id = \$2`).
			WithArgs(tenantID, parameterID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

		count, err := repo.CountByParameter(context.Background(), tenantID, parameterID)

		assert.NoError(t, err)
		assert.Equal(t, int64(12), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
