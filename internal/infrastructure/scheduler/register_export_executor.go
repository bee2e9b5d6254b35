package scheduler

import (
	"context"
	"errors"

	"github.com/google/uuid"
	payrollapp "github.com/payops/backend/internal/application/payroll"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// RegisterExportExecutor runs register export jobs through the payroll export
// service, acting as the system administrator.
type RegisterExportExecutor struct {
	exports *payrollapp.ExportService
	logger  *zap.Logger
}

// NewRegisterExportExecutor creates a new RegisterExportExecutor
func NewRegisterExportExecutor(exports *payrollapp.ExportService, logger *zap.Logger) *RegisterExportExecutor {
	return &RegisterExportExecutor{
		exports: exports,
		logger:  logger,
	}
}

// Execute runs a single export job. A month with no slips is treated as a
// successful no-op, not a failure: companies without generated payroll simply
// have nothing to export.
func (e *RegisterExportExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.ExportType {
	case ExportTypeRegisterCSV:
		return e.exportRegister(ctx, job)
	default:
		return ErrInvalidExportType
	}
}

func (e *RegisterExportExecutor) exportRegister(ctx context.Context, job *Job) error {
	actor := identity.NewActor(uuid.Nil, []string{identity.RoleCodeAdmin}, nil)

	resp, err := e.exports.ExportRegister(ctx, job.TenantID, actor, payrollapp.ExportRegisterRequest{
		Month: job.Month.String(),
	})
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND" {
			e.logger.Debug("No slips to export",
				zap.String("tenant_id", job.TenantID.String()),
				zap.String("month", job.Month.String()),
			)
			return nil
		}
		return err
	}

	e.logger.Info("Register exported",
		zap.String("tenant_id", job.TenantID.String()),
		zap.String("month", resp.Month),
		zap.String("object_key", resp.ObjectKey),
		zap.Int("slip_count", resp.SlipCount),
	)
	return nil
}

// Ensure RegisterExportExecutor implements JobExecutor
var _ JobExecutor = (*RegisterExportExecutor)(nil)
