package payroll

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/infrastructure/telemetry"
)

// ObjectStorageService defines the interface for object storage operations
// This interface will be implemented by the infrastructure layer (S3, RustFS, etc.)
type ObjectStorageService interface {
	// Upload writes an object to storage
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// GenerateDownloadURL generates a presigned URL for downloading a file
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// ExportServiceConfig holds configuration for the export service
type ExportServiceConfig struct {
	// DownloadURLExpiry is the duration for which register download URLs are valid
	DownloadURLExpiry time.Duration
}

// DefaultExportServiceConfig returns the default configuration
func DefaultExportServiceConfig() ExportServiceConfig {
	return ExportServiceConfig{
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// ExportService renders payroll registers and uploads them to object storage
type ExportService struct {
	slipRepo payroll.SalarySlipRepository
	storage  ObjectStorageService
	eventBus shared.EventBus
	config   ExportServiceConfig
}

// NewExportService creates a new ExportService
func NewExportService(slipRepo payroll.SalarySlipRepository, storage ObjectStorageService, eventBus shared.EventBus) *ExportService {
	return &ExportService{
		slipRepo: slipRepo,
		storage:  storage,
		eventBus: eventBus,
		config:   DefaultExportServiceConfig(),
	}
}

// SetConfig sets the service configuration
func (s *ExportService) SetConfig(config ExportServiceConfig) {
	s.config = config
}

// ExportRegister renders every slip of one pay month into a CSV payroll
// register, uploads it and returns a presigned download URL. The object key is
// deterministic per (tenant, month), so re-exporting replaces the register.
func (s *ExportService) ExportRegister(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req ExportRegisterRequest) (*ExportRegisterResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "payroll.export_register",
		telemetry.WithAttribute(telemetry.SpanAttrSlipMonth, req.Month),
		telemetry.WithAttribute(telemetry.SpanAttrExportFormat, "csv"),
	)
	defer span.End()

	resp, err := s.exportRegister(ctx, tenantID, actor, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.AddEvent(span, "register_uploaded",
		telemetry.SpanAttrStorageKey, resp.ObjectKey,
		telemetry.SpanAttrSlipCount, resp.SlipCount,
	)
	return resp, nil
}

func (s *ExportService) exportRegister(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req ExportRegisterRequest) (*ExportRegisterResponse, error) {
	if !actor.IsAdmin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only administrators may export the payroll register")
	}

	month, err := valueobject.ParsePeriod(req.Month)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_MONTH", err.Error())
	}

	slips, err := s.slipRepo.FindForTenantMonth(ctx, tenantID, month)
	if err != nil {
		return nil, err
	}
	if len(slips) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "No salary slips exist for "+month.String())
	}

	data, err := renderRegisterCSV(slips)
	if err != nil {
		return nil, err
	}

	key := registerObjectKey(tenantID, month)
	if err := s.storage.Upload(ctx, key, data, "text/csv"); err != nil {
		return nil, err
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, key, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		_ = s.eventBus.Publish(ctx, payroll.NewRegisterExportedEvent(tenantID, month, key, len(slips)))
	}

	return &ExportRegisterResponse{
		Month:       month.String(),
		ObjectKey:   key,
		DownloadURL: url,
		ExpiresAt:   expiresAt,
		SlipCount:   len(slips),
	}, nil
}

// registerObjectKey builds the storage key for one tenant's monthly register
func registerObjectKey(tenantID uuid.UUID, month valueobject.Period) string {
	return fmt.Sprintf("registers/%s/payroll-register-%s.csv", tenantID, month)
}

var registerHeader = []string{
	"user_id", "month", "status", "currency",
	"bonus_percentage", "bonus_amount",
	"system_gross", "system_deductions", "system_net",
	"employee_net", "discrepancy",
}

// renderRegisterCSV writes the register rows in the repository's user order
func renderRegisterCSV(slips []payroll.SalarySlip) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(registerHeader); err != nil {
		return nil, err
	}
	for i := range slips {
		slip := &slips[i]
		employeeNet := ""
		if slip.EmployeeNet != nil {
			employeeNet = slip.EmployeeNet.StringFixed(2)
		}
		discrepancy := ""
		if slip.Discrepancy != nil {
			discrepancy = slip.Discrepancy.StringFixed(2)
		}
		row := []string{
			slip.UserID.String(),
			slip.Month.String(),
			slip.Status.String(),
			string(slip.Currency),
			strconv.FormatFloat(slip.BonusPercentage, 'f', 2, 64),
			slip.BonusAmount.StringFixed(2),
			slip.SystemGross.StringFixed(2),
			slip.SystemDeductions.StringFixed(2),
			slip.SystemNet.StringFixed(2),
			employeeNet,
			discrepancy,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
