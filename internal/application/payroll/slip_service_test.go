package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockSalaryStructureRepository is a mock implementation of SalaryStructureRepository
type MockSalaryStructureRepository struct {
	mock.Mock
}

func (m *MockSalaryStructureRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.SalaryStructure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalaryStructure), args.Error(1)
}

func (m *MockSalaryStructureRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.SalaryStructure, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalaryStructure), args.Error(1)
}

func (m *MockSalaryStructureRepository) FindActiveForUser(ctx context.Context, tenantID, userID uuid.UUID) (*payroll.SalaryStructure, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalaryStructure), args.Error(1)
}

func (m *MockSalaryStructureRepository) FindAllForUser(ctx context.Context, tenantID, userID uuid.UUID) ([]payroll.SalaryStructure, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).([]payroll.SalaryStructure), args.Error(1)
}

func (m *MockSalaryStructureRepository) Save(ctx context.Context, structure *payroll.SalaryStructure) error {
	args := m.Called(ctx, structure)
	return args.Error(0)
}

func (m *MockSalaryStructureRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockSalaryStructureRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) (int64, error) {
	args := m.Called(ctx, tenantID, activeOnly)
	return args.Get(0).(int64), args.Error(1)
}

// MockSalarySlipRepository is a mock implementation of SalarySlipRepository
type MockSalarySlipRepository struct {
	mock.Mock
}

func (m *MockSalarySlipRepository) FindByID(ctx context.Context, id uuid.UUID) (*payroll.SalarySlip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalarySlip), args.Error(1)
}

func (m *MockSalarySlipRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*payroll.SalarySlip, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalarySlip), args.Error(1)
}

func (m *MockSalarySlipRepository) FindForUserMonth(ctx context.Context, tenantID, userID uuid.UUID, month valueobject.Period) (*payroll.SalarySlip, error) {
	args := m.Called(ctx, tenantID, userID, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payroll.SalarySlip), args.Error(1)
}

func (m *MockSalarySlipRepository) FindForUser(ctx context.Context, tenantID, userID uuid.UUID, filter payroll.SlipFilter) ([]payroll.SalarySlip, error) {
	args := m.Called(ctx, tenantID, userID, filter)
	return args.Get(0).([]payroll.SalarySlip), args.Error(1)
}

func (m *MockSalarySlipRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter payroll.SlipFilter) ([]payroll.SalarySlip, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]payroll.SalarySlip), args.Error(1)
}

func (m *MockSalarySlipRepository) FindForTenantMonth(ctx context.Context, tenantID uuid.UUID, month valueobject.Period) ([]payroll.SalarySlip, error) {
	args := m.Called(ctx, tenantID, month)
	return args.Get(0).([]payroll.SalarySlip), args.Error(1)
}

func (m *MockSalarySlipRepository) Save(ctx context.Context, slip *payroll.SalarySlip) error {
	args := m.Called(ctx, slip)
	return args.Error(0)
}

func (m *MockSalarySlipRepository) SaveWithLock(ctx context.Context, slip *payroll.SalarySlip) error {
	args := m.Called(ctx, slip)
	return args.Error(0)
}

func (m *MockSalarySlipRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockSalarySlipRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter payroll.SlipFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalarySlipRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID, status payroll.SlipStatus) (int64, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSalarySlipRepository) SumDiscrepancyForMonth(ctx context.Context, tenantID uuid.UUID, month valueobject.Period) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, month)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockBonusRecordRepository is a mock implementation of the performance
// context's BonusRecordRepository
type MockBonusRecordRepository struct {
	mock.Mock
}

func (m *MockBonusRecordRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*performance.BonusRecord, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.BonusRecord), args.Error(1)
}

func (m *MockBonusRecordRepository) FindForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) (*performance.BonusRecord, error) {
	args := m.Called(ctx, tenantID, userID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.BonusRecord), args.Error(1)
}

func (m *MockBonusRecordRepository) FindForUserPeriods(ctx context.Context, tenantID, userID uuid.UUID, periods []valueobject.Period) ([]performance.BonusRecord, error) {
	args := m.Called(ctx, tenantID, userID, periods)
	return args.Get(0).([]performance.BonusRecord), args.Error(1)
}

func (m *MockBonusRecordRepository) Save(ctx context.Context, record *performance.BonusRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockBonusRecordRepository) SaveWithLock(ctx context.Context, record *performance.BonusRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// Test helper functions
func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newTestUserID() uuid.UUID {
	return uuid.MustParse("22222222-2222-2222-2222-222222222222")
}

func newTestAdminID() uuid.UUID {
	return uuid.MustParse("33333333-3333-3333-3333-333333333333")
}

func adminActor() identity.Actor {
	return identity.NewActor(newTestAdminID(), []string{identity.RoleCodeAdmin}, nil)
}

func hrActor() identity.Actor {
	return identity.NewActor(uuid.MustParse("55555555-5555-5555-5555-555555555555"), []string{identity.RoleCodeHR}, nil)
}

func employeeActor(userID uuid.UUID) identity.Actor {
	return identity.NewActor(userID, []string{identity.RoleCodeEmployee}, nil)
}

func mustPeriod(t *testing.T, key string) valueobject.Period {
	t.Helper()
	p, err := valueobject.ParsePeriod(key)
	assert.NoError(t, err)
	return p
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// createTestStructure builds an active structure whose figures reconcile to a
// 26100 net baseline at a zero bonus
func createTestStructure(tenantID, userID uuid.UUID) *payroll.SalaryStructure {
	components := payroll.SalaryComponents{
		Basic:            dec(20000),
		HRA:              dec(8000),
		DA:               dec(0),
		TA:               dec(0),
		SpecialAllowance: dec(2000),
		PF:               dec(2400),
		ESI:              dec(0),
		Tax:              dec(1500),
		OtherDeductions:  dec(0),
		NetSalary:        dec(26100),
	}
	structure, _ := payroll.NewSalaryStructure(tenantID, userID, components, valueobject.INR,
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC))
	structure.ClearDomainEvents()
	return structure
}

func createTestBonusRecord(t *testing.T, tenantID, userID uuid.UUID, period valueobject.Period, bonusPercentage float64) *performance.BonusRecord {
	t.Helper()
	record, err := performance.NewBonusRecord(tenantID, userID, period, 84.63, performance.TierAssignment{
		Tier:            "Gold",
		TierColor:       "#ffd700",
		BonusPercentage: bonusPercentage,
	})
	assert.NoError(t, err)
	record.ClearDomainEvents()
	return record
}

func createGeneratedSlip(t *testing.T, tenantID, userID uuid.UUID, month valueobject.Period, bonusPercentage float64) *payroll.SalarySlip {
	t.Helper()
	structure := createTestStructure(tenantID, userID)
	computation, err := payroll.ComputeSystemFigures(structure, bonusPercentage)
	assert.NoError(t, err)
	slip, err := payroll.NewSalarySlip(tenantID, userID, month, computation)
	assert.NoError(t, err)
	slip.ClearDomainEvents()
	return slip
}

func newSlipFixture() (*MockSalarySlipRepository, *MockSalaryStructureRepository, *MockBonusRecordRepository, *SlipService) {
	mockSlipRepo := new(MockSalarySlipRepository)
	mockStructureRepo := new(MockSalaryStructureRepository)
	mockBonusRepo := new(MockBonusRecordRepository)
	service := NewSlipService(mockSlipRepo, mockStructureRepo, mockBonusRepo, nil)
	return mockSlipRepo, mockStructureRepo, mockBonusRepo, service
}

// Tests for SlipService.GenerateSlip
func TestSlipService_GenerateSlip_WithBonus(t *testing.T) {
	mockSlipRepo, mockStructureRepo, mockBonusRepo, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	structure := createTestStructure(tenantID, userID)
	record := createTestBonusRecord(t, tenantID, userID, month, 10)

	mockStructureRepo.On("FindActiveForUser", mock.Anything, tenantID, userID).Return(structure, nil)
	mockBonusRepo.On("FindForUserPeriod", mock.Anything, tenantID, userID, month).Return(record, nil)
	mockSlipRepo.On("FindForUserMonth", mock.Anything, tenantID, userID, month).Return(nil, shared.ErrNotFound)
	mockSlipRepo.On("Save", mock.Anything, mock.AnythingOfType("*payroll.SalarySlip")).Return(nil)

	result, err := service.GenerateSlip(ctx, tenantID, hrActor(), GenerateSlipRequest{UserID: userID, Month: "2026-01"})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "2026-01", result.Month)
	assert.Equal(t, "GENERATED", result.Status)
	assert.Equal(t, 10.0, result.BonusPercentage)
	// bonus = 26100 * 10% = 2610; gross = 30000 + 2610; net = 32610 - 3900
	assert.True(t, result.BonusAmount.Equal(dec(2610)), "bonus amount %s", result.BonusAmount)
	assert.True(t, result.SystemGross.Equal(dec(32610)), "gross %s", result.SystemGross)
	assert.True(t, result.SystemDeductions.Equal(dec(3900)), "deductions %s", result.SystemDeductions)
	assert.True(t, result.SystemNet.Equal(dec(28710)), "net %s", result.SystemNet)
	assert.True(t, result.SystemBreakdown[payroll.ComponentBonus].Equal(dec(2610)))
	assert.Equal(t, "INR", result.Currency)
	assert.Nil(t, result.EmployeeNet)
	assert.Nil(t, result.Discrepancy)
	mockSlipRepo.AssertExpectations(t)
	mockStructureRepo.AssertExpectations(t)
	mockBonusRepo.AssertExpectations(t)
}

func TestSlipService_GenerateSlip_NoBonusRecord(t *testing.T) {
	mockSlipRepo, mockStructureRepo, mockBonusRepo, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-02")
	structure := createTestStructure(tenantID, userID)

	mockStructureRepo.On("FindActiveForUser", mock.Anything, tenantID, userID).Return(structure, nil)
	mockBonusRepo.On("FindForUserPeriod", mock.Anything, tenantID, userID, month).Return(nil, shared.ErrNotFound)
	mockSlipRepo.On("FindForUserMonth", mock.Anything, tenantID, userID, month).Return(nil, shared.ErrNotFound)
	mockSlipRepo.On("Save", mock.Anything, mock.AnythingOfType("*payroll.SalarySlip")).Return(nil)

	result, err := service.GenerateSlip(ctx, tenantID, adminActor(), GenerateSlipRequest{UserID: userID, Month: "2026-02"})

	assert.NoError(t, err)
	assert.Equal(t, 0.0, result.BonusPercentage)
	assert.True(t, result.BonusAmount.IsZero())
	assert.True(t, result.SystemGross.Equal(dec(30000)))
	assert.True(t, result.SystemNet.Equal(dec(26100)))
}

func TestSlipService_GenerateSlip_NoStructure(t *testing.T) {
	mockSlipRepo, mockStructureRepo, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()

	mockStructureRepo.On("FindActiveForUser", mock.Anything, tenantID, userID).Return(nil, shared.ErrNotFound)

	result, err := service.GenerateSlip(ctx, tenantID, adminActor(), GenerateSlipRequest{UserID: userID, Month: "2026-01"})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PRECONDITION_FAILED", domainErr.Code)
	mockSlipRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockStructureRepo.AssertExpectations(t)
}

func TestSlipService_GenerateSlip_Forbidden(t *testing.T) {
	mockSlipRepo, mockStructureRepo, _, service := newSlipFixture()

	userID := newTestUserID()
	result, err := service.GenerateSlip(context.Background(), newTestTenantID(), employeeActor(userID),
		GenerateSlipRequest{UserID: userID, Month: "2026-01"})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	mockStructureRepo.AssertNotCalled(t, "FindActiveForUser", mock.Anything, mock.Anything, mock.Anything)
	mockSlipRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSlipService_GenerateSlip_RegenerationPreservesEmployeeFigures(t *testing.T) {
	mockSlipRepo, mockStructureRepo, mockBonusRepo, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	structure := createTestStructure(tenantID, userID)
	record := createTestBonusRecord(t, tenantID, userID, month, 10)

	slip := createGeneratedSlip(t, tenantID, userID, month, 0)
	employeeNet := dec(28000)
	assert.NoError(t, slip.SubmitEmployeeFigures(payroll.EmployeeSubmission{Net: &employeeNet}))
	slip.ClearDomainEvents()
	assert.Equal(t, payroll.SlipStatusCompared, slip.Status)

	mockStructureRepo.On("FindActiveForUser", mock.Anything, tenantID, userID).Return(structure, nil)
	mockBonusRepo.On("FindForUserPeriod", mock.Anything, tenantID, userID, month).Return(record, nil)
	mockSlipRepo.On("FindForUserMonth", mock.Anything, tenantID, userID, month).Return(slip, nil)
	mockSlipRepo.On("SaveWithLock", mock.Anything, slip).Return(nil)

	result, err := service.GenerateSlip(ctx, tenantID, hrActor(), GenerateSlipRequest{UserID: userID, Month: "2026-01"})

	assert.NoError(t, err)
	assert.Equal(t, "GENERATED", result.Status)
	assert.True(t, result.SystemNet.Equal(dec(28710)))
	// The employee submission survives regeneration, discrepancy follows the new net
	assert.NotNil(t, result.EmployeeNet)
	assert.True(t, result.EmployeeNet.Equal(dec(28000)))
	assert.NotNil(t, result.Discrepancy)
	assert.True(t, result.Discrepancy.Equal(dec(710)), "discrepancy %s", result.Discrepancy)
	mockSlipRepo.AssertExpectations(t)
}

func TestSlipService_GenerateSlip_FinalizedSlip(t *testing.T) {
	mockSlipRepo, mockStructureRepo, mockBonusRepo, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	structure := createTestStructure(tenantID, userID)

	slip := createGeneratedSlip(t, tenantID, userID, month, 10)
	assert.NoError(t, slip.Finalize())
	slip.ClearDomainEvents()

	mockStructureRepo.On("FindActiveForUser", mock.Anything, tenantID, userID).Return(structure, nil)
	mockBonusRepo.On("FindForUserPeriod", mock.Anything, tenantID, userID, month).Return(nil, shared.ErrNotFound)
	mockSlipRepo.On("FindForUserMonth", mock.Anything, tenantID, userID, month).Return(slip, nil)

	result, err := service.GenerateSlip(ctx, tenantID, adminActor(), GenerateSlipRequest{UserID: userID, Month: "2026-01"})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrAlreadyFinalized)
	mockSlipRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestSlipService_GenerateSlip_InsertRace(t *testing.T) {
	mockSlipRepo, mockStructureRepo, mockBonusRepo, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	structure := createTestStructure(tenantID, userID)
	winner := createGeneratedSlip(t, tenantID, userID, month, 0)

	mockStructureRepo.On("FindActiveForUser", mock.Anything, tenantID, userID).Return(structure, nil)
	mockBonusRepo.On("FindForUserPeriod", mock.Anything, tenantID, userID, month).Return(nil, shared.ErrNotFound)
	mockSlipRepo.On("FindForUserMonth", mock.Anything, tenantID, userID, month).Return(nil, shared.ErrNotFound).Once()
	mockSlipRepo.On("Save", mock.Anything, mock.AnythingOfType("*payroll.SalarySlip")).Return(shared.ErrAlreadyExists)
	mockSlipRepo.On("FindForUserMonth", mock.Anything, tenantID, userID, month).Return(winner, nil).Once()
	mockSlipRepo.On("SaveWithLock", mock.Anything, winner).Return(nil)

	result, err := service.GenerateSlip(ctx, tenantID, adminActor(), GenerateSlipRequest{UserID: userID, Month: "2026-01"})

	assert.NoError(t, err)
	assert.Equal(t, winner.ID, result.ID)
	mockSlipRepo.AssertExpectations(t)
}

// Tests for SlipService.UpdateSlip
func TestSlipService_UpdateSlip_EmployeeSubmitsOwnFigures(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)
	employeeNet := dec(28000)

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)
	mockSlipRepo.On("SaveWithLock", ctx, slip).Return(nil)

	result, err := service.UpdateSlip(ctx, tenantID, employeeActor(userID), slip.ID, UpdateSlipRequest{
		EmployeeNet: &employeeNet,
	})

	assert.NoError(t, err)
	// 28710 system net vs 28000 employee net
	assert.Equal(t, "COMPARED", result.Status)
	assert.NotNil(t, result.Discrepancy)
	assert.True(t, result.Discrepancy.Equal(dec(710)), "discrepancy %s", result.Discrepancy)
	mockSlipRepo.AssertExpectations(t)
}

func TestSlipService_UpdateSlip_PartialSubmissionStaysGenerated(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)
	employeeGross := dec(32610)

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)
	mockSlipRepo.On("SaveWithLock", ctx, slip).Return(nil)

	result, err := service.UpdateSlip(ctx, tenantID, employeeActor(userID), slip.ID, UpdateSlipRequest{
		EmployeeGross: &employeeGross,
	})

	assert.NoError(t, err)
	assert.Equal(t, "GENERATED", result.Status)
	assert.Nil(t, result.Discrepancy)
	assert.Nil(t, result.EmployeeNet)
	assert.NotNil(t, result.EmployeeGross)
}

func TestSlipService_UpdateSlip_NonAdminFinalizeForbidden(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)
	employeeNet := dec(28000)
	finalized := "FINALIZED"

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.UpdateSlip(ctx, tenantID, employeeActor(userID), slip.ID, UpdateSlipRequest{
		EmployeeNet: &employeeNet,
		Status:      &finalized,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	// Rejected before mutation: the slip keeps its prior state
	assert.Nil(t, slip.EmployeeNet)
	assert.Equal(t, payroll.SlipStatusGenerated, slip.Status)
	mockSlipRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestSlipService_UpdateSlip_NonOwnerForbidden(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	ownerID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, ownerID, month, 10)
	otherID := uuid.MustParse("66666666-6666-6666-6666-666666666666")
	employeeNet := dec(28000)

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.UpdateSlip(ctx, tenantID, employeeActor(otherID), slip.ID, UpdateSlipRequest{
		EmployeeNet: &employeeNet,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Nil(t, slip.EmployeeNet)
}

func TestSlipService_UpdateSlip_AdminFinalizes(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)
	employeeNet := dec(28000)
	assert.NoError(t, slip.SubmitEmployeeFigures(payroll.EmployeeSubmission{Net: &employeeNet}))
	slip.ClearDomainEvents()
	finalized := "FINALIZED"

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)
	mockSlipRepo.On("SaveWithLock", ctx, slip).Return(nil)

	result, err := service.UpdateSlip(ctx, tenantID, adminActor(), slip.ID, UpdateSlipRequest{Status: &finalized})

	assert.NoError(t, err)
	assert.Equal(t, "FINALIZED", result.Status)
	mockSlipRepo.AssertExpectations(t)
}

func TestSlipService_UpdateSlip_FinalizedRejectsChanges(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)
	assert.NoError(t, slip.Finalize())
	slip.ClearDomainEvents()
	employeeNet := dec(29000)

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.UpdateSlip(ctx, tenantID, adminActor(), slip.ID, UpdateSlipRequest{
		EmployeeNet: &employeeNet,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrAlreadyFinalized)
	assert.Nil(t, slip.EmployeeNet)
	mockSlipRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestSlipService_UpdateSlip_BackwardTransitionRejected(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)
	draft := "DRAFT"

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.UpdateSlip(ctx, tenantID, adminActor(), slip.ID, UpdateSlipRequest{Status: &draft})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS_TRANSITION", domainErr.Code)
	assert.Equal(t, payroll.SlipStatusGenerated, slip.Status)
}

func TestSlipService_UpdateSlip_EmptySubmission(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.UpdateSlip(ctx, tenantID, employeeActor(userID), slip.ID, UpdateSlipRequest{})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "EMPTY_SUBMISSION", domainErr.Code)
}

func TestSlipService_UpdateSlip_NegativeFigureRejectedBeforeMutate(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)
	negative := dec(-100)
	notes := "typo"

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.UpdateSlip(ctx, tenantID, employeeActor(userID), slip.ID, UpdateSlipRequest{
		EmployeeNet: &negative,
		Notes:       &notes,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_EMPLOYEE_FIGURE", domainErr.Code)
	// Nothing was written, not even the valid notes field
	assert.Nil(t, slip.EmployeeNet)
	assert.Empty(t, slip.DiscrepancyNotes)
	mockSlipRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestSlipService_UpdateSlip_NotFound(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	slipID := uuid.MustParse("77777777-7777-7777-7777-777777777777")
	employeeNet := dec(28000)

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slipID).Return(nil, shared.ErrNotFound)

	result, err := service.UpdateSlip(ctx, tenantID, adminActor(), slipID, UpdateSlipRequest{
		EmployeeNet: &employeeNet,
	})

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// Tests for SlipService.GetSlip
func TestSlipService_GetSlip_OwnerReads(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.GetSlip(ctx, tenantID, employeeActor(userID), slip.ID)

	assert.NoError(t, err)
	assert.Equal(t, slip.ID, result.ID)
}

func TestSlipService_GetSlip_NonOwnerForbidden(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	ownerID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, ownerID, month, 10)
	otherID := uuid.MustParse("66666666-6666-6666-6666-666666666666")

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.GetSlip(ctx, tenantID, employeeActor(otherID), slip.ID)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestSlipService_GetSlip_HRReadsAny(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	month := mustPeriod(t, "2026-01")
	slip := createGeneratedSlip(t, tenantID, userID, month, 10)

	mockSlipRepo.On("FindByIDForTenant", ctx, tenantID, slip.ID).Return(slip, nil)

	result, err := service.GetSlip(ctx, tenantID, hrActor(), slip.ID)

	assert.NoError(t, err)
	assert.Equal(t, userID, result.UserID)
}

// Tests for SlipService.ListSlips
func TestSlipService_ListSlips_EmployeeScopedToSelf(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	otherID := uuid.MustParse("66666666-6666-6666-6666-666666666666")
	month := mustPeriod(t, "2026-01")
	slips := []payroll.SalarySlip{*createGeneratedSlip(t, tenantID, userID, month, 10)}

	mockSlipRepo.On("FindForUser", ctx, tenantID, userID, mock.MatchedBy(func(f payroll.SlipFilter) bool {
		return f.UserID != nil && *f.UserID == userID
	})).Return(slips, nil)
	mockSlipRepo.On("CountForTenant", ctx, tenantID, mock.AnythingOfType("payroll.SlipFilter")).Return(int64(1), nil)

	// The employee asks for someone else's slips; the scope snaps back to their own
	result, err := service.ListSlips(ctx, tenantID, employeeActor(userID), ListSlipsRequest{UserID: &otherID})

	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, userID, result.Items[0].UserID)
	mockSlipRepo.AssertExpectations(t)
}

func TestSlipService_ListSlips_AdminFiltersByMonth(t *testing.T) {
	mockSlipRepo, _, _, service := newSlipFixture()

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	monthKey := "2026-01"
	month := mustPeriod(t, monthKey)
	slips := []payroll.SalarySlip{*createGeneratedSlip(t, tenantID, userID, month, 10)}

	mockSlipRepo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f payroll.SlipFilter) bool {
		return f.UserID == nil && f.Month != nil && f.Month.String() == monthKey
	})).Return(slips, nil)
	mockSlipRepo.On("CountForTenant", ctx, tenantID, mock.AnythingOfType("payroll.SlipFilter")).Return(int64(1), nil)

	result, err := service.ListSlips(ctx, tenantID, adminActor(), ListSlipsRequest{Month: &monthKey})

	assert.NoError(t, err)
	assert.Len(t, result.Items, 1)
	mockSlipRepo.AssertExpectations(t)
}
