package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/payops/backend/internal/domain/payroll"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func baselineStructureRequest() UpsertStructureRequest {
	return UpsertStructureRequest{
		Basic:            dec(20000),
		HRA:              dec(8000),
		SpecialAllowance: dec(2000),
		PF:               dec(2400),
		Tax:              dec(1500),
		NetSalary:        dec(26100),
	}
}

// Tests for StructureService.Upsert
func TestStructureService_Upsert_CreatesWhenMissing(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()

	mockStructureRepo.On("FindActiveForUser", ctx, tenantID, userID).Return(nil, shared.ErrNotFound)
	mockStructureRepo.On("Save", ctx, mock.AnythingOfType("*payroll.SalaryStructure")).Return(nil)

	result, err := service.Upsert(ctx, tenantID, hrActor(), userID, baselineStructureRequest())

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, userID, result.UserID)
	assert.True(t, result.Basic.Equal(dec(20000)))
	assert.True(t, result.NetSalary.Equal(dec(26100)))
	assert.True(t, result.TotalEarnings.Equal(dec(30000)))
	assert.True(t, result.TotalDeductions.Equal(dec(3900)))
	assert.Equal(t, "INR", result.Currency)
	assert.True(t, result.Active)
	mockStructureRepo.AssertExpectations(t)
}

func TestStructureService_Upsert_CorrectsInPlace(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	existing := createTestStructure(tenantID, userID)

	req := baselineStructureRequest()
	req.Tax = dec(1800)

	mockStructureRepo.On("FindActiveForUser", ctx, tenantID, userID).Return(existing, nil)
	mockStructureRepo.On("Save", ctx, existing).Return(nil)

	result, err := service.Upsert(ctx, tenantID, hrActor(), userID, req)

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, result.ID)
	assert.True(t, result.Tax.Equal(dec(1800)))
	assert.Equal(t, 2, result.Version)
	mockStructureRepo.AssertExpectations(t)
}

func TestStructureService_Upsert_LaterEffectiveDateRevises(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	existing := createTestStructure(tenantID, userID)

	req := baselineStructureRequest()
	req.Basic = dec(24000)
	req.NetSalary = dec(30100)
	effectiveFrom := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	req.EffectiveFrom = &effectiveFrom

	var saved []*payroll.SalaryStructure
	mockStructureRepo.On("FindActiveForUser", ctx, tenantID, userID).Return(existing, nil)
	mockStructureRepo.On("Save", ctx, mock.AnythingOfType("*payroll.SalaryStructure")).
		Run(func(args mock.Arguments) { saved = append(saved, args.Get(1).(*payroll.SalaryStructure)) }).
		Return(nil).Twice()

	result, err := service.Upsert(ctx, tenantID, hrActor(), userID, req)

	assert.NoError(t, err)
	assert.Len(t, saved, 2)
	// The prior structure is retired, the replacement takes over
	assert.Equal(t, existing.ID, saved[0].ID)
	assert.False(t, saved[0].Active)
	assert.NotEqual(t, existing.ID, result.ID)
	assert.True(t, result.Active)
	assert.True(t, result.Basic.Equal(dec(24000)))
	assert.Equal(t, effectiveFrom, result.EffectiveFrom)
	mockStructureRepo.AssertExpectations(t)
}

func TestStructureService_Upsert_Forbidden(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	userID := newTestUserID()
	result, err := service.Upsert(context.Background(), newTestTenantID(), employeeActor(userID), userID, baselineStructureRequest())

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	mockStructureRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStructureService_Upsert_NegativeComponent(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()

	req := baselineStructureRequest()
	req.HRA = decimal.NewFromInt(-1)

	mockStructureRepo.On("FindActiveForUser", ctx, tenantID, userID).Return(nil, shared.ErrNotFound)

	result, err := service.Upsert(ctx, tenantID, hrActor(), userID, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SALARY_COMPONENT", domainErr.Code)
	mockStructureRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStructureService_Upsert_ZeroBasic(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()

	req := baselineStructureRequest()
	req.Basic = decimal.Zero

	mockStructureRepo.On("FindActiveForUser", ctx, tenantID, userID).Return(nil, shared.ErrNotFound)

	result, err := service.Upsert(ctx, tenantID, adminActor(), userID, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_SALARY_COMPONENT", domainErr.Code)
}

// Tests for StructureService.GetActiveForUser
func TestStructureService_GetActiveForUser_OwnerReads(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	structure := createTestStructure(tenantID, userID)

	mockStructureRepo.On("FindActiveForUser", ctx, tenantID, userID).Return(structure, nil)

	result, err := service.GetActiveForUser(ctx, tenantID, employeeActor(userID), userID)

	assert.NoError(t, err)
	assert.Equal(t, structure.ID, result.ID)
}

func TestStructureService_GetActiveForUser_NonOwnerForbidden(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ownerID := newTestUserID()
	otherID := newTestAdminID()

	result, err := service.GetActiveForUser(context.Background(), newTestTenantID(), employeeActor(otherID), ownerID)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	mockStructureRepo.AssertNotCalled(t, "FindActiveForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestStructureService_GetActiveForUser_NotFound(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()

	mockStructureRepo.On("FindActiveForUser", ctx, tenantID, userID).Return(nil, shared.ErrNotFound)

	result, err := service.GetActiveForUser(ctx, tenantID, hrActor(), userID)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// Tests for StructureService.ListForUser
func TestStructureService_ListForUser_IncludesRetired(t *testing.T) {
	mockStructureRepo := new(MockSalaryStructureRepository)
	service := NewStructureService(mockStructureRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()

	retired := createTestStructure(tenantID, userID)
	retired.Deactivate()
	current := createTestStructure(tenantID, userID)
	structures := []payroll.SalaryStructure{*current, *retired}

	mockStructureRepo.On("FindAllForUser", ctx, tenantID, userID).Return(structures, nil)

	result, err := service.ListForUser(ctx, tenantID, employeeActor(userID), userID)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.True(t, result[0].Active)
	assert.False(t, result[1].Active)
}
