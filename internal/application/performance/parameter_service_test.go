package performance

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/performance"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockScoreParameterRepository is a mock implementation of ScoreParameterRepository
type MockScoreParameterRepository struct {
	mock.Mock
}

func (m *MockScoreParameterRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*performance.ScoreParameter, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.ScoreParameter), args.Error(1)
}

func (m *MockScoreParameterRepository) FindByCodeForTenant(ctx context.Context, tenantID uuid.UUID, code string) (*performance.ScoreParameter, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*performance.ScoreParameter), args.Error(1)
}

func (m *MockScoreParameterRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]performance.ScoreParameter, error) {
	args := m.Called(ctx, tenantID, activeOnly)
	return args.Get(0).([]performance.ScoreParameter), args.Error(1)
}

func (m *MockScoreParameterRepository) Save(ctx context.Context, param *performance.ScoreParameter) error {
	args := m.Called(ctx, param)
	return args.Error(0)
}

func (m *MockScoreParameterRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockScoreParameterRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockParameterScoreRepository is a mock implementation of ParameterScoreRepository
type MockParameterScoreRepository struct {
	mock.Mock
}

func (m *MockParameterScoreRepository) FindForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) ([]performance.ParameterScore, error) {
	args := m.Called(ctx, tenantID, userID, period)
	return args.Get(0).([]performance.ParameterScore), args.Error(1)
}

func (m *MockParameterScoreRepository) SaveAll(ctx context.Context, scores []performance.ParameterScore) error {
	args := m.Called(ctx, scores)
	return args.Error(0)
}

func (m *MockParameterScoreRepository) CountByParameter(ctx context.Context, tenantID, parameterID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, parameterID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockParameterScoreRepository) DeleteForUserPeriod(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) error {
	args := m.Called(ctx, tenantID, userID, period)
	return args.Error(0)
}

// MockBonusRecordRepository is a mock implementation of BonusRecordRepository
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

// MockMetricsSource is a mock implementation of MetricsSource
type MockMetricsSource struct {
	mock.Mock
}

func (m *MockMetricsSource) RawValues(ctx context.Context, tenantID, userID uuid.UUID, period valueobject.Period) (map[string]float64, error) {
	args := m.Called(ctx, tenantID, userID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]float64), args.Error(1)
}

// Test helper functions
func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func newTestUserID() uuid.UUID {
	return uuid.MustParse("22222222-2222-2222-2222-222222222222")
}

func newTestParameterID() uuid.UUID {
	return uuid.MustParse("33333333-3333-3333-3333-333333333333")
}

func newTestActorID() uuid.UUID {
	return uuid.MustParse("44444444-4444-4444-4444-444444444444")
}

func mustPeriod(t *testing.T, key string) valueobject.Period {
	t.Helper()
	p, err := valueobject.ParsePeriod(key)
	assert.NoError(t, err)
	return p
}

func createTestParameter(tenantID uuid.UUID, code string, weight float64) *performance.ScoreParameter {
	param, _ := performance.NewScoreParameter(tenantID, code, "Test "+code, weight)
	param.ClearDomainEvents()
	return param
}

// Tests for ParameterService.Create
func TestParameterService_Create_Success(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	req := CreateParameterRequest{
		Code:   "attendance_punctuality",
		Name:   "Attendance & Punctuality",
		Weight: 30,
	}

	mockParamRepo.On("FindByCodeForTenant", ctx, tenantID, req.Code).Return(nil, shared.ErrNotFound)
	mockParamRepo.On("Save", ctx, mock.AnythingOfType("*performance.ScoreParameter")).Return(nil)

	result, err := service.Create(ctx, tenantID, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "attendance_punctuality", result.Code)
	assert.Equal(t, "Attendance & Punctuality", result.Name)
	assert.Equal(t, 30.0, result.Weight)
	assert.True(t, result.Active)
	mockParamRepo.AssertExpectations(t)
}

func TestParameterService_Create_NormalizesCode(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	req := CreateParameterRequest{
		Code:   "Task_Accuracy",
		Name:   "Task Accuracy",
		Weight: 25,
	}

	mockParamRepo.On("FindByCodeForTenant", ctx, tenantID, req.Code).Return(nil, shared.ErrNotFound)
	mockParamRepo.On("Save", ctx, mock.AnythingOfType("*performance.ScoreParameter")).Return(nil)

	result, err := service.Create(ctx, tenantID, req)

	assert.NoError(t, err)
	assert.Equal(t, "task_accuracy", result.Code)
	mockParamRepo.AssertExpectations(t)
}

func TestParameterService_Create_DuplicateCode(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	existing := createTestParameter(tenantID, "task_completion", 70)
	req := CreateParameterRequest{
		Code:   "task_completion",
		Name:   "Task Completion",
		Weight: 50,
	}

	mockParamRepo.On("FindByCodeForTenant", ctx, tenantID, req.Code).Return(existing, nil)

	result, err := service.Create(ctx, tenantID, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	mockParamRepo.AssertExpectations(t)
}

func TestParameterService_Create_InvalidWeight(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	req := CreateParameterRequest{
		Code:   "quality",
		Name:   "Quality",
		Weight: 0,
	}

	mockParamRepo.On("FindByCodeForTenant", ctx, tenantID, req.Code).Return(nil, shared.ErrNotFound)

	result, err := service.Create(ctx, tenantID, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PARAMETER_WEIGHT", domainErr.Code)
	mockParamRepo.AssertExpectations(t)
}

// Tests for ParameterService.GetByID
func TestParameterService_GetByID_Success(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	param := createTestParameter(tenantID, "task_completion", 70)

	mockParamRepo.On("FindByIDForTenant", ctx, tenantID, param.ID).Return(param, nil)

	result, err := service.GetByID(ctx, tenantID, param.ID)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, param.ID, result.ID)
	assert.Equal(t, "task_completion", result.Code)
	mockParamRepo.AssertExpectations(t)
}

func TestParameterService_GetByID_NotFound(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	paramID := newTestParameterID()

	mockParamRepo.On("FindByIDForTenant", ctx, tenantID, paramID).Return(nil, shared.ErrNotFound)

	result, err := service.GetByID(ctx, tenantID, paramID)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	mockParamRepo.AssertExpectations(t)
}

// Tests for ParameterService.List
func TestParameterService_List(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	params := []performance.ScoreParameter{
		*createTestParameter(tenantID, "attendance_punctuality", 30),
		*createTestParameter(tenantID, "task_completion", 70),
	}

	mockParamRepo.On("FindAllForTenant", ctx, tenantID, true).Return(params, nil)

	result, err := service.List(ctx, tenantID, true)

	assert.NoError(t, err)
	assert.Len(t, result, 2)
	assert.Equal(t, "attendance_punctuality", result[0].Code)
	assert.Equal(t, "task_completion", result[1].Code)
	mockParamRepo.AssertExpectations(t)
}

// Tests for ParameterService.Update
func TestParameterService_Update_NameAndWeight(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	param := createTestParameter(tenantID, "task_completion", 70)
	newName := "Task Throughput"
	newWeight := 60.0

	mockParamRepo.On("FindByIDForTenant", ctx, tenantID, param.ID).Return(param, nil)
	mockParamRepo.On("Save", ctx, param).Return(nil)

	result, err := service.Update(ctx, tenantID, param.ID, UpdateParameterRequest{
		Name:   &newName,
		Weight: &newWeight,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Task Throughput", result.Name)
	assert.Equal(t, 60.0, result.Weight)
	// new aggregates start at version 1; Update bumps it
	assert.Equal(t, 2, result.Version)
	mockParamRepo.AssertExpectations(t)
}

func TestParameterService_Update_Deactivate(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	param := createTestParameter(tenantID, "task_completion", 70)
	inactive := false

	mockParamRepo.On("FindByIDForTenant", ctx, tenantID, param.ID).Return(param, nil)
	mockParamRepo.On("Save", ctx, param).Return(nil)

	result, err := service.Update(ctx, tenantID, param.ID, UpdateParameterRequest{Active: &inactive})

	assert.NoError(t, err)
	assert.False(t, result.Active)
	mockParamRepo.AssertExpectations(t)
}

func TestParameterService_Update_InvalidWeight(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	param := createTestParameter(tenantID, "task_completion", 70)
	badWeight := -5.0

	mockParamRepo.On("FindByIDForTenant", ctx, tenantID, param.ID).Return(param, nil)

	result, err := service.Update(ctx, tenantID, param.ID, UpdateParameterRequest{Weight: &badWeight})

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_PARAMETER_WEIGHT", domainErr.Code)
	mockParamRepo.AssertExpectations(t)
}

// Tests for ParameterService.Delete
func TestParameterService_Delete_Success(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	param := createTestParameter(tenantID, "quality", 20)

	mockParamRepo.On("FindByIDForTenant", ctx, tenantID, param.ID).Return(param, nil)
	mockScoreRepo.On("CountByParameter", ctx, tenantID, param.ID).Return(int64(0), nil)
	mockParamRepo.On("DeleteForTenant", ctx, tenantID, param.ID).Return(nil)

	err := service.Delete(ctx, tenantID, param.ID)

	assert.NoError(t, err)
	mockParamRepo.AssertExpectations(t)
	mockScoreRepo.AssertExpectations(t)
}

func TestParameterService_Delete_InUse(t *testing.T) {
	mockParamRepo := new(MockScoreParameterRepository)
	mockScoreRepo := new(MockParameterScoreRepository)
	service := NewParameterService(mockParamRepo, mockScoreRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	param := createTestParameter(tenantID, "task_completion", 70)

	mockParamRepo.On("FindByIDForTenant", ctx, tenantID, param.ID).Return(param, nil)
	mockScoreRepo.On("CountByParameter", ctx, tenantID, param.ID).Return(int64(12), nil)

	err := service.Delete(ctx, tenantID, param.ID)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "PARAMETER_IN_USE", domainErr.Code)
	mockParamRepo.AssertExpectations(t)
	mockScoreRepo.AssertExpectations(t)
}
