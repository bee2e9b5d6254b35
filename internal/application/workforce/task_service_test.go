package workforce

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/domain/workforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dueDate() time.Time {
	return time.Date(2026, time.January, 20, 18, 0, 0, 0, time.UTC)
}

func createTestTask(t *testing.T, tenantID, assigneeID uuid.UUID) *workforce.WorkTask {
	t.Helper()
	task, err := workforce.NewWorkTask(tenantID, assigneeID, "Quarterly reconciliation", "", dueDate())
	require.NoError(t, err)
	return task
}

// Tests for TaskService.Create
func TestTaskService_Create(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()

	mockRepo.On("Save", ctx, mock.AnythingOfType("*workforce.WorkTask")).Return(nil)

	result, err := service.Create(ctx, tenantID, hrActor(), CreateTaskRequest{
		AssigneeID: userID,
		Title:      "Quarterly reconciliation",
		DueDate:    dueDate(),
	})

	assert.NoError(t, err)
	assert.Equal(t, "OPEN", result.Status)
	assert.Equal(t, userID, result.AssigneeID)
	mockRepo.AssertExpectations(t)
}

func TestTaskService_Create_EmployeeForbidden(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	userID := newTestUserID()
	_, err := service.Create(context.Background(), newTestTenantID(), employeeActor(userID), CreateTaskRequest{
		AssigneeID: userID,
		Title:      "Self-assigned",
		DueDate:    dueDate(),
	})

	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// Tests for TaskService.Complete
func TestTaskService_Complete_AssigneeOnTime(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	task := createTestTask(t, tenantID, userID)

	mockRepo.On("FindByIDForTenant", ctx, tenantID, task.ID).Return(task, nil)
	mockRepo.On("SaveWithLock", ctx, task).Return(nil)

	result, err := service.Complete(ctx, tenantID, employeeActor(userID), task.ID, CompleteTaskRequest{})

	assert.NoError(t, err)
	assert.Equal(t, "COMPLETED", result.Status)
	assert.NotNil(t, result.CompletedAt)
}

func TestTaskService_Complete_NonAssigneeForbidden(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	task := createTestTask(t, tenantID, newTestUserID())
	otherID := uuid.MustParse("99999999-9999-9999-9999-999999999999")

	mockRepo.On("FindByIDForTenant", ctx, tenantID, task.ID).Return(task, nil)

	_, err := service.Complete(ctx, tenantID, employeeActor(otherID), task.ID, CompleteTaskRequest{})

	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	mockRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestTaskService_Complete_EmployeeCannotBackfill(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	task := createTestTask(t, tenantID, userID)
	backfilled := dueDate().Add(-24 * time.Hour)

	mockRepo.On("FindByIDForTenant", ctx, tenantID, task.ID).Return(task, nil)

	_, err := service.Complete(ctx, tenantID, employeeActor(userID), task.ID, CompleteTaskRequest{CompletedAt: &backfilled})

	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
}

func TestTaskService_Complete_MissingTaskNotFound(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	taskID := uuid.New()

	mockRepo.On("FindByIDForTenant", ctx, tenantID, taskID).Return(nil, shared.ErrNotFound)

	_, err := service.Complete(ctx, tenantID, hrActor(), taskID, CompleteTaskRequest{})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// Tests for TaskService.Rate
func TestTaskService_Rate(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	task := createTestTask(t, tenantID, userID)
	require.NoError(t, task.Complete(dueDate().Add(-time.Hour)))

	mockRepo.On("FindByIDForTenant", ctx, tenantID, task.ID).Return(task, nil)
	mockRepo.On("SaveWithLock", ctx, task).Return(nil)

	result, err := service.Rate(ctx, tenantID, hrActor(), task.ID, RateTaskRequest{Rating: 4})

	assert.NoError(t, err)
	require.NotNil(t, result.Rating)
	assert.Equal(t, 4, *result.Rating)
}

func TestTaskService_Rate_OpenTaskRejected(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	task := createTestTask(t, tenantID, newTestUserID())

	mockRepo.On("FindByIDForTenant", ctx, tenantID, task.ID).Return(task, nil)

	_, err := service.Rate(ctx, tenantID, hrActor(), task.ID, RateTaskRequest{Rating: 4})

	assert.Error(t, err)
	mockRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

// Tests for TaskService.List
func TestTaskService_List_EmployeeScopedToSelf(t *testing.T) {
	mockRepo := new(MockWorkTaskRepository)
	service := NewTaskService(mockRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	task := createTestTask(t, tenantID, userID)

	mockRepo.On("FindAllForTenant", ctx, tenantID, mock.MatchedBy(func(f workforce.TaskFilter) bool {
		return f.AssigneeID != nil && *f.AssigneeID == userID
	})).Return([]workforce.WorkTask{*task}, nil)
	mockRepo.On("CountForTenant", ctx, tenantID, mock.Anything).Return(int64(1), nil)

	// The employee asks for someone else's tasks; the filter snaps back to self
	otherID := uuid.MustParse("99999999-9999-9999-9999-999999999999")
	page, err := service.List(ctx, tenantID, employeeActor(userID), ListTasksRequest{AssigneeID: &otherID})

	assert.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, userID, page.Items[0].AssigneeID)
	mockRepo.AssertExpectations(t)
}

// Tests for the workforce-backed metrics source
func TestMetricsSource_RawValues(t *testing.T) {
	mockAttendance := new(MockAttendanceRepository)
	mockTasks := new(MockWorkTaskRepository)
	source := NewMetricsSource(mockAttendance, mockTasks)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	period, _ := valueobject.ParsePeriod("2026-01")
	policy := workforce.DefaultShiftPolicy()

	// Four worked days, three punctual
	records := make([]workforce.AttendanceRecord, 0, 4)
	for day := 5; day <= 8; day++ {
		date := time.Date(2026, time.January, day, 0, 0, 0, 0, time.UTC)
		record, err := workforce.NewAttendanceRecord(tenantID, userID, date, workforce.AttendancePresent)
		require.NoError(t, err)
		checkIn := date.Add(9*time.Hour + 25*time.Minute)
		if day == 8 {
			checkIn = date.Add(10 * time.Hour)
		}
		require.NoError(t, record.RecordCheckIn(checkIn, policy))
		records = append(records, *record)
	}

	// Two due tasks: one completed on time and rated 4, one overdue
	onTime := createTestTask(t, tenantID, userID)
	require.NoError(t, onTime.Complete(dueDate().Add(-time.Hour)))
	require.NoError(t, onTime.Rate(4, uuid.New()))
	late := createTestTask(t, tenantID, userID)
	require.NoError(t, late.Complete(dueDate().Add(48*time.Hour)))

	mockAttendance.On("FindForUserPeriod", ctx, tenantID, userID, period).Return(records, nil)
	mockTasks.On("FindDueInPeriod", ctx, tenantID, userID, period).Return([]workforce.WorkTask{*onTime, *late}, nil)

	raw, err := source.RawValues(ctx, tenantID, userID, period)

	assert.NoError(t, err)
	assert.InDelta(t, 75.0, raw[workforce.MetricPunctuality], 0.001)
	assert.InDelta(t, 50.0, raw[workforce.MetricTaskCompletion], 0.001)
	assert.InDelta(t, 80.0, raw[workforce.MetricTaskAccuracy], 0.001)
}

func TestMetricsSource_NoActivityYieldsZeroes(t *testing.T) {
	mockAttendance := new(MockAttendanceRepository)
	mockTasks := new(MockWorkTaskRepository)
	source := NewMetricsSource(mockAttendance, mockTasks)

	ctx := context.Background()
	tenantID := newTestTenantID()
	userID := newTestUserID()
	period, _ := valueobject.ParsePeriod("2026-01")

	mockAttendance.On("FindForUserPeriod", ctx, tenantID, userID, period).Return([]workforce.AttendanceRecord{}, nil)
	mockTasks.On("FindDueInPeriod", ctx, tenantID, userID, period).Return([]workforce.WorkTask{}, nil)

	raw, err := source.RawValues(ctx, tenantID, userID, period)

	assert.NoError(t, err)
	assert.Zero(t, raw[workforce.MetricPunctuality])
	assert.Zero(t, raw[workforce.MetricTaskCompletion])
	assert.Zero(t, raw[workforce.MetricTaskAccuracy])
}
