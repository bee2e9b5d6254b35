package workforce

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTask(t *testing.T) *WorkTask {
	t.Helper()
	task, err := NewWorkTask(uuid.New(), uuid.New(), "reconcile vendor ledger", "monthly close",
		time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return task
}

func TestNewWorkTask(t *testing.T) {
	t.Run("creates open task", func(t *testing.T) {
		task := createTestTask(t)

		assert.Equal(t, TaskStatusOpen, task.Status)
		assert.Equal(t, "reconcile vendor ledger", task.Title)
		assert.Nil(t, task.CompletedAt)
		assert.Nil(t, task.Rating)
	})

	t.Run("rejects invalid inputs", func(t *testing.T) {
		due := time.Date(2026, 1, 20, 18, 0, 0, 0, time.UTC)

		tests := []struct {
			name     string
			tenantID uuid.UUID
			assignee uuid.UUID
			title    string
			due      time.Time
		}{
			{"empty tenant", uuid.Nil, uuid.New(), "task", due},
			{"empty assignee", uuid.New(), uuid.Nil, "task", due},
			{"blank title", uuid.New(), uuid.New(), "   ", due},
			{"zero due date", uuid.New(), uuid.New(), "task", time.Time{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewWorkTask(tt.tenantID, tt.assignee, tt.title, "", tt.due)
				assert.Error(t, err)
			})
		}
	})
}

func TestWorkTask_Lifecycle(t *testing.T) {
	t.Run("start then complete", func(t *testing.T) {
		task := createTestTask(t)

		require.NoError(t, task.Start())
		assert.Equal(t, TaskStatusInProgress, task.Status)

		completedAt := task.DueDate.Add(-time.Hour)
		require.NoError(t, task.Complete(completedAt))
		assert.Equal(t, TaskStatusCompleted, task.Status)
		assert.True(t, task.CompletedOnTime())

		events := task.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "WorkTaskCompleted", events[0].EventType())
	})

	t.Run("late completion is not on time", func(t *testing.T) {
		task := createTestTask(t)

		require.NoError(t, task.Complete(task.DueDate.Add(time.Hour)))
		assert.False(t, task.CompletedOnTime())
	})

	t.Run("closed tasks reject further transitions", func(t *testing.T) {
		task := createTestTask(t)
		require.NoError(t, task.Complete(time.Now()))

		assert.Error(t, task.Start())
		assert.Error(t, task.Complete(time.Now()))
		assert.Error(t, task.Cancel())
	})

	t.Run("cancelled task never counts as on time", func(t *testing.T) {
		task := createTestTask(t)
		require.NoError(t, task.Cancel())

		assert.Equal(t, TaskStatusCancelled, task.Status)
		assert.False(t, task.CompletedOnTime())
	})

	t.Run("overdue detection", func(t *testing.T) {
		task := createTestTask(t)

		assert.False(t, task.IsOverdue(task.DueDate.Add(-time.Hour)))
		assert.True(t, task.IsOverdue(task.DueDate.Add(time.Hour)))

		require.NoError(t, task.Complete(task.DueDate))
		assert.False(t, task.IsOverdue(task.DueDate.Add(time.Hour)))
	})
}

func TestWorkTask_Rate(t *testing.T) {
	t.Run("rates completed task", func(t *testing.T) {
		task := createTestTask(t)
		require.NoError(t, task.Complete(time.Now()))
		task.ClearDomainEvents()
		reviewer := uuid.New()

		require.NoError(t, task.Rate(4, reviewer))

		require.NotNil(t, task.Rating)
		assert.Equal(t, 4, *task.Rating)
		assert.Equal(t, reviewer, *task.RatedBy)

		events := task.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "WorkTaskRated", events[0].EventType())
	})

	t.Run("rejects rating outside bounds", func(t *testing.T) {
		task := createTestTask(t)
		require.NoError(t, task.Complete(time.Now()))

		assert.Error(t, task.Rate(0, uuid.New()))
		assert.Error(t, task.Rate(6, uuid.New()))
	})

	t.Run("rejects rating on open task", func(t *testing.T) {
		task := createTestTask(t)

		assert.Error(t, task.Rate(4, uuid.New()))
	})
}
