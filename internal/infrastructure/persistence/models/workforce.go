package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/workforce"
	"gorm.io/gorm"
)

// AttendanceRecordModel is the persistence model for the AttendanceRecord domain entity.
// The unique index keeps one record per user and calendar day.
type AttendanceRecordModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_attendance_records_key,priority:1"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_attendance_records_key,priority:2"`
	Date     time.Time `gorm:"type:date;not null;uniqueIndex:ux_attendance_records_key,priority:3"`
	CheckIn  *time.Time
	CheckOut *time.Time
	Status   workforce.AttendanceStatus `gorm:"type:varchar(20);not null;index"`
	OnTime   bool                       `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (AttendanceRecordModel) TableName() string {
	return "attendance_records"
}

// ToDomain converts the persistence model to a domain AttendanceRecord entity.
func (m *AttendanceRecordModel) ToDomain() *workforce.AttendanceRecord {
	return &workforce.AttendanceRecord{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		TenantID: m.TenantID,
		UserID:   m.UserID,
		Date:     m.Date,
		CheckIn:  m.CheckIn,
		CheckOut: m.CheckOut,
		Status:   m.Status,
		OnTime:   m.OnTime,
	}
}

// FromDomain populates the persistence model from a domain AttendanceRecord entity.
func (m *AttendanceRecordModel) FromDomain(r *workforce.AttendanceRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.UserID = r.UserID
	m.Date = r.Date
	m.CheckIn = r.CheckIn
	m.CheckOut = r.CheckOut
	m.Status = r.Status
	m.OnTime = r.OnTime
}

// AttendanceRecordModelFromDomain creates a new persistence model from a domain AttendanceRecord.
func AttendanceRecordModelFromDomain(r *workforce.AttendanceRecord) *AttendanceRecordModel {
	m := &AttendanceRecordModel{}
	m.FromDomain(r)
	return m
}

// WorkTaskModel is the persistence model for the WorkTask domain entity.
type WorkTaskModel struct {
	TenantAggregateModel
	AssigneeID  uuid.UUID            `gorm:"type:uuid;not null;index"`
	Title       string               `gorm:"type:varchar(200);not null"`
	Description string               `gorm:"type:text"`
	DueDate     time.Time            `gorm:"not null;index"`
	Status      workforce.TaskStatus `gorm:"type:varchar(20);not null;index"`
	CompletedAt *time.Time
	Rating      *int           `gorm:"type:smallint"`
	RatedBy     *uuid.UUID     `gorm:"type:uuid"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// TableName returns the table name for GORM
func (WorkTaskModel) TableName() string {
	return "work_tasks"
}

// ToDomain converts the persistence model to a domain WorkTask entity.
func (m *WorkTaskModel) ToDomain() *workforce.WorkTask {
	task := &workforce.WorkTask{
		AssigneeID:  m.AssigneeID,
		Title:       m.Title,
		Description: m.Description,
		DueDate:     m.DueDate,
		Status:      m.Status,
		CompletedAt: m.CompletedAt,
		Rating:      m.Rating,
		RatedBy:     m.RatedBy,
	}
	m.PopulateTenantAggregateRoot(&task.TenantAggregateRoot)
	return task
}

// FromDomain populates the persistence model from a domain WorkTask entity.
func (m *WorkTaskModel) FromDomain(t *workforce.WorkTask) {
	m.FromDomainTenantAggregateRoot(t.TenantAggregateRoot)
	m.AssigneeID = t.AssigneeID
	m.Title = t.Title
	m.Description = t.Description
	m.DueDate = t.DueDate
	m.Status = t.Status
	m.CompletedAt = t.CompletedAt
	m.Rating = t.Rating
	m.RatedBy = t.RatedBy
}

// WorkTaskModelFromDomain creates a new persistence model from a domain WorkTask.
func WorkTaskModelFromDomain(t *workforce.WorkTask) *WorkTaskModel {
	m := &WorkTaskModel{}
	m.FromDomain(t)
	return m
}
