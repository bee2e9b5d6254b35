package workforce

import (
	"time"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/shared"
)

// AttendanceStatus represents the attendance outcome for one working day
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceOnLeave AttendanceStatus = "ON_LEAVE"
	AttendanceHalfDay AttendanceStatus = "HALF_DAY"
)

// IsValid checks if the status is a valid AttendanceStatus
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceOnLeave, AttendanceHalfDay:
		return true
	}
	return false
}

// String returns the string representation of AttendanceStatus
func (s AttendanceStatus) String() string {
	return string(s)
}

// CountsAsWorked reports whether the day contributes to worked-day counts
func (s AttendanceStatus) CountsAsWorked() bool {
	return s == AttendancePresent || s == AttendanceHalfDay
}

// ShiftPolicy defines when a working day starts and how much lateness is
// tolerated before a check-in stops counting as punctual
type ShiftPolicy struct {
	StartHour    int
	StartMinute  int
	GraceMinutes int
}

// DefaultShiftPolicy returns the standard 09:30 shift with a 10 minute grace window
func DefaultShiftPolicy() ShiftPolicy {
	return ShiftPolicy{StartHour: 9, StartMinute: 30, GraceMinutes: 10}
}

// Deadline returns the latest punctual check-in instant for the given day
func (p ShiftPolicy) Deadline(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(),
		p.StartHour, p.StartMinute, 0, 0, day.Location()).
		Add(time.Duration(p.GraceMinutes) * time.Minute)
}

// IsOnTime reports whether a check-in at the given instant is punctual
func (p ShiftPolicy) IsOnTime(day, checkIn time.Time) bool {
	return !checkIn.After(p.Deadline(day))
}

// AttendanceRecord captures one user's attendance for one calendar day.
// Records are unique per (tenant, user, date); the punctuality flag is fixed
// at check-in time so later shift policy changes never rewrite history.
type AttendanceRecord struct {
	shared.BaseEntity
	TenantID uuid.UUID        `json:"tenant_id"`
	UserID   uuid.UUID        `json:"user_id"`
	Date     time.Time        `json:"date"`
	CheckIn  *time.Time       `json:"check_in,omitempty"`
	CheckOut *time.Time       `json:"check_out,omitempty"`
	Status   AttendanceStatus `json:"status"`
	OnTime   bool             `json:"on_time"`
}

// NewAttendanceRecord creates an attendance record for a calendar day.
// The date is normalized to midnight in its own location.
func NewAttendanceRecord(tenantID, userID uuid.UUID, date time.Time, status AttendanceStatus) (*AttendanceRecord, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Attendance date is required")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid attendance status: "+status.String())
	}

	return &AttendanceRecord{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		UserID:     userID,
		Date:       normalizeDay(date),
		Status:     status,
	}, nil
}

// RecordCheckIn marks the user present and fixes the punctuality flag
func (a *AttendanceRecord) RecordCheckIn(at time.Time, policy ShiftPolicy) error {
	if a.CheckIn != nil {
		return shared.NewDomainError("ALREADY_CHECKED_IN", "Check-in already recorded for this day")
	}
	if !sameDay(a.Date, at) {
		return shared.NewDomainError("INVALID_CHECK_IN", "Check-in must fall on the attendance date")
	}

	a.CheckIn = &at
	a.Status = AttendancePresent
	a.OnTime = policy.IsOnTime(a.Date, at)
	a.UpdatedAt = time.Now()

	return nil
}

// RecordCheckOut closes the working day
func (a *AttendanceRecord) RecordCheckOut(at time.Time) error {
	if a.CheckIn == nil {
		return shared.NewDomainError("NOT_CHECKED_IN", "Cannot check out without a check-in")
	}
	if a.CheckOut != nil {
		return shared.NewDomainError("ALREADY_CHECKED_OUT", "Check-out already recorded for this day")
	}
	if at.Before(*a.CheckIn) {
		return shared.NewDomainError("INVALID_CHECK_OUT", "Check-out cannot precede check-in")
	}

	a.CheckOut = &at
	a.UpdatedAt = time.Now()

	return nil
}

// MarkStatus overrides the day's status, clearing punctuality for non-worked days
func (a *AttendanceRecord) MarkStatus(status AttendanceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid attendance status: "+status.String())
	}

	a.Status = status
	if !status.CountsAsWorked() {
		a.OnTime = false
	}
	a.UpdatedAt = time.Now()

	return nil
}

// WorkedHours returns the hours between check-in and check-out, zero when open
func (a *AttendanceRecord) WorkedHours() float64 {
	if a.CheckIn == nil || a.CheckOut == nil {
		return 0
	}
	return a.CheckOut.Sub(*a.CheckIn).Hours()
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
