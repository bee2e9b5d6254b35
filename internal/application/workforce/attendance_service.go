package workforce

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/payops/backend/internal/domain/identity"
	"github.com/payops/backend/internal/domain/shared"
	"github.com/payops/backend/internal/domain/shared/valueobject"
	"github.com/payops/backend/internal/domain/workforce"
)

// AttendanceService handles attendance recording and queries. Employees may
// record their own check-ins and check-outs; status overrides and records for
// other users require the HR or administrator role.
type AttendanceService struct {
	attendanceRepo workforce.AttendanceRepository
	shiftPolicy    workforce.ShiftPolicy
}

// NewAttendanceService creates a new AttendanceService with the default
// shift policy
func NewAttendanceService(attendanceRepo workforce.AttendanceRepository) *AttendanceService {
	return &AttendanceService{
		attendanceRepo: attendanceRepo,
		shiftPolicy:    workforce.DefaultShiftPolicy(),
	}
}

// SetShiftPolicy overrides the shift policy used to judge punctuality
func (s *AttendanceService) SetShiftPolicy(policy workforce.ShiftPolicy) {
	s.shiftPolicy = policy
}

// Record creates or amends the attendance record for one user and day.
// Punctuality is fixed against the shift policy at check-in time.
func (s *AttendanceService) Record(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req RecordAttendanceRequest) (*AttendanceResponse, error) {
	if !actor.CanManageWorkforce() && !actor.Owns(req.UserID) {
		return nil, shared.NewDomainError("FORBIDDEN", "You may only record your own attendance")
	}
	if req.Status != "" && !actor.CanManageWorkforce() {
		return nil, shared.NewDomainError("FORBIDDEN", "Only HR or administrators may override attendance status")
	}

	record, err := s.attendanceRepo.FindForUserDate(ctx, tenantID, req.UserID, req.Date)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	created := false
	if record == nil {
		status := workforce.AttendancePresent
		if req.Status != "" {
			status = workforce.AttendanceStatus(req.Status)
		}
		record, err = workforce.NewAttendanceRecord(tenantID, req.UserID, req.Date, status)
		if err != nil {
			return nil, err
		}
		created = true
	} else if req.Status != "" {
		if err := record.MarkStatus(workforce.AttendanceStatus(req.Status)); err != nil {
			return nil, err
		}
	}

	if req.CheckIn != nil {
		if err := record.RecordCheckIn(*req.CheckIn, s.shiftPolicy); err != nil {
			return nil, err
		}
	}
	if req.CheckOut != nil {
		if err := record.RecordCheckOut(*req.CheckOut); err != nil {
			return nil, err
		}
	}

	if err := s.attendanceRepo.Save(ctx, record); err != nil {
		if created && errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Attendance for this day is already recorded")
		}
		return nil, err
	}

	response := ToAttendanceResponse(record)
	return &response, nil
}

// List returns a user's attendance records for one pay period, ordered by
// date. Employees may list only their own records.
func (s *AttendanceService) List(ctx context.Context, tenantID uuid.UUID, actor identity.Actor, req ListAttendanceRequest) ([]AttendanceResponse, error) {
	userID := actor.UserID
	if req.UserID != nil {
		userID = *req.UserID
	}
	if !actor.CanManageWorkforce() && !actor.Owns(userID) {
		return nil, shared.NewDomainError("FORBIDDEN", "You may only view your own attendance")
	}

	period, err := valueobject.ParsePeriod(req.Period)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_PERIOD", err.Error())
	}

	records, err := s.attendanceRepo.FindForUserPeriod(ctx, tenantID, userID, period)
	if err != nil {
		return nil, err
	}

	return ToAttendanceResponses(records), nil
}
